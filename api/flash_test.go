package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	setFlash(w, flashError, "Nothing | added, sorry; «ok»")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()

	f := popFlash(w, req)
	require.NotNil(t, f)
	assert.Equal(t, flashError, f.Category)
	assert.Equal(t, "Nothing | added, sorry; «ok»", f.Message)

	expired := w.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, flashCookie, expired[0].Name)
	assert.Negative(t, expired[0].MaxAge)
}

func TestPopFlashWithoutCookie(t *testing.T) {
	w := httptest.NewRecorder()
	assert.Nil(t, popFlash(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, w.Result().Cookies())
}

func TestPopFlashGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "no-separator"})

	w := httptest.NewRecorder()
	assert.Nil(t, popFlash(w, req))
	// still expired so it does not linger
	assert.Len(t, w.Result().Cookies(), 1)
}
