package api

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash is a one-shot notice carried to the next rendered page
type flash struct {
	Category string
	Message  string
}

// setFlash attaches a notice to the response, usually a redirect
func setFlash(w http.ResponseWriter, category, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    category + "|" + base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending notice, if any, and expires it so it is shown
// only once
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	category, encoded, ok := strings.Cut(c.Value, "|")
	if !ok {
		return nil
	}
	msg, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	return &flash{Category: category, Message: string(msg)}
}
