package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/htol/bookshelf/config"
	"github.com/htol/bookshelf/logger"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

const driverName = "sqlite3_bookshelf"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

// casefold backs the casefold() SQL function. SQLite's own LIKE and lower()
// only fold ASCII.
func casefold(s string) string {
	// a Caser is stateful, so one per call
	return cases.Fold().String(s)
}

// migrations are applied in order; the index+1 is the schema version
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS "bookshelf" (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS "book" (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		bookshelf_id INTEGER REFERENCES bookshelf(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS [I_book_bookshelf_id] ON "book" ([bookshelf_id]);
	`,
	`
	CREATE TABLE IF NOT EXISTS "shopping_list" (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		book_id INTEGER NOT NULL,
		FOREIGN KEY (book_id) REFERENCES book(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS [I_shopping_list_book_id] ON "shopping_list" ([book_id]);
	`,
}

// GetStorage opens (or creates) the catalog database at path and brings its
// schema up to date
func GetStorage(path string) (*Repo, error) {
	return GetStorageWithConfig(path, config.Default())
}

func GetStorageWithConfig(path string, cfg *config.Config) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := "file:" + path + "?mode=rwc&_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.Lifetime())

	if _, err := db.Exec("PRAGMA temp_store = MEMORY"); err != nil {
		logger.Warn("Failed to set temp_store", "error", err)
	}

	r := &Repo{db: db, path: path}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// SchemaVersion returns the version recorded by the last applied migration
func (r *Repo) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (r *Repo) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	current, err := r.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current >= len(migrations) {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for v := current; v < len(migrations); v++ {
		logger.Info("Migrating database", "path", r.path, "version", v+1)
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			return fmt.Errorf("apply migration %d: %w", v+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta(key, value) VALUES('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, len(migrations)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}
