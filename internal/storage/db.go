package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/juank27/alegra-api/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS tokens (
  email TEXT PRIMARY KEY,
  encryptedToken TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS batches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  userEmail TEXT,
  fileName TEXT,
  rowCount INTEGER NOT NULL,
  groupCount INTEGER NOT NULL,
  submittedCount INTEGER NOT NULL,
  errorsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertToken replaces the stored token for email in a single
// statement, so concurrent writers never observe a partial store.
func (d *DB) UpsertToken(email, encryptedToken string) error {
	_, err := d.conn.Exec(`
INSERT INTO tokens (email, encryptedToken) VALUES (?, ?)
ON CONFLICT(email) DO UPDATE SET
  encryptedToken=excluded.encryptedToken,
  updatedAt=CURRENT_TIMESTAMP
`, email, encryptedToken)
	return err
}

func (d *DB) GetToken(email string) (*string, error) {
	var token string
	err := d.conn.QueryRow(`SELECT encryptedToken FROM tokens WHERE email = ?`, email).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ListTokens returns the full email -> encrypted token mapping.
func (d *DB) ListTokens() (map[string]string, error) {
	rows, err := d.conn.Query(`SELECT email, encryptedToken FROM tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var email, token string
		if err := rows.Scan(&email, &token); err != nil {
			return nil, err
		}
		out[email] = token
	}
	return out, rows.Err()
}

func (d *DB) InsertBatch(userEmail, fileName string, report internal.BatchReport) error {
	errorsJSON, _ := json.Marshal(map[string]any{
		"grouping": report.GroupingErrors,
		"batch":    report.BatchErrors,
	})
	_, err := d.conn.Exec(`
INSERT INTO batches (traceId, userEmail, fileName, rowCount, groupCount, submittedCount, errorsJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, report.TraceID, userEmail, fileName, report.Rows, report.Groups, report.Submitted, string(errorsJSON))
	return err
}

type BatchRow struct {
	ID             int
	TraceID        string
	UserEmail      string
	FileName       string
	RowCount       int
	GroupCount     int
	SubmittedCount int
	ErrorsJSON     string
	CreatedAt      string
}

func (d *DB) ListBatches(limit int) ([]BatchRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, userEmail, fileName, rowCount, groupCount, submittedCount, errorsJson, createdAt
FROM batches ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRow
	for rows.Next() {
		var row BatchRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.UserEmail, &row.FileName, &row.RowCount, &row.GroupCount, &row.SubmittedCount, &row.ErrorsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
