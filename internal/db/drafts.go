package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Fantasim/rainmaker/internal/models"
)

// GetDraft retrieves the saved draft under the given key. A missing draft is
// not an error; an empty draft is returned instead.
func (d *DB) GetDraft(key string) (*models.Draft, error) {
	slog.Debug("getting draft", "key", key)

	var draft models.Draft
	err := d.conn.QueryRow(
		"SELECT text, token_address, updated_at FROM drafts WHERE key = ?",
		key,
	).Scan(&draft.Text, &draft.TokenAddress, &draft.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft %q: %w", key, err)
	}

	return &draft, nil
}

// SaveDraft upserts the draft under the given key.
func (d *DB) SaveDraft(key string, draft models.Draft) error {
	slog.Debug("saving draft", "key", key, "bytes", len(draft.Text))

	_, err := d.conn.Exec(
		`INSERT INTO drafts (key, text, token_address, updated_at) VALUES (?, ?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET text = excluded.text, token_address = excluded.token_address, updated_at = excluded.updated_at`,
		key, draft.Text, draft.TokenAddress,
	)
	if err != nil {
		return fmt.Errorf("save draft %q: %w", key, err)
	}

	slog.Info("draft saved", "key", key, "bytes", len(draft.Text))
	return nil
}

// DeleteDraft removes the draft under the given key, if present.
func (d *DB) DeleteDraft(key string) error {
	slog.Debug("deleting draft", "key", key)

	if _, err := d.conn.Exec("DELETE FROM drafts WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete draft %q: %w", key, err)
	}
	return nil
}
