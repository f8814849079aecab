package ideagraph

import (
	"context"
	"encoding/json"
	"fmt"

	"agora/internal/domain"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository/sqlite"

	"github.com/google/uuid"
)

// SQLiteTextBundleRepository stores localized text bundles as JSON text
type SQLiteTextBundleRepository struct {
	db *sqlite.DB
}

// NewTextBundleRepository creates a new text bundle repository
func NewTextBundleRepository(db *sqlite.DB) graphRepo.TextBundleRepository {
	return &SQLiteTextBundleRepository{db: db}
}

// Create stores a bundle and returns its handle
func (r *SQLiteTextBundleRepository) Create(ctx context.Context, entries map[string]string) (string, error) {
	if entries == nil {
		entries = map[string]string{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode text bundle: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.db.GetExecutor(ctx).ExecContext(ctx,
		`INSERT INTO text_bundles (id, entries) VALUES (?, ?)`, id, string(raw)); err != nil {
		return "", fmt.Errorf("create text bundle: %w", err)
	}
	return id, nil
}

// Get returns the entries of a bundle
func (r *SQLiteTextBundleRepository) Get(ctx context.Context, id string) (map[string]string, error) {
	var raw string
	err := r.db.GetExecutor(ctx).QueryRowContext(ctx,
		`SELECT entries FROM text_bundles WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if sqlite.IsNoRowsError(err) {
			return nil, fmt.Errorf("text bundle %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get text bundle: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode text bundle %s: %w", id, err)
	}
	return entries, nil
}

// Clone copies a bundle and returns the new handle
func (r *SQLiteTextBundleRepository) Clone(ctx context.Context, id string) (string, error) {
	newID := uuid.NewString()
	result, err := r.db.GetExecutor(ctx).ExecContext(ctx, `
		INSERT INTO text_bundles (id, entries)
		SELECT ?, entries FROM text_bundles WHERE id = ?
	`, newID, id)
	if err != nil {
		return "", fmt.Errorf("clone text bundle: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return "", fmt.Errorf("text bundle %s: %w", id, domain.ErrNotFound)
	}
	return newID, nil
}
