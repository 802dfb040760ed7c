package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectDocument = `SELECT id, owner_id, title, status, storage_key, signature_data, created_at, updated_at
		 FROM documents
		 WHERE id = $1`

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query :=
		`INSERT INTO documents (owner_id, title, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}

	err := r.db.QueryRowContext(ctx, query, doc.OwnerID, doc.Title, doc.Status).
		Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	return r.get(ctx, selectDocument, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Document, error) {
	return r.get(ctx, selectDocument+" FOR UPDATE", id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id int64) (*models.Document, error) {
	doc := &models.Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.OwnerID, &doc.Title, &doc.Status, &doc.StorageKey, &doc.SignatureData, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus) error {
	return r.update(ctx, `UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

func (r *PostgresRepository) SetStorageKey(ctx context.Context, id int64, key string) error {
	return r.update(ctx, `UPDATE documents SET storage_key = $2, updated_at = now() WHERE id = $1`, id, key)
}

func (r *PostgresRepository) SetSignatureData(ctx context.Context, id int64, data string) error {
	return r.update(ctx, `UPDATE documents SET signature_data = $2, updated_at = now() WHERE id = $1`, id, data)
}

func (r *PostgresRepository) update(ctx context.Context, query string, id int64, value string) error {
	res, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
