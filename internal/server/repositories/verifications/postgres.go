package verifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/server/models"
)

// Constraint names from the init migration.
const (
	constraintCode     = "verification_records_code_key"
	constraintDocument = "verification_records_pkey"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.VerificationRecord) (*models.VerificationRecord, error) {
	query :=
		`INSERT INTO verification_records (document_id, code)
		 VALUES ($1, $2)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, rec.DocumentID, rec.Code).Scan(&rec.CreatedAt)
	if err != nil {
		if constraint, ok := dbx.IsUniqueViolation(err); ok {
			switch constraint {
			case constraintCode:
				return nil, common.ErrCodeConflict
			case constraintDocument:
				return nil, common.ErrorAlreadyExists
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.VerificationRecord, error) {
	query :=
		`SELECT document_id, code, created_at FROM verification_records
		 WHERE code = $1
		 `
	return r.get(ctx, query, code)
}

func (r *PostgresRepository) GetByDocumentID(ctx context.Context, documentID int64) (*models.VerificationRecord, error) {
	query :=
		`SELECT document_id, code, created_at FROM verification_records
		 WHERE document_id = $1
		 `
	return r.get(ctx, query, documentID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*models.VerificationRecord, error) {
	rec := &models.VerificationRecord{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&rec.DocumentID, &rec.Code, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}
