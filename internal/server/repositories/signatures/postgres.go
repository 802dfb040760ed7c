package signatures

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/verification"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *verification.SignatureRecord) (*verification.SignatureRecord, error) {
	query :=
		`INSERT INTO signature_records (signer_id, document_id, signed_at, verification_code, method, platform, verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.SignerID, rec.DocumentID, rec.Timestamp, rec.VerificationCode,
		string(rec.Method), string(rec.Platform), rec.Verified).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error) {
	query :=
		`SELECT id, signer_id, document_id, signed_at, verification_code, method, platform, verified
		 FROM signature_records
		 WHERE document_id = $1
		 ORDER BY signed_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []verification.SignatureRecord
	for rows.Next() {
		var rec verification.SignatureRecord
		if err := rows.Scan(&rec.ID, &rec.SignerID, &rec.DocumentID, &rec.Timestamp,
			&rec.VerificationCode, &rec.Method, &rec.Platform, &rec.Verified); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
