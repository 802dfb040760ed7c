// Package verifications stores the binding between a document and its public
// verification code. Records are insert-only.
package verifications

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/server/models"
)

type Repository interface {
	// Create inserts rec. A code already held by another document yields
	// common.ErrCodeConflict; a second record for the same document yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, rec *models.VerificationRecord) (*models.VerificationRecord, error)
	GetByCode(ctx context.Context, code string) (*models.VerificationRecord, error)
	GetByDocumentID(ctx context.Context, documentID int64) (*models.VerificationRecord, error)
}
