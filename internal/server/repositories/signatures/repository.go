// Package signatures stores the per-signer log of signing events.
// Records are insert-only.
package signatures

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/verification"
)

type Repository interface {
	Create(ctx context.Context, rec *verification.SignatureRecord) (*verification.SignatureRecord, error)
	// ListByDocument returns the document's records, oldest first.
	ListByDocument(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error)
}
