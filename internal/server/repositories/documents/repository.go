// Package documents declares the repository contract for documents, the
// owning entity of verification and signature records.
package documents

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/server/models"
)

type Repository interface {
	// Create inserts doc in pending state and fills ID and timestamps.
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Document, error)
	UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus) error
	SetStorageKey(ctx context.Context, id int64, key string) error
	SetSignatureData(ctx context.Context, id int64, data string) error
}
