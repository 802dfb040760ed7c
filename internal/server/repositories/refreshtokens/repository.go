// Package refreshtokens stores the single-use refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docverify/internal/server/models"
)

// Repository issues, consumes and prunes refresh tokens.
type Repository interface {
	// Create stores token for userID, valid until expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Consume deletes token and returns the row it held, so a token can be
	// redeemed at most once. Unknown tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// PurgeExpired removes userID's tokens that expired at or before now and
	// reports how many were removed.
	PurgeExpired(ctx context.Context, userID int64, now time.Time) (int64, error)
}
