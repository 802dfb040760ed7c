package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/signatures"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/users"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/verifications"
)

// RepositoryManager vends repositories bound to either the pool or an open
// transaction, so services can compose them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
	Verifications(db dbx.DBTX) verifications.Repository
	Signatures(db dbx.DBTX) signatures.Repository
}
