package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docverify/internal/verification"
)

// LookupCache stores positive lookup results by code. Writers that change
// what a lookup returns drop the entry with Delete.
type LookupCache interface {
	Get(ctx context.Context, code string) (*models.LookupResult, bool, error)
	Set(ctx context.Context, code string, result *models.LookupResult) error
	Delete(ctx context.Context, code string) error
}

// LookupService answers public "is this code genuine?" queries.
type LookupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       LookupCache
	log         logging.Logger
}

// NewLookupService wires the service. cache may be nil.
func NewLookupService(db *sql.DB, m repomanager.RepositoryManager, cache LookupCache, log logging.Logger) *LookupService {
	return &LookupService{
		db:          db,
		repomanager: m,
		cache:       cache,
		log:         log.With("module", "lookup"),
	}
}

// Lookup resolves code. Malformed and unknown codes are not errors: they
// yield Verified=false. Errors are returned only for storage failures.
func (s *LookupService) Lookup(ctx context.Context, code string) (*models.LookupResult, error) {
	if !verification.ValidCode(code) {
		return &models.LookupResult{Verified: false}, nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, code)
		if err != nil {
			s.log.Warn(ctx, "lookup cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	rec, err := s.repomanager.Verifications(s.db).GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.LookupResult{Verified: false}, nil
		}
		return nil, fmt.Errorf("error looking up code: %w", err)
	}

	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, rec.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	info := &models.DocumentInfo{Title: doc.Title}
	if latest, err := s.latestSignature(ctx, doc); err != nil {
		return nil, err
	} else if latest != nil {
		ts := latest.Timestamp
		info.SignatureTimestamp = &ts
		info.SignerName = s.signerName(ctx, latest.SignerID)
	}

	result := &models.LookupResult{Verified: true, DocumentInfo: info}

	if s.cache != nil {
		if err := s.cache.Set(ctx, code, result); err != nil {
			s.log.Warn(ctx, "lookup cache write failed", "error", err)
		}
	}
	return result, nil
}

// latestSignature prefers the record stored on the document and falls back
// to the signature log when that copy is missing or unreadable.
func (s *LookupService) latestSignature(ctx context.Context, doc *models.Document) (*verification.SignatureRecord, error) {
	if doc.SignatureData != "" {
		rec, err := verification.ParseSignatureData(doc.SignatureData)
		if err == nil {
			return &rec, nil
		}
		s.log.Warn(ctx, "stored signature data unreadable", "document_id", doc.ID, "error", err)
	}

	recs, err := s.repomanager.Signatures(s.db).ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing signatures: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	latest := recs[len(recs)-1]
	return &latest, nil
}

func (s *LookupService) signerName(ctx context.Context, signerID int64) string {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, signerID)
	if err != nil {
		s.log.Warn(ctx, "signer lookup failed", "signer_id", signerID, "error", err)
		return ""
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.UserName
}
