package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docverify/internal/server/storage"
	"github.com/dmitrijs2005/docverify/internal/verification"
)

// SignResult is the outcome of one signing event.
type SignResult struct {
	Record *verification.SignatureRecord
	// Block is the HTML fragment to append to the rendered document.
	Block string
	// BlockURL is a presigned link to the stored block; empty without object storage.
	BlockURL string
}

// SignatureService records signatures on finalized documents. Each signer
// adds one record; records are never changed afterwards.
type SignatureService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codes       *verification.Generator
	store       storage.ObjectStore
	cache       LookupCache
	log         logging.Logger
	now         func() time.Time
}

// NewSignatureService wires the service. store and cache may be nil.
func NewSignatureService(db *sql.DB, m repomanager.RepositoryManager, codes *verification.Generator,
	store storage.ObjectStore, cache LookupCache, log logging.Logger) *SignatureService {
	return &SignatureService{
		db:          db,
		repomanager: m,
		codes:       codes,
		store:       store,
		cache:       cache,
		log:         log.With("module", "signatures"),
		now:         time.Now,
	}
}

// Sign appends a signature by signerID to the document.
func (s *SignatureService) Sign(ctx context.Context, signerID, documentID int64,
	method verification.SignatureMethod, platform verification.Platform) (*SignResult, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown signature method %q", common.ErrInvalidArgument, method)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", common.ErrInvalidArgument, platform)
	}

	var rec *verification.SignatureRecord
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := s.repomanager.Documents(tx)

		doc, err := docs.GetByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !doc.AcceptsSignatures() {
			return common.ErrDocumentNotFinalized
		}

		vr, err := s.repomanager.Verifications(tx).GetByDocumentID(ctx, documentID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrDocumentNotFinalized
			}
			return err
		}

		rec = &verification.SignatureRecord{
			SignerID:         signerID,
			DocumentID:       documentID,
			Timestamp:        s.now().UTC().Truncate(time.Microsecond),
			VerificationCode: vr.Code,
			Method:           method,
			Platform:         platform,
			// Signer identity is not checked here; records are stored as verified.
			Verified: true,
		}
		if _, err := s.repomanager.Signatures(tx).Create(ctx, rec); err != nil {
			return err
		}

		data, err := verification.EncodeSignatureData(*rec)
		if err != nil {
			return err
		}
		if err := docs.SetSignatureData(ctx, documentID, data); err != nil {
			return err
		}
		if doc.Status != models.DocumentSigned {
			return docs.UpdateStatus(ctx, documentID, models.DocumentSigned)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrDocumentNotFinalized) {
			return nil, err
		}
		return nil, fmt.Errorf("error signing document: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, rec.VerificationCode); err != nil {
			s.log.Warn(ctx, "lookup cache invalidation failed", "code", rec.VerificationCode, "error", err)
		}
	}

	block, err := s.codes.BuildSignatureBlock(*rec, rec.VerificationCode, s.codes.RenderQRSVG(rec.VerificationCode))
	if err != nil {
		return nil, fmt.Errorf("error rendering signature block: %w", err)
	}

	s.log.Info(ctx, "document signed", "document_id", documentID, "signer_id", signerID, "signature_id", rec.ID)

	res := &SignResult{Record: rec, Block: block}
	if s.store != nil {
		res.BlockURL = s.publishBlock(ctx, rec, block)
	}
	return res, nil
}

func (s *SignatureService) publishBlock(ctx context.Context, rec *verification.SignatureRecord, block string) string {
	key := storage.StorageKey(rec.DocumentID, "signatures", strconv.FormatInt(rec.ID, 10)+".html")
	if err := s.store.Put(ctx, key, "text/html; charset=utf-8", []byte(block)); err != nil {
		s.log.Warn(ctx, "signature block upload failed", "document_id", rec.DocumentID, "error", err)
		return ""
	}
	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "signature block presign failed", "document_id", rec.DocumentID, "error", err)
		return ""
	}
	return url
}

// List returns the document's signatures, oldest first.
func (s *SignatureService) List(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error) {
	if _, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	recs, err := s.repomanager.Signatures(s.db).ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("error listing signatures: %w", err)
	}
	return recs, nil
}
