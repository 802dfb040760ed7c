package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/dbx"
	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docverify/internal/server/storage"
	"github.com/dmitrijs2005/docverify/internal/verification"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxCodeAttempts bounds regeneration after a code collision.
const maxCodeAttempts = 5

const stampDescription = "font:Helvetica, points:8, pos:bc, off:0 12, scale:1 abs, rot:0, fillc:#1e3a8a"

func init() {
	// Keep pdfcpu from writing a config directory under the user's home.
	model.ConfigPath = "disable"
}

var addWatermarks = func(rs io.ReadSeeker, w io.Writer, wm *model.Watermark) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.AddWatermarks(rs, w, nil, wm, conf)
}

// FinalizeResult describes a document's verification artifacts.
type FinalizeResult struct {
	Document        *models.Document
	Record          *models.VerificationRecord
	VerificationURL string
	QRSVG           string
	// QRURL is a presigned link to the stored QR image; empty without object storage.
	QRURL string
}

// DocumentService owns the document lifecycle up to finalization.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codes       *verification.Generator
	store       storage.ObjectStore
	log         logging.Logger
}

// NewDocumentService wires the service. store may be nil, which disables
// artifact uploads.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, codes *verification.Generator,
	store storage.ObjectStore, log logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		codes:       codes,
		store:       store,
		log:         log.With("module", "documents"),
	}
}

// Create registers a pending document for ownerID.
func (s *DocumentService) Create(ctx context.Context, ownerID int64, title string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty document title", common.ErrInvalidArgument)
	}

	doc, err := s.repomanager.Documents(s.db).Create(ctx, &models.Document{OwnerID: ownerID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	s.log.Info(ctx, "document created", "document_id", doc.ID, "owner_id", ownerID)
	return doc, nil
}

// Finalize assigns the document its verification code. Calling it again
// returns the existing record unchanged.
func (s *DocumentService) Finalize(ctx context.Context, ownerID, documentID int64) (*FinalizeResult, error) {
	doc, err := s.ownedDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	rec, err := s.repomanager.Verifications(s.db).GetByDocumentID(ctx, documentID)
	switch {
	case err == nil:
		return s.result(ctx, doc, rec, false), nil
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error loading verification record: %w", err)
	}

	if doc.Status != models.DocumentPending {
		return nil, fmt.Errorf("%w: document is %s", common.ErrInvalidArgument, doc.Status)
	}

	rec, err = s.issueCode(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.Status = models.DocumentFinalized

	s.log.Info(ctx, "document finalized", "document_id", doc.ID, "code", rec.Code)
	return s.result(ctx, doc, rec, true), nil
}

// issueCode inserts the verification record and flips the document status
// in one transaction, regenerating the code on collisions.
func (s *DocumentService) issueCode(ctx context.Context, doc *models.Document) (*models.VerificationRecord, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codes.GenerateCode(doc.ID, doc.Title)
		if err != nil {
			return nil, fmt.Errorf("error generating code: %w", err)
		}

		rec := &models.VerificationRecord{DocumentID: doc.ID, Code: code}
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			if _, err := s.repomanager.Verifications(tx).Create(ctx, rec); err != nil {
				return err
			}
			return s.repomanager.Documents(tx).UpdateStatus(ctx, doc.ID, models.DocumentFinalized)
		})

		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, common.ErrCodeConflict):
			s.log.Warn(ctx, "verification code collision, regenerating", "document_id", doc.ID, "attempt", attempt)
			continue
		case errors.Is(err, common.ErrorAlreadyExists):
			// A concurrent Finalize won; hand back its record.
			existing, getErr := s.repomanager.Verifications(s.db).GetByDocumentID(ctx, doc.ID)
			if getErr != nil {
				return nil, fmt.Errorf("error loading verification record: %w", getErr)
			}
			return existing, nil
		default:
			return nil, fmt.Errorf("error storing verification record: %w", err)
		}
	}

	s.log.Error(ctx, "verification code space exhausted", "document_id", doc.ID, "attempts", maxCodeAttempts)
	return nil, common.ErrCodeSpaceExhausted
}

// result renders the QR and, when object storage is configured, publishes
// it. Storage failures are logged; the code itself is already committed.
func (s *DocumentService) result(ctx context.Context, doc *models.Document, rec *models.VerificationRecord, upload bool) *FinalizeResult {
	res := &FinalizeResult{
		Document:        doc,
		Record:          rec,
		VerificationURL: s.codes.BuildVerificationURL(rec.Code),
		QRSVG:           s.codes.RenderQRSVG(rec.Code),
	}
	if s.store == nil {
		return res
	}

	key := storage.StorageKey(doc.ID, "verification", "qr.svg")
	if upload || doc.StorageKey == "" {
		if err := s.store.Put(ctx, key, "image/svg+xml", []byte(res.QRSVG)); err != nil {
			s.log.Warn(ctx, "qr upload failed", "document_id", doc.ID, "error", err)
			return res
		}
		if err := s.repomanager.Documents(s.db).SetStorageKey(ctx, doc.ID, key); err != nil {
			s.log.Warn(ctx, "storing qr key failed", "document_id", doc.ID, "error", err)
		} else {
			doc.StorageKey = key
		}
	}

	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "qr presign failed", "document_id", doc.ID, "error", err)
		return res
	}
	res.QRURL = url
	return res
}

// Stamp prints the verification line onto every page of pdf and returns the
// stamped file. The document must be finalized.
func (s *DocumentService) Stamp(ctx context.Context, ownerID, documentID int64, pdf []byte) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty pdf", common.ErrInvalidArgument)
	}

	doc, err := s.ownedDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	rec, err := s.repomanager.Verifications(s.db).GetByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrDocumentNotFinalized
		}
		return nil, fmt.Errorf("error loading verification record: %w", err)
	}

	text := fmt.Sprintf("Documento firmado electrónicamente · %s · %s", rec.Code, s.codes.BuildVerificationURL(rec.Code))
	wm, err := api.TextWatermark(text, stampDescription, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("error building stamp: %w", err)
	}

	var out bytes.Buffer
	if err := addWatermarks(bytes.NewReader(pdf), &out, wm); err != nil {
		return nil, fmt.Errorf("%w: cannot stamp pdf: %v", common.ErrInvalidArgument, err)
	}
	stamped := out.Bytes()

	if s.store != nil {
		key := storage.RandomStorageKey(doc.ID, "stamped", ".pdf")
		if err := s.store.Put(ctx, key, "application/pdf", stamped); err != nil {
			s.log.Warn(ctx, "stamped pdf upload failed", "document_id", doc.ID, "error", err)
		} else {
			s.log.Info(ctx, "stamped pdf stored", "document_id", doc.ID, "key", key)
		}
	}

	return stamped, nil
}

func (s *DocumentService) ownedDocument(ctx context.Context, ownerID, documentID int64) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}
	if doc.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return doc, nil
}
