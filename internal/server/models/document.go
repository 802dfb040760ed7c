package models

import "time"

// DocumentStatus tracks where a document is in its distribution lifecycle.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentFinalized DocumentStatus = "finalized"
	DocumentSigned    DocumentStatus = "signed"
	DocumentRejected  DocumentStatus = "rejected"
)

// Document is the owning entity of verification and signature records.
type Document struct {
	ID      int64
	OwnerID int64
	Title   string
	Status  DocumentStatus
	// StorageKey points at the stored QR image, if any.
	StorageKey string
	// SignatureData is the JSON form of the most recent SignatureRecord.
	SignatureData string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AcceptsSignatures reports whether the document has a verification code
// and can therefore be signed.
func (d *Document) AcceptsSignatures() bool {
	return d.Status == DocumentFinalized || d.Status == DocumentSigned
}
