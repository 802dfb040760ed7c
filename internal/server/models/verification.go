package models

import "time"

// VerificationRecord binds a document to its public verification code.
// It is created once, when the document is finalized, and never changes.
type VerificationRecord struct {
	DocumentID int64     `json:"documentId"`
	Code       string    `json:"code"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DocumentInfo is the public part of a document revealed by a lookup.
type DocumentInfo struct {
	Title              string     `json:"title"`
	SignerName         string     `json:"signerName,omitempty"`
	SignatureTimestamp *time.Time `json:"signatureTimestamp,omitempty"`
}

// LookupResult answers "is this code genuine?".
type LookupResult struct {
	Verified     bool          `json:"verified"`
	DocumentInfo *DocumentInfo `json:"documentInfo,omitempty"`
}
