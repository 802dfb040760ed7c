package api

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair answers Login and RefreshToken.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CreateDocumentRequest struct {
	Title string `json:"title"`
}

type Document struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// DocumentRequest addresses a single document.
type DocumentRequest struct {
	DocumentID int64 `json:"documentId"`
}

type FinalizeResponse struct {
	DocumentID      int64     `json:"documentId"`
	Code            string    `json:"code"`
	VerificationURL string    `json:"verificationUrl"`
	QRSVG           string    `json:"qrSvg"`
	QRURL           string    `json:"qrUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SignRequest struct {
	DocumentID int64  `json:"documentId"`
	Method     string `json:"method"`
	Platform   string `json:"platform"`
}

type Signature struct {
	ID               int64     `json:"id"`
	SignerID         int64     `json:"signerId"`
	DocumentID       int64     `json:"documentId"`
	Timestamp        time.Time `json:"timestamp"`
	VerificationCode string    `json:"verificationCode"`
	Method           string    `json:"method"`
	Platform         string    `json:"platform"`
	Verified         bool      `json:"verified"`
}

type SignResponse struct {
	Signature Signature `json:"signature"`
	Block     string    `json:"block"`
	BlockURL  string    `json:"blockUrl,omitempty"`
}

// StampRequest carries the PDF as base64 inside the Struct.
type StampRequest struct {
	DocumentID int64  `json:"documentId"`
	PDF        []byte `json:"pdf"`
}

type StampResponse struct {
	PDF []byte `json:"pdf"`
}

type ListSignaturesResponse struct {
	Signatures []Signature `json:"signatures"`
}

type LookupRequest struct {
	Code string `json:"code"`
}

type DocumentInfo struct {
	Title              string     `json:"title"`
	SignerName         string     `json:"signerName,omitempty"`
	SignatureTimestamp *time.Time `json:"signatureTimestamp,omitempty"`
}

type LookupResponse struct {
	Verified     bool          `json:"verified"`
	DocumentInfo *DocumentInfo `json:"documentInfo,omitempty"`
}
