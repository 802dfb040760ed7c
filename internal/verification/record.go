package verification

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/docverify/internal/common"
)

// SignatureMethod is the legal strength of a signature.
type SignatureMethod string

const (
	MethodSimple    SignatureMethod = "simple"
	MethodAdvanced  SignatureMethod = "advanced"
	MethodQualified SignatureMethod = "qualified"
)

func (m SignatureMethod) Valid() bool {
	switch m {
	case MethodSimple, MethodAdvanced, MethodQualified:
		return true
	}
	return false
}

// ParseSignatureMethod accepts the wire name of a method.
func ParseSignatureMethod(s string) (SignatureMethod, error) {
	m := SignatureMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown signature method %q", common.ErrInvalidArgument, s)
	}
	return m, nil
}

// Platform is where the signing happened.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
	PlatformPOS    Platform = "pos"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformWeb, PlatformMobile, PlatformPOS:
		return true
	}
	return false
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown platform %q", common.ErrInvalidArgument, s)
	}
	return p, nil
}

// SignatureRecord is an immutable log entry for one signing event.
// A document accumulates one record per signer.
type SignatureRecord struct {
	ID               int64           `json:"id,omitempty"`
	SignerID         int64           `json:"signerId"`
	DocumentID       int64           `json:"documentId"`
	Timestamp        time.Time       `json:"timestamp"`
	VerificationCode string          `json:"verificationCode"`
	Method           SignatureMethod `json:"method"`
	Platform         Platform        `json:"platform"`
	Verified         bool            `json:"verified"`
}
