package verification

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/common"
)

// EncodeSignatureData serializes a signature record into the form stored on
// the document row.
func EncodeSignatureData(record SignatureRecord) (string, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode signature data: %w", err)
	}
	return string(b), nil
}

// ParseSignatureData is the inverse of EncodeSignatureData.
func ParseSignatureData(data string) (SignatureRecord, error) {
	var record SignatureRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return SignatureRecord{}, fmt.Errorf("%w: %v", common.ErrInvalidSignatureData, err)
	}
	if record.DocumentID <= 0 || record.VerificationCode == "" {
		return SignatureRecord{}, fmt.Errorf("%w: missing document id or verification code", common.ErrInvalidSignatureData)
	}
	return record, nil
}
