package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/docverify/internal/common"
)

const (
	saltSize   = 8
	codeDigits = 8
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{2}-[A-Z0-9]{4}-[A-Z0-9]{2}$`)

// Config is injected at startup.
type Config struct {
	// BaseVerificationURL is the public lookup endpoint, e.g.
	// "https://example.cl/verificar-documento".
	BaseVerificationURL string
	// Location is used for the signing date printed in signature blocks.
	// Nil means UTC.
	Location *time.Location
}

// Generator implements code issuing and artifact rendering.
type Generator struct {
	baseURL string
	loc     *time.Location

	now    func() time.Time
	random io.Reader
}

func NewGenerator(cfg Config) *Generator {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		baseURL: strings.TrimRight(cfg.BaseVerificationURL, "/"),
		loc:     loc,
		now:     time.Now,
		random:  rand.Reader,
	}
}

// GenerateCode returns a fresh XX-XXXX-XX code for the document. The title
// only feeds the hash; it is not recoverable from the code.
func (g *Generator) GenerateCode(documentID int64, title string) (string, error) {
	if documentID <= 0 {
		return "", fmt.Errorf("%w: document id must be positive, got %d", common.ErrInvalidArgument, documentID)
	}
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: empty document title", common.ErrInvalidArgument)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(g.random, salt); err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}

	var data strings.Builder
	data.WriteString(strconv.FormatInt(documentID, 10))
	data.WriteByte('-')
	data.WriteString(title)
	data.WriteByte('-')
	data.WriteString(strconv.FormatInt(g.now().UnixMilli(), 10))
	data.WriteByte('-')
	data.WriteString(hex.EncodeToString(salt))

	sum := sha256.Sum256([]byte(data.String()))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))[:codeDigits]

	return h[0:2] + "-" + h[2:6] + "-" + h[6:8], nil
}

// ValidCode reports whether s has the XX-XXXX-XX shape.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// BuildVerificationURL returns the public lookup URL for code.
func (g *Generator) BuildVerificationURL(code string) string {
	return g.baseURL + "/" + code
}

// ExtractCodeFromURL recovers the code from a URL produced by
// BuildVerificationURL. Query strings and fragments are ignored.
func ExtractCodeFromURL(rawURL string) (string, error) {
	s := rawURL
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	code := s[strings.LastIndexByte(s, '/')+1:]
	if !ValidCode(code) {
		return "", fmt.Errorf("%w: no verification code in %q", common.ErrInvalidArgument, rawURL)
	}
	return code, nil
}
