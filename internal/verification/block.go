package verification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/goodsign/monday"

	"github.com/dmitrijs2005/docverify/internal/common"
)

const signedAtLayout = "2 de January de 2006, 15:04"

var methodLabels = map[SignatureMethod]string{
	MethodSimple:    "Firma electrónica simple",
	MethodAdvanced:  "Firma electrónica avanzada",
	MethodQualified: "Firma electrónica calificada",
}

var platformLabels = map[Platform]string{
	PlatformWeb:    "Web",
	PlatformMobile: "Móvil",
	PlatformPOS:    "Punto de venta",
}

// Every value reaches the page through html/template, so fields are escaped
// for their context. The QR markup is only ever referenced as a base64 data
// URI in an <img>; it is never spliced into the fragment.
var signatureBlockTmpl = template.Must(template.New("signature-block").Parse(
	`<div class="signature-block" style="margin-top:24px;padding:12px;border-top:1px solid #1e3a8a;font-family:Arial,sans-serif;font-size:11px">` +
		`<table><tr><td style="vertical-align:top">` +
		`<p style="font-weight:bold;color:#1e3a8a">Documento firmado electrónicamente</p>` +
		`<p>Fecha de firma: {{.SignedAt}}</p>` +
		`<p>{{.Method}} · {{.Platform}}</p>` +
		`<p>Código de verificación: <strong>{{.Code}}</strong></p>` +
		`<p>Verifique este documento en <a href="{{.URL}}">{{.URL}}</a></p>` +
		`</td><td style="vertical-align:top">` +
		`<img src="{{.QR}}" alt="Código QR {{.Code}}" width="120" height="120"/>` +
		`</td></tr></table>` +
		`</div>`))

type signatureBlockView struct {
	SignedAt string
	Method   string
	Platform string
	Code     string
	URL      string
	QR       template.URL
}

// FormatSignedAt renders t as the Spanish date printed in signature blocks,
// in the generator's location.
func (g *Generator) FormatSignedAt(t time.Time) string {
	return monday.Format(t.In(g.loc), signedAtLayout, monday.LocaleEsES)
}

// BuildSignatureBlock renders the HTML fragment appended to the bottom of a
// signed document.
func (g *Generator) BuildSignatureBlock(record SignatureRecord, code, qrSVG string) (string, error) {
	if record.Timestamp.IsZero() {
		return "", fmt.Errorf("%w: signature timestamp is empty", common.ErrInvalidArgument)
	}
	method, ok := methodLabels[record.Method]
	if !ok {
		return "", fmt.Errorf("%w: unknown signature method %q", common.ErrInvalidArgument, record.Method)
	}
	platform, ok := platformLabels[record.Platform]
	if !ok {
		return "", fmt.Errorf("%w: unknown platform %q", common.ErrInvalidArgument, record.Platform)
	}

	view := signatureBlockView{
		SignedAt: g.FormatSignedAt(record.Timestamp),
		Method:   method,
		Platform: platform,
		Code:     code,
		URL:      g.BuildVerificationURL(code),
		QR:       template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(qrSVG))),
	}

	var buf bytes.Buffer
	if err := signatureBlockTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render signature block: %w", err)
	}
	return buf.String(), nil
}
