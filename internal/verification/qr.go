package verification

import (
	"errors"
	"fmt"
	"html"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrScale = 4

// PlaceholderMarker is the visible text of the fallback graphic.
const PlaceholderMarker = "QR UNAVAILABLE"

var errEmptyMatrix = errors.New("qr: empty module matrix")

// newQRCode is a seam for forcing encoder failures in tests.
var newQRCode = qrcode.New

// RenderQRSVG encodes the verification URL of code as inline SVG markup.
// It never fails: rendering runs inside the document pipeline, so encoder
// errors produce a clearly marked placeholder instead.
func (g *Generator) RenderQRSVG(code string) string {
	svg, err := encodeSVG(g.BuildVerificationURL(code))
	if err != nil {
		return placeholderSVG(code)
	}
	return svg
}

// encodeSVG renders content with high error correction. The library's
// bitmap already carries the standard 4-module quiet zone.
func encodeSVG(content string) (string, error) {
	q, err := newQRCode(content, qrcode.High)
	if err != nil {
		return "", err
	}
	bitmap := q.Bitmap()
	if len(bitmap) == 0 {
		return "", errEmptyMatrix
	}

	size := len(bitmap) * qrScale

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, size, size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, size, size)
	b.WriteString(`<path fill="#000000" d="`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh%dv%dh-%dz", x*qrScale, y*qrScale, qrScale, qrScale, qrScale)
			}
		}
	}
	b.WriteString(`"/></svg>`)

	return b.String(), nil
}

func placeholderSVG(code string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">` +
		`<rect x="2" y="2" width="196" height="196" fill="#ffffff" stroke="#b91c1c" stroke-width="4"/>` +
		`<text x="100" y="95" font-family="Arial" font-size="14" fill="#b91c1c" text-anchor="middle">` + PlaceholderMarker + `</text>` +
		`<text x="100" y="120" font-family="Arial" font-size="12" fill="#000000" text-anchor="middle">` + html.EscapeString(code) + `</text>` +
		`</svg>`
}
