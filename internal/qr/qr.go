// Package qr renders QR codes for table and person ordering links.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// Generator builds QR code data URIs for URLs under the public base URL.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// TableURL is the guest ordering entry point encoded in a table's QR code.
func (g *Generator) TableURL(tableNumber string) string {
	return fmt.Sprintf("%s/table/%s", g.baseURL, tableNumber)
}

// PersonURL is the per-person entry point for a bill-split session.
func (g *Generator) PersonURL(sessionID string, personNumber int32) string {
	return fmt.Sprintf("%s/person/%s/%d", g.baseURL, sessionID, personNumber)
}

// DataURI encodes url as a PNG QR code wrapped in a data: URI, ready to be
// embedded in an <img> tag without a separate asset endpoint.
func (g *Generator) DataURI(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, pngSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// TableDataURI renders the QR code stored on a table row.
func (g *Generator) TableDataURI(tableNumber string) (string, error) {
	return g.DataURI(g.TableURL(tableNumber))
}

// PersonDataURI renders the QR code stored on a bill-split person row.
func (g *Generator) PersonDataURI(sessionID string, personNumber int32) (string, error) {
	return g.DataURI(g.PersonURL(sessionID, personNumber))
}
