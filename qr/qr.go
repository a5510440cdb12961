// Package qr renders payment confirmation URLs as scannable codes.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// EncodePNG returns the content as a base64-encoded PNG QR code suitable
// for embedding in a data URI.
func EncodePNG(content string, size int) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty QR content")
	}
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
