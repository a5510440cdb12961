package qr

import (
	"encoding/base64"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	encoded, err := EncodePNG("https://shop.local/payments/confirm?token=abc", 256)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Output is not valid base64: %v", err)
	}

	// PNG magic bytes
	if len(png) < 8 || png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("Expected a PNG payload")
	}
}

func TestEncodePNG_EmptyContent(t *testing.T) {
	if _, err := EncodePNG("", 256); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestEncodePNG_DefaultSize(t *testing.T) {
	if _, err := EncodePNG("token", 0); err != nil {
		t.Errorf("Expected default size to apply, got %v", err)
	}
}
