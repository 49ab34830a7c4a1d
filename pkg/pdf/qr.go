package pdf

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const qrPixels = 256

// qrImage encodes payload as a PNG QR code at low error correction
func qrImage(payload string) ([]byte, error) {
	code, err := qr.Encode(payload, qr.L, qr.Auto)
	if err != nil {
		return nil, err
	}

	scaled, err := barcode.Scale(code, qrPixels, qrPixels)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
