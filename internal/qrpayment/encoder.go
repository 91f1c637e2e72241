package qrpayment

import (
	"bytes"
	"fmt"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/rs/zerolog"

	"fsreport/internal/logger"
	"fsreport/pkg/models"
)

const (
	// quietZone is the blank border around the code, in modules.
	quietZone = 4

	// moduleSize is the rendered size of one module, in SVG user units.
	moduleSize = 8
)

// Encoder renders QR Platba payment codes as SVG.
type Encoder struct {
	log zerolog.Logger
}

// NewEncoder creates an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{log: logger.WithComponent("qrpayment")}
}

// Encode builds the payment descriptor and returns the QR code as SVG.
func (e *Encoder) Encode(p models.PaymentInstruction) ([]byte, error) {
	const op = "Encode"

	descriptor, err := Descriptor(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	code, err := qr.Encode(descriptor, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode QR matrix: %w", op, err)
	}

	e.log.Debug().Str("descriptor", descriptor).Msg("Encoded payment descriptor")
	return svg(code), nil
}

// svg draws every dark module as a unit rectangle inside a quiet zone.
func svg(code barcode.Barcode) []byte {
	bounds := code.Bounds()
	modules := bounds.Dx()
	side := (modules + 2*quietZone) * moduleSize

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n",
		side, side, modules+2*quietZone, modules+2*quietZone)
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	buf.WriteString(`<path fill="#000000" d="`)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r, _, _, _ := code.At(x, y).RGBA(); r == 0 {
				fmt.Fprintf(&buf, "M%d %dh1v1h-1z", x-bounds.Min.X+quietZone, y-bounds.Min.Y+quietZone)
			}
		}
	}

	buf.WriteString(`"/>` + "\n</svg>\n")
	return buf.Bytes()
}
