package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"

	"github.com/joseph-ayodele/invoice-insights/constants"
)

// maxImageDim bounds the longer image edge before dispatch; vision APIs
// downscale anyway and smaller payloads upload faster.
const maxImageDim = 2048

// Payload is a prepared oracle input: bytes plus the media type that
// actually matches them.
type Payload struct {
	Data      []byte
	MediaType string
}

// Prepare converts a document into an image payload the oracle accepts:
// PDFs are rendered (first page), HEIC is decoded, oversized images are
// downscaled, everything else passes through with its sniffed media type.
// The declared extension is only a fallback; files routinely lie about it.
func Prepare(doc Document) (Payload, error) {
	mediaType := SniffMediaType(doc.Data, constants.MediaTypeForExt(filepath.Ext(doc.Filename)))

	switch mediaType {
	case "application/pdf":
		data, err := renderPDFPage(doc.Data)
		if err != nil {
			return Payload{}, fmt.Errorf("convert pdf: %w", err)
		}
		return Payload{Data: data, MediaType: "image/png"}, nil
	case "image/heic":
		img, err := heic.Decode(bytes.NewReader(doc.Data))
		if err != nil {
			return Payload{}, fmt.Errorf("decode heic: %w", err)
		}
		data, err := encodePNG(downscale(img))
		if err != nil {
			return Payload{}, err
		}
		return Payload{Data: data, MediaType: "image/png"}, nil
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return shrinkIfOversized(doc.Data, mediaType)
	default:
		return Payload{}, fmt.Errorf("unsupported media type %q for %s", mediaType, doc.Filename)
	}
}

// SniffMediaType detects the real media type from magic bytes, falling back
// to the caller's extension-derived guess.
func SniffMediaType(data []byte, fallback string) string {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("%PDF")):
		return "application/pdf"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case isHEIC(data):
		return "image/heic"
	default:
		return fallback
	}
}

// isHEIC checks for an ISO-BMFF ftyp box with a HEIC/HEIF brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// renderPDFPage renders the first page to PNG. Invoices are near-universally
// single page; further pages rarely carry line items.
func renderPDFPage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering pdf page: %w", err)
	}
	return encodePNG(downscale(img))
}

// shrinkIfOversized re-encodes only when the image exceeds maxImageDim;
// otherwise the original bytes go through untouched.
func shrinkIfOversized(data []byte, mediaType string) (Payload, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Undecodable but plausibly typed; let the oracle try.
		return Payload{Data: data, MediaType: mediaType}, nil
	}
	b := img.Bounds()
	if b.Dx() <= maxImageDim && b.Dy() <= maxImageDim {
		return Payload{Data: data, MediaType: mediaType}, nil
	}
	shrunk, err := encodePNG(downscale(img))
	if err != nil {
		return Payload{}, err
	}
	return Payload{Data: shrunk, MediaType: "image/png"}, nil
}

func downscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxImageDim && b.Dy() <= maxImageDim {
		return img
	}
	return imaging.Fit(img, maxImageDim, maxImageDim, imaging.Lanczos)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
