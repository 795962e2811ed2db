package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// pdfRenderDPI is high enough for Tesseract to read small receipt print
const pdfRenderDPI = 300

type imageFormat int

const (
	formatOther imageFormat = iota
	formatPNG
	formatPDF
	formatHEIC
)

// detectFormat sniffs the data first and falls back to the declared MIME type.
// Phones regularly upload HEIC files labelled as JPEG or octet-stream.
func detectFormat(data []byte, mimeType string) imageFormat {
	switch {
	case isHEICFormat(data):
		return formatHEIC
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return formatPDF
	case http.DetectContentType(data) == "image/png":
		return formatPNG
	case isHEICMimeType(mimeType):
		return formatHEIC
	case mimeType == "application/pdf":
		return formatPDF
	default:
		return formatOther
	}
}

// prepareImageData returns the upload as PNG, which every OCR provider accepts
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	switch detectFormat(imageData, mimeType) {
	case formatPNG:
		return imageData, nil
	case formatPDF:
		img, err := renderPDFPage(imageData)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return encodePNG(img)
	case formatHEIC:
		img, err := heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return encodePNG(img)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("unsupported image format %q (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", mimeType, err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return encodePNG(img)
}

// renderPDFPage renders the first page; receipts are a single page
func renderPDFPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, pdfRenderDPI)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ISO-BMFF ftyp box with a HEIC/HEIF brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
