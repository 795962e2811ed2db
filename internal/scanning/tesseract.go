package scanning

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Scanner interface using a local Tesseract install
type Tesseract struct {
	languages []string
}

// NewTesseract creates a new Tesseract Scanner instance.
// Languages are Tesseract codes such as "eng" or "deu"; "eng" is used when none are given.
func NewTesseract(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{languages: languages}, nil
}

// RecognizeText runs Tesseract over the receipt image.
// A client is created per call because gosseract clients are not safe for concurrent use.
func (t *Tesseract) RecognizeText(imageData []byte, contentType string) (string, error) {
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting tesseract language: %w", err)
	}
	// Receipts are a single column of text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	// Keeps runs of spaces between descriptions and prices
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return "", fmt.Errorf("setting tesseract variable: %w", err)
	}
	if err := client.SetImageFromBytes(finalImageData); err != nil {
		return "", fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

// Close is a no-op; clients are released after every call
func (t *Tesseract) Close() error {
	return nil
}
