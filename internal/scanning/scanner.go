package scanning

// Scanner turns a receipt image into raw recognized text
type Scanner interface {
	// RecognizeText runs OCR over an image or PDF and returns the text in reading order
	RecognizeText(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
