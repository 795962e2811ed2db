package receipt

import (
	"time"

	"github.com/zombor/receipt-scanner/internal/parsing"
)

// Scan is one processed receipt: the OCR text and what the parser made of it
type Scan struct {
	ID          string                `json:"id"`
	Filename    string                `json:"filename,omitempty"` // Empty when the image was not retained
	ContentType string                `json:"content_type"`
	RawText     string                `json:"raw_text"`
	Parsed      parsing.ParsedReceipt `json:"parsed_receipt"`
	TotalCents  int64                 `json:"total_cents"` // Parsed total in cents, 0 when absent
	CreatedAt   time.Time             `json:"created_at"`
}

// Result is the response shape for a processed receipt
type Result struct {
	Success       bool                  `json:"success"`
	ID            string                `json:"id,omitempty"`
	RawText       string                `json:"rawText"`
	ParsedReceipt parsing.ParsedReceipt `json:"parsedReceipt"`
}

// NewResult builds the response for a scan
func NewResult(scan *Scan) Result {
	return Result{
		Success:       true,
		ID:            scan.ID,
		RawText:       scan.RawText,
		ParsedReceipt: scan.Parsed,
	}
}
