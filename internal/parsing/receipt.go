package parsing

import "strings"

// unknownMerchant is used when the text contains no lines at all
const unknownMerchant = "N/A"

// defaultQuantity is reported for every item; quantities are not read from the text
const defaultQuantity = "1"

// Item is a single priced line found on a receipt
type Item struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Quantity    string `json:"quantity"`
}

// ParsedReceipt is the structured result of parsing OCR text.
// Optional fields are nil when nothing matched and serialize as null.
type ParsedReceipt struct {
	Merchant string  `json:"merchant"`
	Address  string  `json:"address"`
	Date     *string `json:"date"`
	Subtotal *string `json:"subtotal"`
	Tax      *string `json:"tax"`
	Total    *string `json:"total"`
	Items    []Item  `json:"items"`
}

// Parse turns raw OCR text into a ParsedReceipt.
// It never fails: fields it cannot find are left empty or nil.
func Parse(rawText string) ParsedReceipt {
	lines := normalizeLines(rawText)

	return ParsedReceipt{
		Merchant: extractMerchant(lines),
		Address:  extractAddress(lines),
		Date:     extractDate(lines),
		Subtotal: findAmount(lines, subtotalField),
		Tax:      findAmount(lines, taxField),
		Total:    findAmount(lines, totalField),
		Items:    extractItems(lines),
	}
}

// normalizeLines splits text on line breaks, trims every line and drops blank ones
func normalizeLines(rawText string) []string {
	parts := strings.FieldsFunc(rawText, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimSpace(part)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
