package parsing

import (
	"regexp"
	"strings"
)

// maxAddressLines is how many lines after the merchant may form the address
const maxAddressLines = 5

var (
	// addressStopPattern marks the start of receipt metadata (invoice numbers, cashier, dates, totals)
	addressStopPattern = regexp.MustCompile(`(?i)(invoice|tab|date|slip|host|cashier|qty|desc|amount|amt|subtotal|total|tax|balance|vat|cash|change|\d{2}[/\-]\d{2}[/\-]\d{2,4})`)

	digitPattern = regexp.MustCompile(`\d`)

	// streetLinePattern matches "123 Main St": a house number followed by text without digits
	streetLinePattern = regexp.MustCompile(`^\d{1,6}[A-Za-z]?\s+[^\d]+$`)
)

// extractMerchant returns the first line, which is where receipts print the business name
func extractMerchant(lines []string) string {
	if len(lines) == 0 {
		return unknownMerchant
	}
	return lines[0]
}

// extractAddress collects the lines following the merchant until the first line
// that looks like metadata or carries a number.
func extractAddress(lines []string) string {
	var addressLines []string
	for i := 1; i < len(lines) && i <= maxAddressLines; i++ {
		if endsAddress(lines[i]) {
			break
		}
		addressLines = append(addressLines, lines[i])
	}
	return strings.Join(addressLines, ", ")
}

func endsAddress(line string) bool {
	if addressStopPattern.MatchString(line) {
		return true
	}
	return digitPattern.MatchString(line) && !streetLinePattern.MatchString(line)
}
