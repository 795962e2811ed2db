package parsing

import "regexp"

// Dates are returned exactly as printed. Day-first and month-first receipts
// look the same, so no calendar conversion is attempted.
var datePatterns = []*regexp.Regexp{
	// 01/02/2023, 01-02-23, 01.02.2023
	regexp.MustCompile(`(?:^|\D)(\d{2}[/\-.]\d{2}[/\-.]\d{2,4})`),
	// 2023-01-02
	regexp.MustCompile(`(?:^|\D)(\d{4}[/\-.]\d{2}[/\-.]\d{2})`),
}

// extractDate returns the first date-like token in document order
func extractDate(lines []string) *string {
	for _, line := range lines {
		for _, pattern := range datePatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				date := m[1]
				return &date
			}
		}
	}
	return nil
}
