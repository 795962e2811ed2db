package parsing

import (
	"regexp"
	"strings"
)

var (
	edgeNoisePattern = regexp.MustCompile(`^[^A-Za-z0-9]+|[^A-Za-z0-9]+$`)

	// OCR often reads a 9 as an S: "S4.66" is really "94.66"
	misreadNinePattern = regexp.MustCompile(`S(\d)`)

	// Scale sub-lines such as "0.50 kg NET" or "1.2 kg @ 3.99/kg"
	weightLeadPattern  = regexp.MustCompile(`(?i)^\d+\.\d+\s*kg`)
	weightTokenPattern = regexp.MustCompile(`(?i)NET|@|kg|ka|/kg|/ka`)

	itemPattern = regexp.MustCompile(`^(.+?)\s*(\d+\.\d{2})$`)
)

// extractItems returns one item per line that ends in a price, in line order.
// Summary lines (subtotal, tax, total, balance) are reported as totals, not items.
func extractItems(lines []string) []Item {
	items := make([]Item, 0)
	for _, line := range lines {
		if summaryPattern.MatchString(line) {
			continue
		}
		if item, ok := parseItemLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseItemLine(line string) (Item, bool) {
	clean := cleanItemLine(line)
	if isWeightLine(clean) {
		return Item{}, false
	}

	m := itemPattern.FindStringSubmatch(clean)
	if m == nil {
		return Item{}, false
	}

	return Item{
		Description: strings.TrimSpace(m[1]),
		Amount:      m[2],
		Quantity:    defaultQuantity,
	}, true
}

// cleanItemLine strips edge punctuation, repairs S-for-9 misreads and drops dollar signs
func cleanItemLine(line string) string {
	clean := strings.TrimSpace(edgeNoisePattern.ReplaceAllString(line, ""))
	clean = misreadNinePattern.ReplaceAllString(clean, "9$1")
	return strings.ReplaceAll(clean, "$", "")
}

func isWeightLine(line string) bool {
	return weightLeadPattern.MatchString(line) || weightTokenPattern.MatchString(line)
}
