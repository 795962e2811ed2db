package parsing

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Two-decimal amounts such as 12.50
var (
	amountPattern      = regexp.MustCompile(`\d+\.\d{2}`)
	exactAmountPattern = regexp.MustCompile(`^\d+\.\d{2}$`)
)

// amountField describes a keyword-anchored total on the receipt
type amountField struct {
	keyword *regexp.Regexp
	// exclude rejects lines that match keyword but belong to another field
	exclude *regexp.Regexp
}

var (
	subtotalPattern = regexp.MustCompile(`(?i)sub\s*-?\s*total`)

	subtotalField = amountField{
		keyword: subtotalPattern,
	}
	taxField = amountField{
		keyword: regexp.MustCompile(`(?i)tax`),
	}
	totalField = amountField{
		keyword: regexp.MustCompile(`(?i)grand\s*total|total|balance`),
		exclude: subtotalPattern,
	}

	// summaryPattern matches lines that name one of the totals above as a
	// whole word, so "Taxi" or "Totally" stay items
	summaryPattern = regexp.MustCompile(`(?i)\b(sub\s*-?\s*total|grand\s*total|total|tax|balance)\b`)
)

func (f amountField) matches(line string) bool {
	if !f.keyword.MatchString(line) {
		return false
	}
	return f.exclude == nil || !f.exclude.MatchString(line)
}

// findAmount returns the first amount on the first line that names the field
// and carries a two-decimal amount. Fields are searched independently, so one
// line can satisfy more than one field.
func findAmount(lines []string, field amountField) *string {
	for _, line := range lines {
		if !field.matches(line) {
			continue
		}
		if amount := amountPattern.FindString(line); amount != "" {
			return &amount
		}
	}
	return nil
}

// Cents converts a two-decimal amount such as "11.00" to integer cents.
// It reports false for anything that is not a valid amount.
func Cents(amount string) (int64, bool) {
	if !exactAmountPattern.MatchString(amount) {
		return 0, false
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, false
	}
	return d.Shift(2).IntPart(), true
}
