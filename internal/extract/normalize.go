package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceTokenRegexp matches the first contiguous numeric token of the
// form digits[.digits], after separator conversion.
var priceTokenRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)

// NormalizePrice canonicalizes raw price text into a decimal value.
//
// It strips surrounding whitespace, treats "," as a decimal separator
// (the convention of the target locale) by converting it to ".", then
// parses the first numeric token. Currency symbols and other noise
// around the token are ignored.
//
// Locale caveat: this silently misinterprets thousands-separators, e.g.
// "1,234" becomes 1.234. Callers must not feed it values that use
// integer grouping without a separate grouping pass.
func NormalizePrice(text string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	token := priceTokenRegexp.FindString(s)
	if token == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparsableText, text)
	}

	price, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnparsableText, text)
	}
	return price, nil
}
