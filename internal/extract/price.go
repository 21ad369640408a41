package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fumisakura/pricewatch/internal/model"
	"github.com/shopspring/decimal"
)

// PriceExtractor obtains a price from a product page.
//
// It evaluates a fixed, ordered list of structural locators; the first
// locator that matches any element claims the page, and later locators
// are never consulted. Only when no locator matches structurally (or
// the claimed text fails normalization) does the free-text heuristic
// run: the first currency-marked number in the visible text.
type PriceExtractor struct {
	// locators is the ordered structural locator list.
	locators []Locator

	// currencySymbols are the markers the heuristic accepts, as prefix
	// or suffix of a number.
	currencySymbols []rune

	// locatorFallthrough, when true, continues to the next locator if a
	// claimed text fails normalization instead of stopping the ordered
	// pass. Off by default: the historical behavior is that a structural
	// match claims the page, for better or worse, and changing which
	// values get extracted from ambiguous pages needs stakeholder
	// sign-off. See DESIGN.md.
	locatorFallthrough bool

	// heuristicRe is built from currencySymbols at construction.
	heuristicRe *regexp.Regexp

	logger *slog.Logger
}

// PriceExtractorOption configures a PriceExtractor.
type PriceExtractorOption func(*PriceExtractor)

// WithPriceLocators replaces the default ordered locator list.
func WithPriceLocators(locators []Locator) PriceExtractorOption {
	return func(e *PriceExtractor) {
		e.locators = locators
	}
}

// WithCurrencySymbols sets the currency markers the heuristic accepts.
func WithCurrencySymbols(symbols ...rune) PriceExtractorOption {
	return func(e *PriceExtractor) {
		if len(symbols) > 0 {
			e.currencySymbols = symbols
		}
	}
}

// WithLocatorFallthrough makes a normalization failure continue to the
// next locator in the ordered list rather than ending the structural
// pass. This changes which values are extracted from ambiguous pages;
// keep it off unless that trade-off has been agreed.
func WithLocatorFallthrough(enabled bool) PriceExtractorOption {
	return func(e *PriceExtractor) {
		e.locatorFallthrough = enabled
	}
}

// WithPriceLogger sets a custom logger for the extractor.
func WithPriceLogger(logger *slog.Logger) PriceExtractorOption {
	return func(e *PriceExtractor) {
		e.logger = logger
	}
}

// NewPriceExtractor creates a PriceExtractor with the default locator
// list and €, $, £ as heuristic currency markers.
func NewPriceExtractor(opts ...PriceExtractorOption) *PriceExtractor {
	e := &PriceExtractor{
		locators:        DefaultPriceLocators,
		currencySymbols: []rune{'€', '$', '£'},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.heuristicRe = buildHeuristicRegexp(e.currencySymbols)
	return e
}

// buildHeuristicRegexp compiles the currency-marked number pattern for
// the given symbols: a number with optional two decimals, adjacent to a
// symbol as prefix or suffix.
func buildHeuristicRegexp(symbols []rune) *regexp.Regexp {
	var sb strings.Builder
	for _, r := range symbols {
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	class := "[" + sb.String() + "]"

	pattern := fmt.Sprintf(`(?:%s\s*(\d+(?:[.,]\d{2})?)|(\d+(?:[.,]\d{2})?)\s*%s)`, class, class)
	return regexp.MustCompile(pattern)
}

// Extract returns the price found on the page.
//
// The result is deterministic: the same PageDocument always yields the
// same price or the same failure. Failures are ErrUnparsableText when a
// structural match claimed the page but its text would not normalize,
// and ErrNoLocatorMatched when neither the locators nor the heuristic
// produced a value.
func (e *PriceExtractor) Extract(page *model.PageDocument) (decimal.Decimal, error) {
	claimFailed := false

	for _, loc := range e.locators {
		sel := page.Find(loc.Selector)
		if sel.Length() == 0 {
			continue
		}

		text := strings.TrimSpace(sel.First().Text())
		price, err := NormalizePrice(text)
		if err == nil {
			e.logger.Debug("price located",
				"locator", loc.Name,
				"url", page.URL,
				"price", price.String(),
			)
			return price, nil
		}

		e.logger.Debug("located price text failed normalization",
			"locator", loc.Name,
			"url", page.URL,
			"text", text,
		)
		claimFailed = true
		if !e.locatorFallthrough {
			// The locator claimed the page; the ordered pass is over.
			break
		}
	}

	if price, ok := e.heuristicPrice(page); ok {
		e.logger.Debug("price found by heuristic fallback",
			"url", page.URL,
			"price", price.String(),
		)
		return price, nil
	}

	if claimFailed {
		return decimal.Decimal{}, fmt.Errorf("%w: locator matched but text did not normalize", ErrUnparsableText)
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrNoLocatorMatched, page.URL)
}

// heuristicPrice scans the page's visible text for the first number
// adjacent to a currency symbol.
func (e *PriceExtractor) heuristicPrice(page *model.PageDocument) (decimal.Decimal, bool) {
	match := e.heuristicRe.FindStringSubmatch(page.VisibleText())
	if match == nil {
		return decimal.Decimal{}, false
	}

	// One of the two capture groups holds the number, depending on
	// whether the symbol was prefix or suffix.
	for _, group := range match[1:] {
		if group == "" {
			continue
		}
		price, err := NormalizePrice(group)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return price, true
	}
	return decimal.Decimal{}, false
}
