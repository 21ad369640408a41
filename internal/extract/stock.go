package extract

import (
	"log/slog"
	"strings"

	"github.com/fumisakura/pricewatch/internal/model"
)

// StockClassifier obtains an in-stock/out-of-stock verdict from a
// product page.
//
// Unlike the price extractor, a structural match with unrecognized text
// does not end the search: availability text is freer-form, so the
// classifier keeps consulting lower-priority locators until one yields a
// recognized phrase. The asymmetry is intentional.
type StockClassifier struct {
	// locators is the ordered locator list for availability text.
	locators []Locator

	// outOfStockPhrases are the substrings treated as an explicit
	// negative.
	outOfStockPhrases []string

	// addToCartSelector locates the fallback purchasable signal.
	addToCartSelector string

	logger *slog.Logger
}

// StockClassifierOption configures a StockClassifier.
type StockClassifierOption func(*StockClassifier)

// WithStockLocators replaces the default ordered locator list.
func WithStockLocators(locators []Locator) StockClassifierOption {
	return func(c *StockClassifier) {
		c.locators = locators
	}
}

// WithOutOfStockPhrases replaces the out-of-stock phrase set.
func WithOutOfStockPhrases(phrases []string) StockClassifierOption {
	return func(c *StockClassifier) {
		if len(phrases) > 0 {
			c.outOfStockPhrases = phrases
		}
	}
}

// WithAddToCartSelector replaces the add-to-cart fallback selector.
func WithAddToCartSelector(selector string) StockClassifierOption {
	return func(c *StockClassifier) {
		if selector != "" {
			c.addToCartSelector = selector
		}
	}
}

// WithStockLogger sets a custom logger for the classifier.
func WithStockLogger(logger *slog.Logger) StockClassifierOption {
	return func(c *StockClassifier) {
		c.logger = logger
	}
}

// NewStockClassifier creates a StockClassifier with the default locator
// list, phrase set, and add-to-cart selector.
func NewStockClassifier(opts ...StockClassifierOption) *StockClassifier {
	c := &StockClassifier{
		locators:          DefaultStockLocators,
		outOfStockPhrases: defaultOutOfStockPhrases,
		addToCartSelector: DefaultAddToCartSelector,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Classify returns the availability verdict for the page. It never
// fails: when no locator yields a recognized phrase and the add-to-cart
// control is absent, the verdict is StockUnknown. That is weaker
// evidence than an explicit out-of-stock phrase and is never conflated
// with it.
func (c *StockClassifier) Classify(page *model.PageDocument) model.StockStatus {
	for _, loc := range c.locators {
		sel := page.Find(loc.Selector)
		if sel.Length() == 0 {
			continue
		}

		text := strings.ToLower(strings.TrimSpace(sel.First().Text()))
		if strings.Contains(text, inStockPhrase) {
			c.logger.Debug("stock status located", "locator", loc.Name, "url", page.URL, "status", "in stock")
			return model.StockInStock
		}
		for _, phrase := range c.outOfStockPhrases {
			if strings.Contains(text, phrase) {
				c.logger.Debug("stock status located", "locator", loc.Name, "url", page.URL, "status", "out of stock")
				return model.StockOutOfStock
			}
		}
		// Unrecognized text: keep consulting lower-priority locators.
	}

	if page.Find(c.addToCartSelector).Length() > 0 {
		c.logger.Debug("stock status from add-to-cart control", "url", page.URL)
		return model.StockInStock
	}
	return model.StockUnknown
}
