package extract

// Locator identifies a structural region of a parsed page believed to
// contain a given piece of information. Locators are evaluated in list
// order, most specific and reliable first.
type Locator struct {
	// Name labels the locator in logs and debugging output.
	Name string

	// Selector is the CSS selector for the region.
	Selector string
}

// DefaultPriceLocators is the ordered locator list for price extraction.
// The entries mirror the selector table the monitor has historically
// used against Amazon-style listing pages; reorder with care, since the
// first structural match claims the page.
var DefaultPriceLocators = []Locator{
	{Name: "offscreen price", Selector: ".a-price .a-offscreen"},
	{Name: "our price block", Selector: "#priceblock_ourprice"},
	{Name: "deal price block", Selector: "#priceblock_dealprice"},
	{Name: "whole price", Selector: ".a-price .a-price-whole"},
	{Name: "core price feature", Selector: "#corePrice_feature_div .a-price-whole"},
	{Name: "buybox price", Selector: "#price_inside_buybox"},
	{Name: "color price", Selector: ".a-size-medium.a-color-price"},
	{Name: "third-party price", Selector: ".price3P"},
	{Name: "subscribe base price", Selector: "#sns-base-price"},
}

// DefaultStockLocators is the ordered locator list for availability text.
var DefaultStockLocators = []Locator{
	{Name: "availability", Selector: "#availability"},
	{Name: "out of stock block", Selector: "#outOfStock"},
	{Name: "availability string", Selector: "#availability-string"},
	{Name: "buybox availability", Selector: "#buybox-availability"},
}

// DefaultAddToCartSelector locates the add-to-cart control used as the
// availability fallback signal.
const DefaultAddToCartSelector = "#add-to-cart-button"

// defaultOutOfStockPhrases are substrings that classify availability
// text as an explicit negative.
var defaultOutOfStockPhrases = []string{
	"out of stock",
	"currently unavailable",
	"not available",
}

// inStockPhrase classifies availability text as a positive.
const inStockPhrase = "in stock"
