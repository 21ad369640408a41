// Package extract turns a parsed product page into a price and an
// availability verdict.
//
// # Architecture
//
// Extraction is built on ordered locator lists: each locator names a
// structural region of the page (a CSS selector) believed to contain the
// target information, listed most reliable first. Evaluation is
// first-match-wins, which keeps ordering auditable and testable in
// isolation: the lists are data, not nested conditionals.
//
// Two-tier design: structural locators first, then a free-text heuristic.
// The page markup is third-party and unversioned, so any structural match
// is higher-confidence evidence than pattern matching over the full text,
// which can pick up unrelated numbers such as shipping costs. The
// heuristic is strictly a last resort.
//
// # Components
//
//   - NormalizePrice: canonicalizes raw price text into a decimal value
//   - PriceExtractor: ordered locators plus the currency-pattern fallback
//   - StockClassifier: ordered locators plus the add-to-cart fallback
//
// Both extractors are pure functions of the PageDocument they receive.
package extract
