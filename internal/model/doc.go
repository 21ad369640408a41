// Package model defines the core data structures used throughout pricewatch.
//
// This package contains the following main types:
//   - TrackedProduct: A product URL paired with the price that should trigger an alert
//   - PageDocument: The parsed representation of one fetched product page
//   - CheckOutcome: The immutable result of one (product, cycle) check
//   - StockStatus: The availability verdict for a product page
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, monitor, history, report) need to
// use these types, so centralizing them prevents import cycles.
//
// CheckOutcome is designed to be serializable to JSON for report output and
// database storage.
package model
