// Package main provides the entry point for the pricewatch CLI.
//
// Pricewatch monitors retail product pages for price drops and restocks
// and fires alerts when a product is in stock at or below its target
// price.
//
// Usage:
//
//	pricewatch watch
//	pricewatch check <product-url> --target 29.99
//
// See --help for all available options.
package main

// main is the entry point for pricewatch.
func main() {
	Execute()
}
