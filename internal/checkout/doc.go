// Package checkout drives a real browser to put an alerting product in
// the shopping cart. Retail sites render the add-to-cart flow with
// JavaScript and fingerprint plain HTTP clients, so the fetch package's
// clients cannot complete it.
//
// Automation stops at the cart: pricewatch never authenticates to the
// retailer or places an order. Completing a purchase needs payment
// confirmation that must stay a human decision.
package checkout
