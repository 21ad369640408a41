package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fumisakura/pricewatch/internal/model"
)

// ProductEntry is one product in the watch list file.
type ProductEntry struct {
	// URL is the absolute product page URL.
	URL string `yaml:"url"`

	// TargetPrice is the alert threshold as a decimal string
	// (e.g., "29.99"). Kept as a string in YAML so prices never pass
	// through binary floating point.
	TargetPrice string `yaml:"targetPrice"`

	// AutoCheckout enables the add-to-cart automation when an alert
	// fires for this product.
	AutoCheckout bool `yaml:"autoCheckout,omitempty"`
}

// SiteConfig holds site-specific settings for a single retail host.
// This allows customizing request behavior per retailer.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send with requests to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .pricewatch watch list file.
type File struct {
	// Products is the list of products to monitor.
	Products []ProductEntry `yaml:"products"`

	// Sites maps retail hostnames to their site-specific settings.
	// Keys are bare hostnames (e.g., "www.amazon.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to all sites unless
	// overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for a retail hostname.
// It merges the site-specific settings with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.Headers) > 0 {
			// The merged map must be fresh: result.Headers still aliases
			// Defaults.Headers here, and writing through it would leak one
			// site's headers into every other host's requests.
			headers := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				headers[k] = v
			}
			for k, v := range siteConfig.Headers {
				headers[k] = v
			}
			result.Headers = headers
		}
	}

	return result
}

// TrackedProducts converts the watch list entries into validated
// domain products. The conversion fails on the first bad entry so the
// user sees exactly which line to fix.
func (cf *File) TrackedProducts() ([]model.TrackedProduct, error) {
	if len(cf.Products) == 0 {
		return nil, ErrNoProducts
	}

	products := make([]model.TrackedProduct, 0, len(cf.Products))
	for i, entry := range cf.Products {
		target, err := decimal.NewFromString(entry.TargetPrice)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): bad target price %q: %w", i+1, entry.URL, entry.TargetPrice, err)
		}
		p := model.TrackedProduct{
			URL:          entry.URL,
			TargetPrice:  target,
			AutoCheckout: entry.AutoCheckout,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %d: %w", i+1, err)
		}
		products = append(products, p)
	}
	return products, nil
}
