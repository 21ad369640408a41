package extract

import (
	"testing"

	"github.com/fumisakura/pricewatch/internal/model"
)

func TestStockClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want model.StockStatus
	}{
		{
			name: "explicit in stock, mixed case",
			body: `<div id="availability"><span>In Stock.</span></div>`,
			want: model.StockInStock,
		},
		{
			name: "explicit out of stock",
			body: `<div id="availability"><span>Out of Stock</span></div>`,
			want: model.StockOutOfStock,
		},
		{
			name: "currently unavailable",
			body: `<div id="availability"><span>Currently unavailable.</span></div>`,
			want: model.StockOutOfStock,
		},
		{
			name: "add to cart fallback implies in stock",
			body: `<input id="add-to-cart-button" type="submit" value="Add to Cart">`,
			want: model.StockInStock,
		},
		{
			name: "no signal at all is unknown, not out of stock",
			body: `<p>Product details and reviews</p>`,
			want: model.StockUnknown,
		},
		{
			name: "unrecognized availability text without cart control is unknown",
			body: `<div id="availability"><span>Usually ships within 6 months</span></div>`,
			want: model.StockUnknown,
		},
		{
			name: "unrecognized text continues to lower-priority locator",
			body: `<div id="availability"><span>Usually ships within 6 months</span></div>
			       <div id="buybox-availability">in stock at your store</div>`,
			want: model.StockInStock,
		},
		{
			name: "dedicated out-of-stock block",
			body: `<div id="outOfStock"><span>This item is currently not available</span></div>`,
			want: model.StockOutOfStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := parseTestPage(t, `<html><body>`+tt.body+`</body></html>`)
			if got := NewStockClassifier().Classify(page); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStockClassifierCustomCartSelector(t *testing.T) {
	t.Parallel()

	page := parseTestPage(t, `<html><body><button class="buy-now">Buy</button></body></html>`)

	classifier := NewStockClassifier(WithAddToCartSelector(".buy-now"))
	if got := classifier.Classify(page); got != model.StockInStock {
		t.Errorf("expected in stock via custom cart selector, got %v", got)
	}
}
