package checkout

import (
	"testing"
	"time"

	"github.com/fumisakura/pricewatch/internal/extract"
)

// Launching a real browser is out of scope for unit tests; these cover
// the configuration surface.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		a := New()
		if a.selector != extract.DefaultAddToCartSelector {
			t.Errorf("expected default cart selector, got %q", a.selector)
		}
		if a.navigateTimeout != DefaultNavigateTimeout {
			t.Errorf("expected default navigate timeout, got %v", a.navigateTimeout)
		}
		if !a.headless {
			t.Error("expected headless by default")
		}
	})

	t.Run("options override", func(t *testing.T) {
		t.Parallel()

		a := New(
			WithCartSelector("#buy-now"),
			WithNavigateTimeout(10*time.Second),
			WithHeadful(),
		)
		if a.selector != "#buy-now" {
			t.Errorf("expected custom selector, got %q", a.selector)
		}
		if a.navigateTimeout != 10*time.Second {
			t.Errorf("expected custom timeout, got %v", a.navigateTimeout)
		}
		if a.headless {
			t.Error("expected headful after WithHeadful")
		}
	})

	t.Run("empty selector is ignored", func(t *testing.T) {
		t.Parallel()

		a := New(WithCartSelector(""))
		if a.selector != extract.DefaultAddToCartSelector {
			t.Errorf("expected default selector kept, got %q", a.selector)
		}
	})
}
