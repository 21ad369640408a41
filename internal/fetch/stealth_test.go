package fetch

import (
	"testing"
	"time"
)

func TestTimeoutSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input time.Duration
		want  int
	}{
		{name: "whole seconds pass through", input: 10 * time.Second, want: 10},
		{name: "sub-second rounds up to one", input: 500 * time.Millisecond, want: 1},
		{name: "fractional rounds up", input: 1500 * time.Millisecond, want: 2},
		{name: "zero becomes one", input: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := timeoutSeconds(tt.input); got != tt.want {
				t.Errorf("timeoutSeconds(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewStealthClient(t *testing.T) {
	t.Parallel()

	t.Run("constructs with defaults", func(t *testing.T) {
		t.Parallel()

		c, err := NewStealthClient()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.userAgent != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", c.userAgent)
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		c, err := NewStealthClient(
			WithStealthUserAgent("custom/1.0"),
			WithStealthRequestDelay(time.Second),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.userAgent != "custom/1.0" {
			t.Errorf("expected custom user agent, got %q", c.userAgent)
		}
		if c.limiter == nil {
			t.Error("expected rate limiter when a request delay is set")
		}
	})
}
