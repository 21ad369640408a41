package history

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fumisakura/pricewatch/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testOutcome(t *testing.T, url, price string, alert bool) model.CheckOutcome {
	t.Helper()
	target, err := decimal.NewFromString("29.99")
	if err != nil {
		t.Fatal(err)
	}
	outcome := model.CheckOutcome{
		Product:   model.TrackedProduct{URL: url, TargetPrice: target},
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Stock:     model.StockInStock,
		Attempts:  1,
	}
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			t.Fatal(err)
		}
		outcome.Price = &p
	}
	outcome.AlertFired = alert
	return outcome
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("save and read back", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		saved := testOutcome(t, "https://shop.example.com/a", "24.5", true)
		if err := store.SaveOutcome(ctx, saved); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		outcomes, err := store.Outcomes(ctx, Filter{})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(outcomes) != 1 {
			t.Fatalf("expected 1 outcome, got %d", len(outcomes))
		}
		got := outcomes[0]
		if got.Product.URL != saved.Product.URL {
			t.Errorf("url mismatch: %q", got.Product.URL)
		}
		if got.Price == nil || !got.Price.Equal(*saved.Price) {
			t.Errorf("expected price 24.5, got %v", got.Price)
		}
		if !got.Product.TargetPrice.Equal(saved.Product.TargetPrice) {
			t.Errorf("target price mismatch: %s", got.Product.TargetPrice)
		}
		if !got.AlertFired {
			t.Error("expected alert flag preserved")
		}
		if got.Stock != model.StockInStock {
			t.Errorf("stock mismatch: %s", got.Stock)
		}
	})

	t.Run("failed outcome stores nil price", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		outcome := testOutcome(t, "https://shop.example.com/b", "", false)
		outcome.Stock = model.StockUnknown
		outcome.ErrorKind = model.ErrorKindNetwork
		outcome.ErrorMessage = "connection refused"
		outcome.Attempts = 3
		if err := store.SaveOutcome(ctx, outcome); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		outcomes, err := store.Outcomes(ctx, Filter{})
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		got := outcomes[0]
		if got.Price != nil {
			t.Errorf("expected nil price, got %v", got.Price)
		}
		if got.ErrorKind != model.ErrorKindNetwork {
			t.Errorf("error kind mismatch: %q", got.ErrorKind)
		}
		if got.Attempts != 3 {
			t.Errorf("attempts mismatch: %d", got.Attempts)
		}
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if err := store.SaveOutcome(ctx, testOutcome(t, "https://shop.example.com/a", "20", false)); err != nil {
				t.Fatal(err)
			}
		}
		if err := store.SaveOutcome(ctx, testOutcome(t, "https://shop.example.com/b", "15", true)); err != nil {
			t.Fatal(err)
		}

		byURL, err := store.Outcomes(ctx, Filter{URL: "https://shop.example.com/a"})
		if err != nil {
			t.Fatal(err)
		}
		if len(byURL) != 3 {
			t.Errorf("expected 3 outcomes for /a, got %d", len(byURL))
		}

		alerts, err := store.Outcomes(ctx, Filter{AlertsOnly: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(alerts) != 1 || alerts[0].Product.URL != "https://shop.example.com/b" {
			t.Errorf("unexpected alert results: %+v", alerts)
		}

		limited, err := store.Outcomes(ctx, Filter{Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if len(limited) != 2 {
			t.Errorf("expected limit of 2, got %d", len(limited))
		}
	})

	t.Run("latest by product", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		older := testOutcome(t, "https://shop.example.com/a", "30", false)
		older.FetchedAt = time.Now().UTC().Add(-time.Hour)
		newer := testOutcome(t, "https://shop.example.com/a", "25", true)
		for _, o := range []model.CheckOutcome{older, newer} {
			if err := store.SaveOutcome(ctx, o); err != nil {
				t.Fatal(err)
			}
		}

		latest, err := store.LatestByProduct(ctx, "https://shop.example.com/a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if latest.Price == nil || latest.Price.String() != "25" {
			t.Errorf("expected the newer outcome, got %v", latest.Price)
		}

		_, err = store.LatestByProduct(ctx, "https://shop.example.com/missing")
		if !IsNotFound(err) {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("alert count and tracked URLs", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		if err := store.SaveOutcome(ctx, testOutcome(t, "https://shop.example.com/a", "20", true)); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveOutcome(ctx, testOutcome(t, "https://shop.example.com/a", "35", false)); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveOutcome(ctx, testOutcome(t, "https://shop.example.com/b", "10", true)); err != nil {
			t.Fatal(err)
		}

		count, err := store.AlertCount(ctx, "https://shop.example.com/a")
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected 1 alert, got %d", count)
		}

		urls, err := store.TrackedURLs(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(urls) != 2 {
			t.Errorf("expected 2 distinct URLs, got %v", urls)
		}
	})

	t.Run("open without create fails on missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected an error for missing database")
		}
	})
}

func TestSink(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	sink := NewSink(store, 16, slog.Default())

	for i := 0; i < 5; i++ {
		sink.Record(testOutcome(t, "https://shop.example.com/a", "19.99", false))
	}
	sink.Close()

	outcomes, err := store.Outcomes(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(outcomes) != 5 {
		t.Errorf("expected 5 persisted outcomes, got %d", len(outcomes))
	}
}
