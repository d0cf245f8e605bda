package testsupport

import (
	"context"
	"testing"

	"clipcart/internal/config"
	"clipcart/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// CollectProduct inserts a product for tests using the provided store.
func CollectProduct(t testing.TB, st *store.Store, title, originURL string) *store.Product {
	t.Helper()

	product, _, err := st.CollectProduct(context.Background(), store.Product{
		Title:     title,
		OriginURL: originURL,
	})
	if err != nil {
		t.Fatalf("store.CollectProduct: %v", err)
	}
	return product
}

// NewChannel inserts an active channel for tests.
func NewChannel(t testing.TB, st *store.Store, name string, dailyLimit int) *store.Channel {
	t.Helper()

	channel, err := st.CreateChannel(context.Background(), store.Channel{
		Name:             name,
		Platform:         "youtube",
		DailyUploadLimit: dailyLimit,
		Active:           true,
	})
	if err != nil {
		t.Fatalf("store.CreateChannel: %v", err)
	}
	return channel
}
