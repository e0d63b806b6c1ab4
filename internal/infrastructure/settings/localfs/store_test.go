package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

func TestStoreLoadReturnsDefaults(t *testing.T) {
	store, err := New(t.TempDir(), domain.DefaultSettings())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := store.Load(context.Background(), "demo.myshopify.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != domain.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestStoreSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir, domain.DefaultSettings())

	want := domain.Settings{NumberOfSuggestions: 12, MinimumMatchScore: 70, MaxProductsToScan: 300, EnableImageAnalysis: true, EnableAI: true}
	if err := store.Save(context.Background(), "Demo.myshopify.com", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.myshopify.com.yaml")); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
	got, err := store.Load(context.Background(), "demo.myshopify.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStorePartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shop.yaml"), []byte("minimum_match_score: 80\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, _ := New(dir, domain.DefaultSettings())
	got, err := store.Load(context.Background(), "shop")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.MinimumMatchScore != 80 || got.NumberOfSuggestions != 10 || !got.OnlyInStockProducts {
		t.Fatalf("unexpected merged settings: %+v", got)
	}
}

func TestStoreRejectsBlankShopAndBadYAML(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir, domain.DefaultSettings())
	if _, err := store.Load(context.Background(), " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("number_of_suggestions: [\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := store.Load(context.Background(), "broken"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSanitizeShop(t *testing.T) {
	if got := sanitizeShop("../../etc/passwd"); got != "_.._etc_passwd" {
		t.Fatalf("unexpected sanitized key %q", got)
	}
}
