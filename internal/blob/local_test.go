package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocalStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	if _, err := s.Get(ctx, "transactions"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Get missing = %v, want ErrNotExist", err)
	}

	if err := s.Put(ctx, "transactions", []byte("[]")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := s.Get(ctx, "transactions")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Get = %q, want []", got)
	}

	// Keys are stored as .json files.
	if _, err := os.Stat(filepath.Join(dir, "data", "transactions.json")); err != nil {
		t.Errorf("expected transactions.json on disk: %v", err)
	}

	if err := s.Delete(ctx, "transactions"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "transactions"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Get after Delete = %v, want ErrNotExist", err)
	}
	if err := s.Delete(ctx, "transactions"); err != nil {
		t.Errorf("Delete absent key = %v, want nil", err)
	}
}
