package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	unlock, err := Lock(context.Background(), path)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if _, err := Lock(ctx, path); err == nil {
		t.Fatal("second Lock() should fail while the first is held")
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock() error = %v", err)
	}

	again, err := Lock(context.Background(), path)
	if err != nil {
		t.Fatalf("Lock() after unlock error = %v", err)
	}
	again()
}
