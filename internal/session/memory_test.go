package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/keja/keja/internal/model"
)

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	sess := &model.Session{ID: "s1", UserID: 7, Handle: "bob", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, "k", sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	sess.Handle = "mutated"
	loaded, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Handle != "bob" {
		t.Errorf("stored session aliased caller value: got %q", loaded.Handle)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "k"); err != ErrSessionNotFound {
		t.Errorf("load after delete = %v, want ErrSessionNotFound", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("second delete = %v, want nil", err)
	}
}

func TestMemoryStore_ExpiredEntriesDropped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Save(ctx, "old", &model.Session{ExpiresAt: time.Now().Add(-time.Second)})
	if _, err := store.Load(ctx, "old"); err != ErrSessionNotFound {
		t.Errorf("expired load = %v, want ErrSessionNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			_ = store.Save(ctx, key, &model.Session{UserID: int64(i)})
			_, _ = store.Load(ctx, key)
		}(i)
	}
	wg.Wait()

	if store.Len() != 32 {
		t.Errorf("Len = %d, want 32", store.Len())
	}
}
