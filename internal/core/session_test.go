package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := &ImportSession{
		ID:        "imp-1",
		Kind:      KindVariants,
		Result:    *newResult(KindVariants),
		Selected:  []string{"a"},
		ExpiresAt: now.Add(time.Minute),
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sess.Selected[0] = "mutated"
	got, err := store.Get(ctx, "imp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Selected[0] != "a" {
		t.Errorf("stored session shares memory with caller: %v", got.Selected)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) = %v, want ErrSessionNotFound", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "imp-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(expired) = %v, want ErrSessionNotFound", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d before sweep, want 1", store.Len())
	}
	if removed := store.Sweep(now); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", store.Len())
	}

	if err := store.Save(ctx, &ImportSession{}); err == nil {
		t.Error("Save(no id) succeeded")
	}
	if err := store.Delete(ctx, "never"); err != nil {
		t.Errorf("Delete(unknown) = %v", err)
	}
}

func TestMemorySessionStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	sess := &ImportSession{ID: "imp-1", Kind: KindProducts, Result: *newResult(KindProducts)}
	for i := range 20 {
		sess.Result.Conflicts = append(sess.Result.Conflicts, ImportConflict{ID: fmt.Sprintf("c%d", i)})
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var wg sync.WaitGroup
	for _, c := range sess.Result.Conflicts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.Update(ctx, "imp-1", func(s *ImportSession) error {
				selected, _, err := Selection(s.Selected).Toggle(&s.Result, id)
				s.Selected = selected
				return err
			})
			if err != nil {
				t.Errorf("Update(%s): %v", id, err)
			}
		}(c.ID)
	}
	wg.Wait()

	got, err := store.Get(ctx, "imp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Selected) != 20 {
		t.Errorf("selected %d conflicts, want all 20", len(got.Selected))
	}

	boom := errors.New("boom")
	_, err = store.Update(ctx, "imp-1", func(s *ImportSession) error {
		s.Selected = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Update error = %v, want %v", err, boom)
	}
	if got, _ := store.Get(ctx, "imp-1"); len(got.Selected) != 20 {
		t.Errorf("failed update changed the session: %v", got.Selected)
	}

	if _, err := store.Update(ctx, "missing", func(*ImportSession) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Update(missing) = %v, want ErrSessionNotFound", err)
	}
}
