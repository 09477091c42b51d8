package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/apisada-prim/pawbook/internal/domain"
)

func TestCreateAndFindQrSession(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "tok-1", now, 15*time.Minute)
	if err != nil {
		t.Fatalf("CreateQrSession: %v", err)
	}
	if !s.ExpiresAt.Equal(now.Add(15*time.Minute)) || s.Consumed {
		t.Fatalf("unexpected session: %+v", s)
	}

	got, err := FindQrSessionByToken(ctx, db, "tok-1")
	if err != nil || got.ID != s.ID {
		t.Fatalf("FindQrSessionByToken: got=%+v err=%v", got, err)
	}
	if _, err := FindQrSessionByToken(ctx, db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}

	active, err := FindActiveQrSession(ctx, db, pet.ID, owner.ID, now.Add(time.Minute))
	if err != nil || active.ID != s.ID {
		t.Fatalf("FindActiveQrSession: got=%+v err=%v", active, err)
	}
	// At the expiry instant the session no longer counts as active.
	if _, err := FindActiveQrSession(ctx, db, pet.ID, owner.ID, now.Add(15*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound at expiry, got %v", err)
	}
	// Another owner never sees it.
	if _, err := FindActiveQrSession(ctx, db, pet.ID, "someone-else", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestCreateQrSession_DuplicateToken(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Now()

	if _, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "same", now, time.Minute); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "same", now, time.Minute); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestFindActiveQrSession_PrefersNewest(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "old", now, 15*time.Minute); err != nil {
		t.Fatal(err)
	}
	newer, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "new", now.Add(time.Minute), 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	got, err := FindActiveQrSession(ctx, db, pet.ID, owner.ID, now.Add(2*time.Minute))
	if err != nil || got.ID != newer.ID {
		t.Fatalf("expected newest session, got=%+v err=%v", got, err)
	}
}

func TestMarkQrSessionConsumed_Once(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "tok", now, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	at := now.Add(5 * time.Minute)
	if err := MarkQrSessionConsumed(ctx, db, s.ID, at); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := MarkQrSessionConsumed(ctx, db, s.ID, at); !errors.Is(err, ErrConflict) {
		t.Fatalf("second consume: expected ErrConflict, got %v", err)
	}

	got, _ := FindQrSessionByToken(ctx, db, "tok")
	if !got.Consumed || got.ConsumedAt == nil || !got.ConsumedAt.Equal(at) {
		t.Fatalf("unexpected consumed state: %+v", got)
	}
	if domain.ClassifyQrSession(got, at.Add(time.Hour)) != domain.QrUsed {
		t.Fatalf("consumed session must classify as USED")
	}
}

func TestMarkQrSessionConsumed_ExpiredIsConflict(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "tok", now, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := MarkQrSessionConsumed(ctx, db, s.ID, now.Add(16*time.Minute)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict past expiry, got %v", err)
	}
	got, _ := FindQrSessionByToken(ctx, db, "tok")
	if got.Consumed {
		t.Fatalf("expired session must stay unconsumed")
	}
}

func TestMarkQrSessionConsumed_ConcurrentSingleWinner(t *testing.T) {
	db := newFileDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	now := time.Now().UTC()

	s, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "tok", now, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := MarkQrSessionConsumed(ctx, db, s.ID, now.Add(time.Second)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one successful consume, got %d", wins)
	}
}
