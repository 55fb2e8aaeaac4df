package server

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestMemoryProfileStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()

	first, err := s.GetOrCreateProfile(ctx, "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	again, err := s.GetOrCreateProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	testutil.AssertEqual(t, "same id", again.ID, first.ID)
	testutil.AssertEqual(t, "name", first.Name, "Alice")
	testutil.AssertEqual(t, "class", first.ClassID, defaultClassID)
	testutil.AssertEqual(t, "inventory", len(first.Inventory), 0)
	if first.Inventory == nil {
		t.Fatalf("expected empty, non-nil inventory")
	}
}

func TestMemoryProfileStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()
	p, _ := s.GetOrCreateProfile(ctx, "Alice")
	p.Inventory = append(p.Inventory, "wooden_sword")
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	p.Inventory[0] = "changed"
	got, _ := s.GetOrCreateProfile(ctx, "Alice")
	got.Inventory[0] = "changed again"
	again, _ := s.GetOrCreateProfile(ctx, "Alice")

	testutil.AssertEqual(t, "stored item", again.Inventory[0], "wooden_sword")
}

func TestMemoryProfileStore_Closed(t *testing.T) {
	s := NewMemoryProfileStore()
	_ = s.Close()

	_, err := s.GetOrCreateProfile(context.Background(), "Alice")
	if !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
	if err := s.SaveProfile(context.Background(), Profile{Name: "Alice"}); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed on save, got %v", err)
	}
}

func TestMemoryProfileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryProfileStore().GetOrCreateProfile(ctx, "Alice")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBoltProfileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")

	s, err := OpenBoltProfileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	p, err := s.GetOrCreateProfile(ctx, "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.XP = 40
	p.Gold = 20
	p.Inventory = []string{"wooden_sword"}
	p.EquippedItemID = "wooden_sword"
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenBoltProfileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.GetOrCreateProfile(ctx, "ALICE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	testutil.AssertEqual(t, "id", got.ID, p.ID)
	testutil.AssertEqual(t, "xp", got.XP, 40)
	testutil.AssertEqual(t, "gold", got.Gold, 20)
	testutil.AssertEqual(t, "equipped", got.EquippedItemID, "wooden_sword")
	testutil.AssertEqual(t, "inventory", len(got.Inventory), 1)
	testutil.AssertEqual(t, "item", got.Inventory[0], "wooden_sword")
}

func TestBoltProfileStore_NewProfileHasEmptyInventory(t *testing.T) {
	s, err := OpenBoltProfileStore(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	p, err := s.GetOrCreateProfile(context.Background(), "Bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if p.Inventory == nil {
		t.Fatalf("expected non-nil inventory")
	}
	testutil.AssertEqual(t, "class", p.ClassID, defaultClassID)
}

func TestStorageConfig_Open(t *testing.T) {
	tests := map[string]struct {
		cfg    StorageConfig
		expErr string
	}{
		"memory": {cfg: StorageConfig{Driver: "memory"}},
		"bolt":   {cfg: StorageConfig{Driver: "bolt", Path: filepath.Join(t.TempDir(), "p.db")}},
		"bad":    {cfg: StorageConfig{Driver: "redis"}, expErr: "unknown storage driver"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store, err := tt.cfg.Open()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			_ = store.Close()
		})
	}
}
