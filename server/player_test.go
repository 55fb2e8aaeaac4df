package server

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestEquipUnequipRoundTrip(t *testing.T) {
	p := testPlayer(0, 0)
	p.Inventory = []string{"wooden_sword"}

	if err := p.Equip("wooden_sword", DefaultItems); err != nil {
		t.Fatalf("equip: %v", err)
	}
	testutil.AssertEqual(t, "equipped", p.EquippedItemID, "wooden_sword")
	testutil.AssertEqual(t, "atk", p.Atk, p.BaseAtk+1)

	p.Unequip()
	testutil.AssertEqual(t, "equipped", p.EquippedItemID, "")
	testutil.AssertEqual(t, "atk", p.Atk, p.BaseAtk)
}

func TestEquip_Rejections(t *testing.T) {
	tests := map[string]struct {
		inventory []string
		item      string
		expErr    error
	}{
		"not owned": {inventory: []string{}, item: "wooden_sword", expErr: ErrItemNotOwned},
		"unknown":   {inventory: []string{"mystery_orb"}, item: "mystery_orb", expErr: ErrUnknownItem},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := testPlayer(0, 0)
			p.Inventory = tt.inventory

			err := p.Equip(tt.item, DefaultItems)

			if !errors.Is(err, tt.expErr) {
				t.Fatalf("expected %v, got %v", tt.expErr, err)
			}
			testutil.AssertEqual(t, "equipped", p.EquippedItemID, "")
			testutil.AssertEqual(t, "atk", p.Atk, baseAttack)
		})
	}
}

func TestNewPlayerSession(t *testing.T) {
	tests := map[string]struct {
		profile     Profile
		expEquipped string
		expAtk      int
	}{
		"equipped item in inventory": {
			profile:     Profile{Name: "Alice", Inventory: []string{"wooden_sword"}, EquippedItemID: "wooden_sword"},
			expEquipped: "wooden_sword",
			expAtk:      baseAttack + 1,
		},
		"stale equipped item": {
			profile:     Profile{Name: "Alice", Inventory: []string{}, EquippedItemID: "wooden_sword"},
			expEquipped: "",
			expAtk:      baseAttack,
		},
		"nothing equipped": {
			profile:     Profile{Name: "Alice", Inventory: []string{"wooden_sword"}},
			expEquipped: "",
			expAtk:      baseAttack,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			spawn := Vec2{X: 960, Y: 540}
			p := newPlayerSession("s1", tt.profile, spawn, DefaultItems)

			testutil.AssertEqual(t, "equipped", p.EquippedItemID, tt.expEquipped)
			testutil.AssertEqual(t, "atk", p.Atk, tt.expAtk)
			testutil.AssertEqual(t, "pos", p.Pos, spawn)
			testutil.AssertEqual(t, "dir", p.Dir, DirDown)
			testutil.AssertEqual(t, "hp", p.HP, p.MaxHP)
			testutil.AssertEqual(t, "class", p.ClassID, "swordsman")
		})
	}
}

func TestNewPlayerSession_CopiesInventory(t *testing.T) {
	profile := Profile{Name: "Alice", Inventory: []string{"wooden_sword"}}
	p := newPlayerSession("s1", profile, Vec2{}, DefaultItems)

	p.Inventory[0] = "changed"

	testutil.AssertEqual(t, "profile inventory", profile.Inventory[0], "wooden_sword")
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]struct {
		raw string
		exp string
	}{
		"plain":           {raw: "Alice", exp: "Alice"},
		"strips symbols":  {raw: "al!ce_<script>", exp: "alcescript"},
		"truncates":       {raw: "abcdefghijklmnopqrstuvwxyz", exp: "abcdefghijklmnop"},
		"too short":       {raw: "a!", exp: "Hero"},
		"empty":           {raw: "", exp: "Hero"},
		"non ascii only":  {raw: "ñññ", exp: "Hero"},
		"digits are kept": {raw: "42abc", exp: "42abc"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "name", SanitizeName(tt.raw), tt.exp)
		})
	}
}

func TestResolveClassID(t *testing.T) {
	tests := map[string]struct {
		raw string
		exp string
	}{
		"swordsman": {raw: "swordsman", exp: "swordsman"},
		"mage":      {raw: "mage", exp: "mage"},
		"mixed":     {raw: " Mage ", exp: "mage"},
		"unknown":   {raw: "rogue", exp: "swordsman"},
		"empty":     {raw: "", exp: "swordsman"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "class", ResolveClassID(tt.raw), tt.exp)
		})
	}
}

func TestNewPlayerSession_Class(t *testing.T) {
	mage := newPlayerSession("s1", Profile{Name: "Alice", ClassID: "mage"}, Vec2{}, DefaultItems)
	stale := newPlayerSession("s2", Profile{Name: "Bob", ClassID: "bard"}, Vec2{}, DefaultItems)

	testutil.AssertEqual(t, "mage", mage.State().ClassID, "mage")
	testutil.AssertEqual(t, "stale", stale.State().ClassID, "swordsman")
	testutil.AssertEqual(t, "persisted", mage.Profile().ClassID, "mage")
}
