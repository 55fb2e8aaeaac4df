package server

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDropNotFound   = errors.New("drop no longer exists")
	ErrInventoryFull  = errors.New("inventory is full")
	ErrDropOutOfRange = errors.New("drop is out of reach")
)

// DropItem 地面上的一件物品实例
type DropItem struct {
	ID        string
	ItemID    string
	Pos       Vec2
	ExpiresAt time.Time
}

func (d *DropItem) State() DropState {
	return DropState{ID: d.ID, ItemID: d.ItemID, X: d.Pos.X, Y: d.Pos.Y}
}

// DropSpawner 怪物死亡时由战斗结算调用
type DropSpawner interface {
	SpawnDrops(at Vec2, now time.Time) []*DropItem
}

// DropField 房间内掉落物的生命周期：生成、过期、拾取
type DropField struct {
	items map[string]*DropItem
	table []DropEntry
	roll  func() float64 // [0,1) 均匀分布
	newID func() string
}

// NewDropField roll 为 nil 时使用 math/rand
func NewDropField(table []DropEntry, roll func() float64) *DropField {
	if roll == nil {
		roll = rand.Float64
	}
	return &DropField{
		items: make(map[string]*DropItem),
		table: table,
		roll:  roll,
		newID: uuid.NewString,
	}
}

// SpawnDrops 对掉落表每个条目独立判定，成功的条目都会在 at 处生成掉落
func (f *DropField) SpawnDrops(at Vec2, now time.Time) []*DropItem {
	var spawned []*DropItem
	for _, entry := range f.table {
		if f.roll() >= entry.Chance {
			continue
		}
		d := &DropItem{
			ID:        f.newID(),
			ItemID:    entry.ItemID,
			Pos:       at,
			ExpiresAt: now.Add(entry.TTL),
		}
		f.items[d.ID] = d
		spawned = append(spawned, d)
	}
	return spawned
}

// Expire 移除所有 ExpiresAt <= now 的掉落，返回被移除的数量
func (f *DropField) Expire(now time.Time) int {
	n := 0
	for id, d := range f.items {
		if !now.Before(d.ExpiresAt) {
			delete(f.items, id)
			n++
		}
	}
	return n
}

// Pickup 校验存在（未过期）、背包容量、距离后把物品放入背包并移除掉落
// 已到期但尚未被 Expire 清理的掉落视为不存在
func (f *DropField) Pickup(p *PlayerSession, dropID string, now time.Time) (*DropItem, error) {
	d, ok := f.items[dropID]
	if !ok || !now.Before(d.ExpiresAt) {
		return nil, ErrDropNotFound
	}
	if p.InventoryFull() {
		return nil, ErrInventoryFull
	}
	if distance(p.Pos, d.Pos) > AttackRange {
		return nil, ErrDropOutOfRange
	}
	p.Inventory = append(p.Inventory, d.ItemID)
	delete(f.items, dropID)
	return d, nil
}

func (f *DropField) Get(id string) (*DropItem, bool) {
	d, ok := f.items[id]
	return d, ok
}

func (f *DropField) Len() int { return len(f.items) }

// States 广播用投影
func (f *DropField) States() map[string]DropState {
	out := make(map[string]DropState, len(f.items))
	for id, d := range f.items {
		out[id] = d.State()
	}
	return out
}
