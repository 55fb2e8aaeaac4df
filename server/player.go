package server

import (
	"errors"
	"strings"
	"time"
)

// SessionID 连接会话唯一标识（由接入层分配）
type SessionID string

// Direction 玩家朝向（由速度推导，服务端权威）
type Direction string

const (
	DirIdle  Direction = "idle"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Vec2 二维坐标/向量
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	// DefaultInventoryCapacity 背包容量上限
	DefaultInventoryCapacity = 20

	baseMaxHP      = 100
	baseAttack     = 5
	defaultClassID = "swordsman"
)

// playerClasses 可选职业
var playerClasses = map[string]bool{
	"swordsman": true,
	"mage":      true,
}

// ResolveClassID 规范化客户端选择的职业，未知或为空时使用 swordsman
func ResolveClassID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	if playerClasses[id] {
		return id
	}
	return defaultClassID
}

var (
	ErrItemNotOwned = errors.New("item not found in inventory")
	ErrUnknownItem  = errors.New("unknown item")
)

// PlayerSession 房间内的玩家实体（服务端权威状态）
// 只允许所属房间的 Tick 协程读写
type PlayerSession struct {
	ID        SessionID
	ProfileID string
	Name      string
	Pos       Vec2
	Dir       Direction
	ClassID   string

	HP    int
	MaxHP int

	Atk            int
	BaseAtk        int
	EquippedItemID string // 空串表示未装备

	Inventory []string
	Capacity  int
	XP        int
	Gold      int

	AttackCooldownUntil time.Time
	MoveIntent          Vec2 // 最近一次移动意图，在下一次 Tick 生效
}

// newPlayerSession 由持久化档案构建会话；档案里失效的装备会被清掉
func newPlayerSession(id SessionID, profile Profile, spawn Vec2, items ItemCatalog) *PlayerSession {
	classID := ResolveClassID(profile.ClassID)
	p := &PlayerSession{
		ID:        id,
		ProfileID: profile.ID,
		Name:      profile.Name,
		Pos:       spawn,
		Dir:       DirDown,
		ClassID:   classID,
		HP:        baseMaxHP,
		MaxHP:     baseMaxHP,
		BaseAtk:   baseAttack,
		Capacity:  DefaultInventoryCapacity,
		XP:        profile.XP,
		Gold:      profile.Gold,
		Inventory: append([]string(nil), profile.Inventory...),
	}
	if len(p.Inventory) > p.Capacity {
		p.Inventory = p.Inventory[:p.Capacity]
	}
	if profile.EquippedItemID != "" {
		if err := p.Equip(profile.EquippedItemID, items); err != nil {
			Log.Warnw("dropping stale equipped item", "player", p.Name, "item", profile.EquippedItemID, "err", err)
		}
	}
	p.recomputeAttack(items)
	return p
}

// HasItem 背包中是否有该物品
func (p *PlayerSession) HasItem(itemID string) bool {
	for _, id := range p.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// InventoryFull 背包是否已满
func (p *PlayerSession) InventoryFull() bool {
	return len(p.Inventory) >= p.Capacity
}

// Equip 装备背包中的已知物品并重算攻击力；失败时不改变状态
func (p *PlayerSession) Equip(itemID string, items ItemCatalog) error {
	if !p.HasItem(itemID) {
		return ErrItemNotOwned
	}
	if _, ok := items.Lookup(itemID); !ok {
		return ErrUnknownItem
	}
	p.EquippedItemID = itemID
	p.recomputeAttack(items)
	return nil
}

// Unequip 卸下装备，攻击力恢复为基础值
func (p *PlayerSession) Unequip() {
	p.EquippedItemID = ""
	p.Atk = p.BaseAtk
}

func (p *PlayerSession) recomputeAttack(items ItemCatalog) {
	p.Atk = p.BaseAtk
	if p.EquippedItemID == "" {
		return
	}
	if def, ok := items.Lookup(p.EquippedItemID); ok {
		p.Atk += def.AtkBonus
	}
}

// Profile 导出需要持久化的字段
func (p *PlayerSession) Profile() Profile {
	return Profile{
		ID:             p.ProfileID,
		Name:           p.Name,
		ClassID:        p.ClassID,
		XP:             p.XP,
		Gold:           p.Gold,
		Inventory:      append([]string(nil), p.Inventory...),
		EquippedItemID: p.EquippedItemID,
	}
}

// State 广播用的只读投影（值拷贝）
func (p *PlayerSession) State() PlayerState {
	return PlayerState{
		ID:             p.ID,
		Name:           p.Name,
		X:              p.Pos.X,
		Y:              p.Pos.Y,
		Dir:            p.Dir,
		ClassID:        p.ClassID,
		HP:             p.HP,
		MaxHP:          p.MaxHP,
		Atk:            p.Atk,
		EquippedItemID: p.EquippedItemID,
		Inventory:      append([]string{}, p.Inventory...),
		XP:             p.XP,
		Gold:           p.Gold,
	}
}
