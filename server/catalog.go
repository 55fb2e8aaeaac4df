package server

import (
	"strings"
	"time"
)

// DefaultMapName 未知地图名在建房时回退到的默认地图
const DefaultMapName = "hub"

// ItemSlot 装备槽位
type ItemSlot string

const (
	SlotWeapon ItemSlot = "weapon"
	SlotArmor  ItemSlot = "armor"
	SlotMisc   ItemSlot = "misc"
)

// ItemDef 物品静态定义
type ItemDef struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slot     ItemSlot `json:"slot"`
	AtkBonus int      `json:"atkBonus,omitempty"`
}

// ItemCatalog 物品表：itemID -> 定义（只读）
type ItemCatalog map[string]ItemDef

// Lookup 查询物品定义
func (c ItemCatalog) Lookup(id string) (ItemDef, bool) {
	def, ok := c[id]
	return def, ok
}

// DefaultItems 内置物品表。新增物品时记得同步掉落表
var DefaultItems = ItemCatalog{
	"wooden_sword": {ID: "wooden_sword", Name: "Wooden Sword", Slot: SlotWeapon, AtkBonus: 1},
}

// PatrolDef 一个怪物槽位的巡逻配置
type PatrolDef struct {
	Type  string `json:"type"`
	MaxHP int    `json:"maxHp"`
	Path  []Vec2 `json:"path"`
}

// MapDef 地图配置：出生点 + 怪物巡逻定义
type MapDef struct {
	Name    string      `json:"name"`
	Spawn   Vec2        `json:"spawn"`
	Patrols []PatrolDef `json:"patrols"`
}

// MapCatalog 地图表（只读）
type MapCatalog map[string]MapDef

// Lookup 按名称（大小写不敏感）查找地图
func (c MapCatalog) Lookup(name string) (MapDef, bool) {
	def, ok := c[strings.ToLower(name)]
	return def, ok
}

// Resolve 查找地图，未知名称回退到 DefaultMapName
func (c MapCatalog) Resolve(name string) MapDef {
	if def, ok := c.Lookup(name); ok {
		return def
	}
	return c[DefaultMapName]
}

// DefaultMaps 内置地图
var DefaultMaps = MapCatalog{
	"hub": {
		Name:  "hub",
		Spawn: Vec2{X: 960, Y: 540},
		Patrols: []PatrolDef{
			{
				Type:  "Training Dummy",
				MaxHP: 40,
				Path:  []Vec2{{X: 900, Y: 520}, {X: 1020, Y: 520}, {X: 1020, Y: 600}, {X: 900, Y: 600}},
			},
		},
	},
	"forest": {
		Name:  "forest",
		Spawn: Vec2{X: 600, Y: 400},
		Patrols: []PatrolDef{
			{
				Type:  "Forest Slime",
				MaxHP: 60,
				Path:  []Vec2{{X: 500, Y: 360}, {X: 720, Y: 360}, {X: 720, Y: 520}, {X: 500, Y: 520}},
			},
		},
	},
}

// DropEntry 掉落表条目：每次怪物死亡独立判定
type DropEntry struct {
	ItemID string
	Chance float64
	TTL    time.Duration
}

// DefaultDropTable 默认掉落表
var DefaultDropTable = []DropEntry{
	{ItemID: "wooden_sword", Chance: 0.25, TTL: 15 * time.Second},
}
