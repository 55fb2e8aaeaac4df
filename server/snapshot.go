package server

// PlayerState 为广播给客户端的玩家状态
type PlayerState struct {
	ID             SessionID `json:"id"`
	Name           string    `json:"name"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	Dir            Direction `json:"dir"`
	ClassID        string    `json:"classId"`
	HP             int       `json:"hp"`
	MaxHP          int       `json:"maxHp"`
	Atk            int       `json:"atk"`
	EquippedItemID string    `json:"equippedItemId,omitempty"`
	Inventory      []string  `json:"inventory"`
	XP             int       `json:"xp"`
	Gold           int       `json:"gold"`
}

type MonsterState struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	HP    int     `json:"hp"`
	MaxHP int     `json:"maxHp"`
}

type DropState struct {
	ID     string  `json:"id"`
	ItemID string  `json:"itemId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Snapshot 房间状态的只读投影，每个 Tick 重新构建，从不引用实时状态
type Snapshot struct {
	Tick     int64                     `json:"tick"`
	Players  map[SessionID]PlayerState `json:"players"`
	Monsters map[string]MonsterState   `json:"monsters"`
	Drops    map[string]DropState      `json:"drops"`
}

// buildSnapshot 在 Tick 协程内调用
func (r *Room) buildSnapshot() Snapshot {
	snap := Snapshot{
		Tick:     r.tickSeq,
		Players:  make(map[SessionID]PlayerState, len(r.players)),
		Monsters: make(map[string]MonsterState, len(r.monsters)),
		Drops:    r.drops.States(),
	}
	for id, p := range r.players {
		snap.Players[id] = p.State()
	}
	for _, m := range r.monsters {
		snap.Monsters[m.ID] = m.State()
	}
	return snap
}
