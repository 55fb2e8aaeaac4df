package server

import (
	"fmt"
	"time"
)

const (
	// MonsterSpeed 巡逻速度（单位/秒）
	MonsterSpeed = 60.0
	// waypointRadius 到达路点的判定半径
	waypointRadius = 4.0
)

// MonsterEntity 固定槽位的怪物，只会重生不会被销毁
type MonsterEntity struct {
	ID          string
	Type        string
	Pos         Vec2
	HP          int
	MaxHP       int
	Patrol      []Vec2
	PatrolIndex int
	RespawnAt   time.Time // 零值表示未设置
}

// spawnMonsters 按地图配置创建全部怪物槽位，顺序即槽位顺序
func spawnMonsters(m MapDef) []*MonsterEntity {
	monsters := make([]*MonsterEntity, 0, len(m.Patrols))
	for i, patrol := range m.Patrols {
		mon := &MonsterEntity{
			ID:     fmt.Sprintf("%s-mob-%d", m.Name, i),
			Type:   patrol.Type,
			HP:     patrol.MaxHP,
			MaxHP:  patrol.MaxHP,
			Patrol: append([]Vec2(nil), patrol.Path...),
		}
		if len(mon.Patrol) > 0 {
			mon.Pos = mon.Patrol[0]
		}
		monsters = append(monsters, mon)
	}
	return monsters
}

func (m *MonsterEntity) Alive() bool { return m.HP > 0 }

// TakeDamage 扣血（下限为 0），返回这一击是否致死
func (m *MonsterEntity) TakeDamage(dmg int) bool {
	if !m.Alive() {
		return false
	}
	m.HP -= dmg
	if m.HP < 0 {
		m.HP = 0
	}
	return m.HP == 0
}

// Update 推进一次巡逻状态机
// 死亡状态下只检查重生计时；存活时朝下一个路点移动，到达后循环切换路点
func (m *MonsterEntity) Update(dt float64, now time.Time) {
	if !m.Alive() {
		if m.RespawnAt.IsZero() || now.Before(m.RespawnAt) {
			return
		}
		m.HP = m.MaxHP
		m.RespawnAt = time.Time{}
	}
	n := len(m.Patrol)
	if n == 0 {
		return
	}
	target := m.Patrol[(m.PatrolIndex+1)%n]
	dist := distance(m.Pos, target)
	if dist < waypointRadius {
		m.PatrolIndex = (m.PatrolIndex + 1) % n
		return
	}
	step := MonsterSpeed * dt
	if step > dist {
		step = dist
	}
	m.Pos.X += (target.X - m.Pos.X) / dist * step
	m.Pos.Y += (target.Y - m.Pos.Y) / dist * step
}

func (m *MonsterEntity) State() MonsterState {
	return MonsterState{
		ID:    m.ID,
		Type:  m.Type,
		X:     m.Pos.X,
		Y:     m.Pos.Y,
		HP:    m.HP,
		MaxHP: m.MaxHP,
	}
}
