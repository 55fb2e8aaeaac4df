package server

import "time"

const (
	AttackRange    = 72.0
	AttackCooldown = 800 * time.Millisecond
	KillXPReward   = 10
	KillGoldReward = 5
	RespawnDelay   = 5 * time.Second
)

// AttackResult 一次命中的结算结果
type AttackResult struct {
	Target *MonsterEntity
	Damage int
	Killed bool
	Drops  []*DropItem
}

// ResolveAttack 近战结算
//
// 冷却未结束时直接失败且不改变任何状态；否则无论是否命中都会消耗冷却。
// 目标为按槽位顺序遇到的第一个存活且在 AttackRange 内的怪物（不是最近的）。
// 击杀时发放经验与金币、设置重生时间并交给 spawner 生成掉落。
func ResolveAttack(attacker *PlayerSession, monsters []*MonsterEntity, spawner DropSpawner, now time.Time) (AttackResult, bool) {
	if now.Before(attacker.AttackCooldownUntil) {
		return AttackResult{}, false
	}
	attacker.AttackCooldownUntil = now.Add(AttackCooldown)

	var target *MonsterEntity
	for _, m := range monsters {
		if m.Alive() && distance(m.Pos, attacker.Pos) <= AttackRange {
			target = m
			break
		}
	}
	if target == nil {
		return AttackResult{}, false
	}

	dmg := attacker.Atk
	if dmg < 1 {
		dmg = 1
	}
	res := AttackResult{Target: target, Damage: dmg}
	if target.TakeDamage(dmg) {
		res.Killed = true
		attacker.XP += KillXPReward
		attacker.Gold += KillGoldReward
		target.RespawnAt = now.Add(RespawnDelay)
		if spawner != nil {
			res.Drops = spawner.SpawnDrops(target.Pos, now)
		}
	}
	return res, true
}
