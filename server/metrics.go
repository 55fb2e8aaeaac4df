package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	CommandsAccepted  int64 // 已生效的命令数
	CommandsRejected  int64 // 违反规则被拒绝的命令数
	CommandsIgnored   int64 // 格式错误/限流被静默丢弃的命令数
	RateLimited       int64 // 因限流被丢弃的命令数（含每帧上限）
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	Kills             int64
	DropsSpawned      int64
	DropsExpired      int64
	Pickups           int64
	SaveFailures      int64 // 档案保存失败次数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted()            { atomic.AddInt64(&m.CommandsAccepted, 1) }
func (m *RoomMetrics) IncRejected()            { atomic.AddInt64(&m.CommandsRejected, 1) }
func (m *RoomMetrics) IncIgnored()             { atomic.AddInt64(&m.CommandsIgnored, 1) }
func (m *RoomMetrics) IncRateLimited()         { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncChanFullDiscarded()   { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncKills()               { atomic.AddInt64(&m.Kills, 1) }
func (m *RoomMetrics) AddDropsSpawned(n int64) { atomic.AddInt64(&m.DropsSpawned, n) }
func (m *RoomMetrics) AddDropsExpired(n int64) { atomic.AddInt64(&m.DropsExpired, n) }
func (m *RoomMetrics) IncPickups()             { atomic.AddInt64(&m.Pickups, 1) }
func (m *RoomMetrics) IncSaveFailures()        { atomic.AddInt64(&m.SaveFailures, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"commands_accepted":   atomic.LoadInt64(&m.CommandsAccepted),
		"commands_rejected":   atomic.LoadInt64(&m.CommandsRejected),
		"commands_ignored":    atomic.LoadInt64(&m.CommandsIgnored),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"kills":               atomic.LoadInt64(&m.Kills),
		"drops_spawned":       atomic.LoadInt64(&m.DropsSpawned),
		"drops_expired":       atomic.LoadInt64(&m.DropsExpired),
		"pickups":             atomic.LoadInt64(&m.Pickups),
		"save_failures":       atomic.LoadInt64(&m.SaveFailures),
		"avg_tick_ms":         avgMs,
	}
}
