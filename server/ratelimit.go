package server

import "time"

// RateLimiter 按会话限制某一类命令的接受频率
// 不同通道（移动、聊天）使用各自的实例，互不影响
// 非并发安全：只在房间 Tick 协程中使用
type RateLimiter struct {
	interval time.Duration
	last     map[SessionID]time.Time
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		last:     make(map[SessionID]time.Time),
	}
}

// TryConsume 距上次被接受至少 interval 时返回 true 并记录 now；首次调用总是成功
// 拒绝时不修改任何状态
func (l *RateLimiter) TryConsume(id SessionID, now time.Time) bool {
	if last, ok := l.last[id]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[id] = now
	return true
}

// Forget 会话离开后释放其记录
func (l *RateLimiter) Forget(id SessionID) {
	delete(l.last, id)
}

func (l *RateLimiter) Interval() time.Duration { return l.interval }

func (l *RateLimiter) SetInterval(d time.Duration) { l.interval = d }
