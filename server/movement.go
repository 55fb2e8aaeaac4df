package server

import "math"

const (
	// MaxSpeed 玩家最大移动速度（单位/秒）
	MaxSpeed = 180.0
	// idleSpeed 两轴速度都低于该值时视为静止
	idleSpeed = 1.0
)

// Bounds 世界矩形边界 [0,Width] x [0,Height]
type Bounds struct {
	Width  float64
	Height float64
}

// DefaultBounds 默认世界尺寸
var DefaultBounds = Bounds{Width: 1920, Height: 1080}

// Integrate 按移动意图推进一次位置并更新朝向
// 意图各分量独立裁剪到 [-1,1]，结果位置裁剪到世界边界内
func Integrate(p *PlayerSession, intent Vec2, dt float64, b Bounds) {
	vx := clamp(intent.X, -1, 1) * MaxSpeed
	vy := clamp(intent.Y, -1, 1) * MaxSpeed
	p.Pos.X = clamp(p.Pos.X+vx*dt, 0, b.Width)
	p.Pos.Y = clamp(p.Pos.Y+vy*dt, 0, b.Height)
	p.Dir = facing(vx, vy)
}

// facing 水平与竖直速度相等时取竖直方向
func facing(vx, vy float64) Direction {
	ax, ay := math.Abs(vx), math.Abs(vy)
	if ax < idleSpeed && ay < idleSpeed {
		return DirIdle
	}
	if ax > ay {
		if vx > 0 {
			return DirRight
		}
		return DirLeft
	}
	if vy > 0 {
		return DirDown
	}
	return DirUp
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Max(lo, math.Min(hi, v))
}

func distance(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
