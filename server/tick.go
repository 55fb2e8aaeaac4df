package server

import (
	"sync/atomic"
	"time"
)

const (
	// TicksPerSecond 默认世界推进频率（20 TPS）
	TicksPerSecond = 20
)

// StartTicker 启动房间的 Tick 循环（单线程推进世界）
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.quit:
				// 退出前处理已排队的请求，再让所有在线玩家离开以保存档案
				r.ProcessInputs()
				r.evictAll()
				return
			case <-ticker.C:
				r.Step(r.clock())
			}
		}
	}()
}

// Stop 停止 Tick 循环并等待档案保存完成，可重复调用
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		if r.tickerStarted {
			<-r.done
		} else {
			r.evictAll()
		}
		r.saves.Wait()
		r.log.Infow("room stopped", "ticks", r.TickSeq())
	})
}

// Step 执行一次完整 Tick：处理输入 → 更新世界 → 广播结果
func (r *Room) Step(now time.Time) {
	start := time.Now()
	r.BeginTick()
	r.ProcessInputs()
	r.UpdateWorld(now)
	r.BroadcastState()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// BeginTick 重置帧内计数
func (r *Room) BeginTick() {
	atomic.AddInt64(&r.tickSeq, 1)
	for id := range r.inputsThisTick {
		delete(r.inputsThisTick, id)
	}
}

// ProcessInputs 处理排队的加入、输入、离开与参数更新（非阻塞 drain）
// 加入先于输入处理：会话的输入只会在其加入请求完成之后才被投递
func (r *Room) ProcessInputs() {
	r.drainJoins()
	// 只处理本帧开始时已到达的输入，持续灌入的输入留到下一帧
	for n := len(r.inputChan); n > 0; n-- {
		r.applyInput(<-r.inputChan)
	}
	for {
		select {
		case id := <-r.leaveChan:
			r.leave(id)
		case u := <-r.tuneChan:
			r.applyTuning(u)
		default:
			return
		}
	}
}

func (r *Room) drainJoins() {
	for {
		select {
		case req := <-r.joinChan:
			req.result <- r.join(req.ID, req.Profile, req.Conn)
		default:
			return
		}
	}
}

// applyInput 每个会话每帧最多处理 MaxCommandsPerTick 条命令
func (r *Room) applyInput(in Input) {
	if _, ok := r.players[in.SessionID]; !ok {
		return
	}
	if r.inputsThisTick[in.SessionID] >= r.tuning.MaxCommandsPerTick {
		r.metrics.IncRateLimited()
		return
	}
	r.inputsThisTick[in.SessionID]++
	r.HandleCommand(in.SessionID, in.Command, in.At)
}

// UpdateWorld 推进随时间变化的状态：玩家移动、怪物巡逻与重生、掉落过期
func (r *Room) UpdateWorld(now time.Time) {
	dt := now.Sub(r.lastTick).Seconds()
	if dt < 0 {
		dt = 0
	}
	r.lastTick = now

	for _, p := range r.players {
		Integrate(p, p.MoveIntent, dt, r.bounds)
	}
	for _, m := range r.monsters {
		m.Update(dt, now)
	}
	if n := r.drops.Expire(now); n > 0 {
		r.metrics.AddDropsExpired(int64(n))
	}
}

// BroadcastState 发布快照并广播给所有玩家
func (r *Room) BroadcastState() {
	snap := r.buildSnapshot()
	r.published.Store(&snap)
	r.broadcast(Envelope{Type: "state", Payload: snap})
}
