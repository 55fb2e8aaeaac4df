package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrRoomClosed       = errors.New("room is closed")
	ErrDuplicateSession = errors.New("session already joined")
)

const saveTimeout = 5 * time.Second

// Conn 房间对传输层的依赖：按连接编码、定向发送、关闭
type Conn interface {
	Codec() Codec
	Enqueue(b []byte)
	Close()
}

// RoomTuning 可热更新的房间参数
type RoomTuning struct {
	MoveInterval       time.Duration
	ChatInterval       time.Duration
	MaxCommandsPerTick int
	MaxClients         int
}

func DefaultRoomTuning() RoomTuning {
	return RoomTuning{
		MoveInterval:       60 * time.Millisecond,
		ChatInterval:       time.Second,
		MaxCommandsPerTick: 16,
		MaxClients:         20,
	}
}

// TuningUpdate 局部更新，nil 字段保持不变
type TuningUpdate struct {
	MoveIntervalMs     *int `json:"moveIntervalMs,omitempty"`
	ChatIntervalMs     *int `json:"chatIntervalMs,omitempty"`
	MaxCommandsPerTick *int `json:"maxCommandsPerTick,omitempty"`
	MaxClients         *int `json:"maxClients,omitempty"`
}

// RoomOptions 建房参数，零值字段使用默认值
type RoomOptions struct {
	Map       string
	Maps      MapCatalog
	Items     ItemCatalog
	DropTable []DropEntry
	Store     ProfileStore
	Tuning    RoomTuning
	TickRate  int
	Bounds    Bounds
	Clock     func() time.Time
	Roll      func() float64
}

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进
// players/monsters/drops 只在 Tick 协程中读写；外部通过通道投递请求
type Room struct {
	ID string

	mapDef  MapDef
	maps    MapCatalog
	items   ItemCatalog
	bounds  Bounds
	store   ProfileStore
	clock   func() time.Time
	log     *zap.SugaredLogger
	metrics *RoomMetrics

	players  map[SessionID]*PlayerSession
	conns    map[SessionID]Conn
	monsters []*MonsterEntity
	drops    *DropField

	tuning         RoomTuning
	moveLimiter    *RateLimiter
	chatLimiter    *RateLimiter
	inputsThisTick map[SessionID]int

	inputChan chan Input
	joinChan  chan joinRequest
	leaveChan chan SessionID
	tuneChan  chan TuningUpdate

	tickInterval time.Duration
	tickSeq      int64
	lastTick     time.Time

	published  atomic.Pointer[Snapshot]
	tuningView atomic.Pointer[RoomTuning]

	saves         sync.WaitGroup
	stopOnce      sync.Once
	quit          chan struct{}
	done          chan struct{}
	tickerStarted bool
}

type joinRequest struct {
	ID      SessionID
	Profile Profile
	Conn    Conn
	result  chan error
}

// ChatMessage 聊天/系统通知
type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// ErrorMessage 定向错误
type ErrorMessage struct {
	Message string `json:"message"`
}

type welcomeMessage struct {
	SessionID SessionID `json:"sessionId"`
	Map       string    `json:"map"`
}

type switchMapMessage struct {
	Map string `json:"map"`
}

const systemSender = "SYSTEM"

// NewRoom 创建房间并按地图配置生成怪物；未知地图回退到默认地图
func NewRoom(opts RoomOptions) *Room {
	if opts.Maps == nil {
		opts.Maps = DefaultMaps
	}
	if opts.Items == nil {
		opts.Items = DefaultItems
	}
	if opts.DropTable == nil {
		opts.DropTable = DefaultDropTable
	}
	if opts.Tuning == (RoomTuning{}) {
		opts.Tuning = DefaultRoomTuning()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = TicksPerSecond
	}
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = DefaultBounds
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	mapDef := opts.Maps.Resolve(opts.Map)
	r := &Room{
		ID:             mapDef.Name,
		mapDef:         mapDef,
		maps:           opts.Maps,
		items:          opts.Items,
		bounds:         opts.Bounds,
		store:          opts.Store,
		clock:          opts.Clock,
		log:            Log.With("room", mapDef.Name),
		metrics:        &RoomMetrics{},
		players:        make(map[SessionID]*PlayerSession),
		conns:          make(map[SessionID]Conn),
		monsters:       spawnMonsters(mapDef),
		drops:          NewDropField(opts.DropTable, opts.Roll),
		tuning:         opts.Tuning,
		moveLimiter:    NewRateLimiter(opts.Tuning.MoveInterval),
		chatLimiter:    NewRateLimiter(opts.Tuning.ChatInterval),
		inputsThisTick: make(map[SessionID]int),
		inputChan:      make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		joinChan:       make(chan joinRequest, 16),
		leaveChan:      make(chan SessionID, 64),
		tuneChan:       make(chan TuningUpdate, 8),
		tickInterval:   time.Second / time.Duration(opts.TickRate),
		lastTick:       opts.Clock(),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	tuning := r.tuning
	r.tuningView.Store(&tuning)
	snap := r.buildSnapshot()
	r.published.Store(&snap)
	return r
}

func (r *Room) Map() string { return r.mapDef.Name }

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

func (r *Room) TickSeq() int64 { return atomic.LoadInt64(&r.tickSeq) }

// Now 房间时钟
func (r *Room) Now() time.Time { return r.clock() }

// Snapshot 返回最近一次发布的快照，可在任意协程调用
func (r *Room) Snapshot() Snapshot {
	return *r.published.Load()
}

// Tuning 当前生效的参数（只读副本）
func (r *Room) Tuning() RoomTuning {
	return *r.tuningView.Load()
}

// RequestJoin 档案已就绪的会话请求进入房间，阻塞到 Tick 协程处理完毕
// 返回 nil 之后该会话的输入才允许投递
func (r *Room) RequestJoin(ctx context.Context, id SessionID, profile Profile, conn Conn) error {
	req := joinRequest{ID: id, Profile: profile, Conn: conn, result: make(chan error, 1)}
	select {
	case r.joinChan <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.quit:
		return ErrRoomClosed
	}
	select {
	case err := <-req.result:
		return err
	case <-r.quit:
		return ErrRoomClosed
	}
}

// OnInput 入站输入（不立即改变状态），等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：输入拥塞时丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态
func (r *Room) RequestLeave(id SessionID) {
	select {
	case r.leaveChan <- id:
	case <-r.quit:
	}
}

// RequestTuning 参数更新同样在 Tick 线程中生效
func (r *Room) RequestTuning(u TuningUpdate) error {
	select {
	case r.tuneChan <- u:
		return nil
	case <-r.quit:
		return ErrRoomClosed
	default:
		return errors.New("tuning queue full")
	}
}

// join 创建会话。仅在 Tick 协程调用
func (r *Room) join(id SessionID, profile Profile, conn Conn) error {
	if _, ok := r.players[id]; ok {
		return ErrDuplicateSession
	}
	if len(r.players) >= r.tuning.MaxClients {
		return ErrRoomFull
	}
	p := newPlayerSession(id, profile, r.mapDef.Spawn, r.items)
	r.players[id] = p
	if conn != nil {
		r.conns[id] = conn
	}
	r.send(id, Envelope{Type: "welcome", Payload: welcomeMessage{SessionID: id, Map: r.mapDef.Name}})
	r.systemChat(fmt.Sprintf("%s joined %s", p.Name, r.mapDef.Name))
	r.log.Infow("player joined", "session", id, "name", p.Name, "players", len(r.players))
	return nil
}

// leave 移除会话并异步保存档案（只尝试一次）
func (r *Room) leave(id SessionID) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	delete(r.players, id)
	delete(r.inputsThisTick, id)
	r.moveLimiter.Forget(id)
	r.chatLimiter.Forget(id)
	if conn, ok := r.conns[id]; ok {
		conn.Close()
		delete(r.conns, id)
	}
	r.systemChat(fmt.Sprintf("%s left.", p.Name))
	r.log.Infow("player left", "session", id, "name", p.Name, "players", len(r.players))
	r.persist(p.Profile())
}

func (r *Room) evictAll() {
	for id := range r.players {
		r.leave(id)
	}
}

func (r *Room) persist(prof Profile) {
	if r.store == nil {
		return
	}
	r.saves.Add(1)
	go func() {
		defer r.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := r.store.SaveProfile(ctx, prof); err != nil {
			r.metrics.IncSaveFailures()
			r.log.Errorw("profile save failed, progress lost",
				"name", prof.Name, "profile", prof.ID,
				"xp", prof.XP, "gold", prof.Gold, "inventory", prof.Inventory,
				"err", err)
			return
		}
		r.log.Debugw("profile saved", "name", prof.Name, "profile", prof.ID)
	}()
}

// WaitSaves 等待所有进行中的档案保存结束
func (r *Room) WaitSaves() { r.saves.Wait() }

func (r *Room) applyTuning(u TuningUpdate) {
	if u.MoveIntervalMs != nil && *u.MoveIntervalMs >= 0 {
		r.tuning.MoveInterval = time.Duration(*u.MoveIntervalMs) * time.Millisecond
		r.moveLimiter.SetInterval(r.tuning.MoveInterval)
	}
	if u.ChatIntervalMs != nil && *u.ChatIntervalMs >= 0 {
		r.tuning.ChatInterval = time.Duration(*u.ChatIntervalMs) * time.Millisecond
		r.chatLimiter.SetInterval(r.tuning.ChatInterval)
	}
	if u.MaxCommandsPerTick != nil && *u.MaxCommandsPerTick > 0 {
		r.tuning.MaxCommandsPerTick = *u.MaxCommandsPerTick
	}
	if u.MaxClients != nil && *u.MaxClients > 0 {
		r.tuning.MaxClients = *u.MaxClients
	}
	tuning := r.tuning
	r.tuningView.Store(&tuning)
	r.log.Infow("tuning updated",
		"moveInterval", tuning.MoveInterval, "chatInterval", tuning.ChatInterval,
		"maxCommandsPerTick", tuning.MaxCommandsPerTick, "maxClients", tuning.MaxClients)
}

// send 定向发送给一个会话
func (r *Room) send(id SessionID, env Envelope) {
	conn, ok := r.conns[id]
	if !ok {
		return
	}
	b, err := conn.Codec().Marshal(env)
	if err != nil {
		r.log.Errorw("encode message", "type", env.Type, "err", err)
		return
	}
	conn.Enqueue(b)
}

// broadcast 发送给房间内所有连接，每种编码只序列化一次
func (r *Room) broadcast(env Envelope) {
	encoded := make(map[string][]byte, 2)
	for _, conn := range r.conns {
		codec := conn.Codec()
		b, ok := encoded[codec.Name()]
		if !ok {
			var err error
			b, err = codec.Marshal(env)
			if err != nil {
				r.log.Errorw("encode broadcast", "type", env.Type, "codec", codec.Name(), "err", err)
				continue
			}
			encoded[codec.Name()] = b
		}
		conn.Enqueue(b)
	}
}

func (r *Room) sendError(id SessionID, msg string) {
	r.send(id, Envelope{Type: "error", Payload: ErrorMessage{Message: msg}})
}

func (r *Room) systemChat(text string) {
	r.broadcast(Envelope{Type: "chat", Payload: ChatMessage{From: systemSender, Text: text}})
}
