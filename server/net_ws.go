package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	joinWait   = 5 * time.Second
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws    *websocket.Conn
	send  chan []byte
	codec Codec
}

func NewClientConn(ws *websocket.Conn, codec Codec) *ClientConn {
	return &ClientConn{
		ws:    ws,
		send:  make(chan []byte, 64),
		codec: codec,
	}
}

func (c *ClientConn) Codec() Codec { return c.codec }

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃新消息（防止阻塞 Tick）
	}
}

// Close 关闭发送队列，写协程随之退出并关闭连接
// 与 Enqueue 一样只在房间 Tick 协程中调用
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump(send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，解码为 Input 注入房间；解码失败的消息直接丢弃
func (c *ClientConn) readPump(room *Room, id SessionID) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在 Tick 线程中移除该玩家
	defer room.RequestLeave(id)
	c.ws.SetReadLimit(1 << 16)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		cmd, err := c.codec.DecodeCommand(payload)
		if err != nil {
			continue
		}
		room.OnInput(Input{SessionID: id, Command: cmd, At: room.Now()})
	}
}

// writeDirect 在写协程启动之前直接写一条消息（用于拒绝连接）
func (c *ClientConn) writeDirect(env Envelope) {
	b, err := c.codec.Marshal(env)
	if err != nil {
		return
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteMessage(c.codec.FrameType(), b)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?map=hub&name=alice&classId=mage&codec=json
// 档案加载完成并进入房间之后才开始读取该连接的输入
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mapName := q.Get("map")
	if mapName == "" {
		mapName = s.cfg.DefaultMap
	}
	name := SanitizeName(q.Get("name"))
	codec := CodecByName(q.Get("codec"))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	client := NewClientConn(ws, codec)
	room := s.rooms.GetOrCreateRoom(mapName)

	ctx, cancel := context.WithTimeout(context.Background(), joinWait)
	defer cancel()

	profile, err := s.store.GetOrCreateProfile(ctx, name)
	if err != nil {
		Log.Errorw("profile fetch failed", "name", name, "room", room.ID, "err", err)
		client.writeDirect(Envelope{Type: "error", Payload: ErrorMessage{Message: "profile unavailable"}})
		_ = ws.Close()
		return
	}

	if classID := q.Get("classId"); classID != "" {
		profile.ClassID = ResolveClassID(classID)
	}

	id := SessionID(uuid.NewString())
	send := client.send
	if err := room.RequestJoin(ctx, id, profile, client); err != nil {
		Log.Infow("join refused", "name", name, "room", room.ID, "err", err)
		client.writeDirect(Envelope{Type: "error", Payload: ErrorMessage{Message: err.Error()}})
		_ = ws.Close()
		return
	}

	go client.writePump(send)
	go client.readPump(room, id)
}
