package server

import (
	"encoding/json"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// fakeConn 记录房间发出的所有帧
type fakeConn struct {
	frames [][]byte
	closed bool
}

func (c *fakeConn) Codec() Codec     { return JSONCodec{} }
func (c *fakeConn) Enqueue(b []byte) { c.frames = append(c.frames, b) }
func (c *fakeConn) Close()           { c.closed = true }

func (c *fakeConn) reset() { c.frames = nil }

// payloads 返回指定类型消息的载荷
func (c *fakeConn) payloads(t *testing.T, typ string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	for _, f := range c.frames {
		var env struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(f, &env); err != nil {
			t.Fatalf("decoding frame %s: %v", f, err)
		}
		if env.Type == typ {
			out = append(out, env.Payload)
		}
	}
	return out
}

func (c *fakeConn) chats(t *testing.T) []ChatMessage {
	t.Helper()
	var out []ChatMessage
	for _, raw := range c.payloads(t, "chat") {
		var m ChatMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decoding chat: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) errors(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, raw := range c.payloads(t, "error") {
		var m ErrorMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decoding error: %v", err)
		}
		out = append(out, m.Message)
	}
	return out
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// seqRoll 依次返回给定的值，用完后循环
func seqRoll(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func newTestRoom(t *testing.T, opts RoomOptions) *Room {
	t.Helper()
	if opts.Map == "" {
		opts.Map = "hub"
	}
	if opts.Store == nil {
		opts.Store = NewMemoryProfileStore()
	}
	if opts.Clock == nil {
		opts.Clock = fixedClock(t0)
	}
	if opts.Roll == nil {
		opts.Roll = seqRoll(0.99)
	}
	return NewRoom(opts)
}

func joinPlayer(t *testing.T, r *Room, id, name string) (*PlayerSession, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	profile := Profile{ID: "profile-" + id, Name: name, ClassID: "swordsman", Inventory: []string{}}
	if err := r.join(SessionID(id), profile, conn); err != nil {
		t.Fatalf("join %s: %v", id, err)
	}
	return r.players[SessionID(id)], conn
}

func jsonCommand(t *testing.T, typ string, payload any) Command {
	t.Helper()
	b, err := json.Marshal(Envelope{Type: typ, Payload: payload})
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	cmd, err := JSONCodec{}.DecodeCommand(b)
	if err != nil {
		t.Fatalf("decode command: %v", err)
	}
	return cmd
}

func rawCommand(t *testing.T, frame string) Command {
	t.Helper()
	cmd, err := JSONCodec{}.DecodeCommand([]byte(frame))
	if err != nil {
		t.Fatalf("decode command %s: %v", frame, err)
	}
	return cmd
}

func testPlayer(x, y float64) *PlayerSession {
	return &PlayerSession{
		ID:        "p1",
		Name:      "Tester",
		Pos:       Vec2{X: x, Y: y},
		Dir:       DirDown,
		HP:        baseMaxHP,
		MaxHP:     baseMaxHP,
		Atk:       baseAttack,
		BaseAtk:   baseAttack,
		Capacity:  DefaultInventoryCapacity,
		Inventory: []string{},
	}
}
