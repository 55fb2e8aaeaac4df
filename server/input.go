package server

import (
	"errors"
	"time"
)

// 入站命令类型
const (
	CmdMove    = "move"
	CmdAttack  = "attack"
	CmdChat    = "chat"
	CmdJoin    = "join"
	CmdPickup  = "pickup"
	CmdEquip   = "equip"
	CmdUnequip = "unequip"
)

var errNoPayload = errors.New("missing payload")

// Command 解码后的客户端消息：类型 + 尚未解析的载荷
// 示例：{"type":"move","payload":{"x":1,"y":0}}
type Command struct {
	Type    string
	Payload []byte
	codec   Codec
}

// Decode 用消息原本的编码解析载荷
func (c Command) Decode(v any) error {
	if len(c.Payload) == 0 {
		return errNoPayload
	}
	codec := c.codec
	if codec == nil {
		codec = JSONCodec{}
	}
	return codec.Unmarshal(c.Payload, v)
}

// Input 客户端输入（意图），由房间 Tick 协程按到达顺序应用
type Input struct {
	SessionID SessionID
	Command   Command
	At        time.Time // 到达时间，用于限流与冷却
}

// Status 命令处理结果分类
type Status int

const (
	// StatusIgnored 格式错误或被限流：静默丢弃，不通知客户端
	StatusIgnored Status = iota
	// StatusAccepted 已生效
	StatusAccepted
	// StatusRejected 合法但违反规则：定向回复错误
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Outcome 命令处理结果
type Outcome struct {
	Status Status
	Reason string
}

func Accepted() Outcome { return Outcome{Status: StatusAccepted} }

func Ignored(reason string) Outcome { return Outcome{Status: StatusIgnored, Reason: reason} }

func Rejected(reason string) Outcome { return Outcome{Status: StatusRejected, Reason: reason} }
