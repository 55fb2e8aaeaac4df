package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// 入站载荷结构及其校验规则
type movePayload struct {
	X *float64 `json:"x" validate:"required,gte=-1,lte=1"`
	Y *float64 `json:"y" validate:"required,gte=-1,lte=1"`
}

type chatPayload struct {
	Text string `json:"text" validate:"required,min=1,max=200"`
}

type joinPayload struct {
	Map string `json:"map" validate:"required,min=2,max=24"`
}

type pickupPayload struct {
	DropID string `json:"dropId" validate:"required,uuid"`
}

type equipPayload struct {
	ItemID string `json:"itemId" validate:"required,min=1"`
}

// decodeValid 解析并校验载荷，任一步失败都视为格式错误
func decodeValid(cmd Command, v any) bool {
	if err := cmd.Decode(v); err != nil {
		return false
	}
	return validate.Struct(v) == nil
}

// HandleCommand 校验并分发一条客户端命令。仅在 Tick 协程调用
//
// 格式错误与限流返回 Ignored，不回复客户端；
// 违反规则返回 Rejected，并向该客户端定向发送错误。
func (r *Room) HandleCommand(id SessionID, cmd Command, now time.Time) Outcome {
	p, ok := r.players[id]
	if !ok {
		return Ignored("unknown session")
	}

	var out Outcome
	switch cmd.Type {
	case CmdMove:
		out = r.handleMove(p, cmd, now)
	case CmdAttack:
		out = r.handleAttack(p, now)
	case CmdChat:
		out = r.handleChat(p, cmd, now)
	case CmdJoin:
		out = r.handleJoin(p, cmd)
	case CmdPickup:
		out = r.handlePickup(p, cmd, now)
	case CmdEquip:
		out = r.handleEquip(p, cmd)
	case CmdUnequip:
		out = r.handleUnequip(p)
	default:
		out = Ignored("unknown command")
	}

	switch out.Status {
	case StatusAccepted:
		r.metrics.IncAccepted()
	case StatusRejected:
		r.metrics.IncRejected()
		r.sendError(id, out.Reason)
		r.log.Debugw("command rejected", "session", id, "type", cmd.Type, "reason", out.Reason)
	default:
		r.metrics.IncIgnored()
	}
	return out
}

// handleMove 只记录意图，位置由下一次 Tick 推进
func (r *Room) handleMove(p *PlayerSession, cmd Command, now time.Time) Outcome {
	var in movePayload
	if !decodeValid(cmd, &in) {
		return Ignored("malformed move")
	}
	if !r.moveLimiter.TryConsume(p.ID, now) {
		r.metrics.IncRateLimited()
		return Ignored("move rate limited")
	}
	p.MoveIntent = Vec2{X: *in.X, Y: *in.Y}
	return Accepted()
}

func (r *Room) handleAttack(p *PlayerSession, now time.Time) Outcome {
	if now.Before(p.AttackCooldownUntil) {
		return Ignored("attack on cooldown")
	}
	res, hit := ResolveAttack(p, r.monsters, r.drops, now)
	if !hit {
		return Accepted()
	}
	if res.Killed {
		r.metrics.IncKills()
		r.metrics.AddDropsSpawned(int64(len(res.Drops)))
		r.systemChat(fmt.Sprintf("%s defeated %s! Rewards granted.", p.Name, res.Target.Type))
		r.log.Infow("monster killed",
			"player", p.Name, "monster", res.Target.ID, "drops", len(res.Drops),
			"respawnAt", res.Target.RespawnAt)
	}
	return Accepted()
}

func (r *Room) handleChat(p *PlayerSession, cmd Command, now time.Time) Outcome {
	var in chatPayload
	if !decodeValid(cmd, &in) {
		return Ignored("malformed chat")
	}
	if !r.chatLimiter.TryConsume(p.ID, now) {
		r.metrics.IncRateLimited()
		return Ignored("chat rate limited")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Ignored("blank chat")
	}
	r.broadcast(Envelope{Type: "chat", Payload: ChatMessage{From: p.Name, Text: text}})
	return Accepted()
}

// handleJoin 切换地图请求：校验目标地图后通知客户端重连到目标房间
func (r *Room) handleJoin(p *PlayerSession, cmd Command) Outcome {
	var in joinPayload
	if !decodeValid(cmd, &in) {
		return Ignored("malformed join")
	}
	name := strings.ToLower(in.Map)
	if _, ok := r.maps.Lookup(name); !ok {
		return Rejected(fmt.Sprintf("map %s does not exist", name))
	}
	r.send(p.ID, Envelope{Type: "switch_map", Payload: switchMapMessage{Map: name}})
	return Accepted()
}

func (r *Room) handlePickup(p *PlayerSession, cmd Command, now time.Time) Outcome {
	var in pickupPayload
	if !decodeValid(cmd, &in) {
		return Ignored("malformed pickup")
	}
	d, err := r.drops.Pickup(p, in.DropID, now)
	if err != nil {
		return Rejected(err.Error())
	}
	r.metrics.IncPickups()
	r.send(p.ID, Envelope{Type: "chat", Payload: ChatMessage{From: systemSender, Text: "Picked up " + d.ItemID}})
	return Accepted()
}

func (r *Room) handleEquip(p *PlayerSession, cmd Command) Outcome {
	var in equipPayload
	if !decodeValid(cmd, &in) {
		return Ignored("malformed equip")
	}
	if err := p.Equip(in.ItemID, r.items); err != nil {
		if errors.Is(err, ErrUnknownItem) {
			return Rejected("unknown item " + in.ItemID)
		}
		return Rejected(err.Error())
	}
	return Accepted()
}

func (r *Room) handleUnequip(p *PlayerSession) Outcome {
	p.Unequip()
	return Accepted()
}
