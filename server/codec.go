package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrEmptyType = errors.New("message type is required")

// Envelope 出站消息：{"type":"state","payload":{...}}
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Codec 连接级的线格式。同一房间内可以混用不同编码的客户端
type Codec interface {
	Name() string
	FrameType() int
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	DecodeCommand(data []byte) (Command, error)
}

// CodecByName 未知名称回退到 JSON
func CodecByName(name string) Codec {
	if strings.EqualFold(name, "msgpack") {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// JSONCodec 文本帧
type JSONCodec struct{}

func (JSONCodec) Name() string   { return "json" }
func (JSONCodec) FrameType() int { return websocket.TextMessage }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (c JSONCodec) DecodeCommand(data []byte) (Command, error) {
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Command{}, err
	}
	if env.Type == "" {
		return Command{}, ErrEmptyType
	}
	return Command{Type: strings.ToLower(env.Type), Payload: env.Payload, codec: c}, nil
}

// MsgpackCodec 二进制帧，字段名沿用 json 标签
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string   { return "msgpack" }
func (MsgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c MsgpackCodec) DecodeCommand(data []byte) (Command, error) {
	var env struct {
		Type    string             `json:"type"`
		Payload msgpack.RawMessage `json:"payload"`
	}
	if err := c.Unmarshal(data, &env); err != nil {
		return Command{}, err
	}
	if env.Type == "" {
		return Command{}, ErrEmptyType
	}
	return Command{Type: strings.ToLower(env.Type), Payload: env.Payload, codec: c}, nil
}
