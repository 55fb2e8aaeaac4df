package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) roomFromQuery(r *http.Request) *Room {
	name := r.URL.Query().Get("room")
	if name == "" {
		name = s.cfg.DefaultMap
	}
	return s.rooms.GetOrCreateRoom(name)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间参数的读取与更新（热更新基本规则）
// GET /admin/config?room=hub  返回当前参数
// POST /admin/config?room=hub 以 JSON 载荷更新部分字段，在下一次 Tick 生效
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromQuery(r)

	switch r.Method {
	case http.MethodGet:
		cur := room.Tuning()
		move := int(cur.MoveInterval.Milliseconds())
		chat := int(cur.ChatInterval.Milliseconds())
		writeJSON(w, TuningUpdate{
			MoveIntervalMs:     &move,
			ChatIntervalMs:     &chat,
			MaxCommandsPerTick: &cur.MaxCommandsPerTick,
			MaxClients:         &cur.MaxClients,
		})
	case http.MethodPost:
		var body TuningUpdate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := room.RequestTuning(body); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=hub
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromQuery(r)
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"tick":    room.TickSeq(),
		"metrics": room.Metrics().Snapshot(),
	})
}

// HandleSnapshot 输出最近一次发布的世界快照
// GET /snapshot?room=hub
func (s *Server) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	room := s.roomFromQuery(r)
	writeJSON(w, room.Snapshot())
}
