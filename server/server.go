package server

import "net/http"

// Server 把房间管理器、档案存储和 HTTP 入口组合在一起
type Server struct {
	cfg   Config
	store ProfileStore
	rooms *RoomManager
}

func NewServer(cfg Config, store ProfileStore) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		rooms: NewRoomManager(RoomOptions{
			Store:    store,
			Tuning:   cfg.Room.Tuning(),
			TickRate: cfg.TickRate,
		}),
	}
}

func (s *Server) Rooms() *RoomManager { return s.rooms }

// Routes 注册 WebSocket 接入与管理/监控接口
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/snapshot", s.HandleSnapshot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Shutdown 停止所有房间（在线玩家的档案会被保存）
func (s *Server) Shutdown() {
	s.rooms.Shutdown()
}
