package server

import (
	"strings"

	"github.com/sasha-s/go-deadlock"
)

// RoomManager 管理多个房间的生命周期，每张地图一个房间
type RoomManager struct {
	mu    deadlock.RWMutex
	rooms map[string]*Room
	maps  MapCatalog
	opts  RoomOptions
}

// NewRoomManager opts 作为所有房间的模板，Map 字段会被覆盖
func NewRoomManager(opts RoomOptions) *RoomManager {
	if opts.Maps == nil {
		opts.Maps = DefaultMaps
	}
	return &RoomManager{
		rooms: make(map[string]*Room),
		maps:  opts.Maps,
		opts:  opts,
	}
}

// GetOrCreateRoom 获取或创建地图对应的房间，并确保开始 Tick
// 未知地图回退到默认地图
func (m *RoomManager) GetOrCreateRoom(mapName string) *Room {
	name := m.maps.Resolve(strings.ToLower(mapName)).Name

	m.mu.RLock()
	r, ok := m.rooms[name]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		return r
	}
	opts := m.opts
	opts.Map = name
	r = NewRoom(opts)
	m.rooms[name] = r
	r.StartTicker()
	Log.Infow("room created", "room", name)
	return r
}

// Lookup 只查找已存在的房间
func (m *RoomManager) Lookup(mapName string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[strings.ToLower(mapName)]
	return r, ok
}

// Shutdown 停止所有房间并等待档案保存完成
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
