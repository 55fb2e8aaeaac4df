package server

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrStoreClosed = errors.New("profile store closed")

// Profile 跨会话持久化的玩家档案
type Profile struct {
	ID             string   `json:"id" msgpack:"id"`
	Name           string   `json:"name" msgpack:"name"`
	ClassID        string   `json:"classId" msgpack:"classId"`
	XP             int      `json:"xp" msgpack:"xp"`
	Gold           int      `json:"gold" msgpack:"gold"`
	Inventory      []string `json:"inventory" msgpack:"inventory"`
	EquippedItemID string   `json:"equippedItemId,omitempty" msgpack:"equippedItemId,omitempty"`
}

// ProfileStore 档案存储。加入时调用一次 GetOrCreateProfile，离开时调用一次 SaveProfile
type ProfileStore interface {
	GetOrCreateProfile(ctx context.Context, name string) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
	Close() error
}

func newProfile(name string) Profile {
	return Profile{
		ID:        uuid.NewString(),
		Name:      name,
		ClassID:   defaultClassID,
		Inventory: []string{},
	}
}

func profileKey(name string) string { return strings.ToLower(name) }

// MemoryProfileStore 进程内存储，重启即丢失
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	closed   bool
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]Profile)}
}

func (s *MemoryProfileStore) GetOrCreateProfile(ctx context.Context, name string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Profile{}, ErrStoreClosed
	}
	p, ok := s.profiles[profileKey(name)]
	if !ok {
		p = newProfile(name)
		s.profiles[profileKey(name)] = p
	}
	return cloneProfile(p), nil
}

func (s *MemoryProfileStore) SaveProfile(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.profiles[profileKey(p.Name)] = cloneProfile(p)
	return nil
}

func (s *MemoryProfileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func cloneProfile(p Profile) Profile {
	p.Inventory = append([]string{}, p.Inventory...)
	return p
}

var nameFilter = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeName 只保留字母数字并截断到 16 个字符，不足 3 个字符时使用 "Hero"
func SanitizeName(raw string) string {
	safe := nameFilter.ReplaceAllString(raw, "")
	if len(safe) > 16 {
		safe = safe[:16]
	}
	if len(safe) < 3 {
		return "Hero"
	}
	return safe
}
