package server

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var profilesBucket = []byte("profiles")

// BoltProfileStore 基于 bbolt 的本地档案存储，值用 msgpack 编码
type BoltProfileStore struct {
	db *bolt.DB
}

// OpenBoltProfileStore 打开（或创建）数据库文件
func OpenBoltProfileStore(path string) (*BoltProfileStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(profilesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltProfileStore{db: db}, nil
}

func (s *BoltProfileStore) GetOrCreateProfile(ctx context.Context, name string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	var p Profile
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(profilesBucket)
		key := []byte(profileKey(name))
		if raw := b.Get(key); raw != nil {
			if err := msgpack.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("unmarshalling profile %s: %w", name, err)
			}
			return nil
		}
		p = newProfile(name)
		raw, err := msgpack.Marshal(&p)
		if err != nil {
			return fmt.Errorf("marshalling profile: %w", err)
		}
		return b.Put(key, raw)
	})
	if err != nil {
		return Profile{}, err
	}
	if p.Inventory == nil {
		p.Inventory = []string{}
	}
	return p, nil
}

func (s *BoltProfileStore) SaveProfile(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := msgpack.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(profilesBucket).Put([]byte(profileKey(p.Name)), raw)
	})
}

func (s *BoltProfileStore) Close() error {
	return s.db.Close()
}
