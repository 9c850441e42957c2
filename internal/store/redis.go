package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ranks-app/internal/model"
)

const (
	keyRegions     = "roster:regions"
	keyPlayers     = "roster:players"
	keyPlayerByID  = "roster:players:by-id"
	redisOpTimeout = 5 * time.Second
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisOptions struct {
	// TTL expires the snapshot keys; zero keeps them until the next replace.
	TTL time.Duration
}

func NewRedisStore(url string, opts RedisOptions) (*RedisStore, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("redis url is required")
	}
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(ropts)
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: opts.TTL}, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) ListRegions() []model.Region {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	regions := []model.Region{}
	raw, err := s.rdb.Get(ctx, keyRegions).Bytes()
	if err != nil {
		return regions
	}
	if err := json.Unmarshal(raw, &regions); err != nil || regions == nil {
		return []model.Region{}
	}
	return regions
}

func (s *RedisStore) ReplaceRegions(regions []model.Region) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := json.Marshal(dedupeRegions(regions))
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyRegions, raw, s.ttl).Err()
}

func (s *RedisStore) ListPlayers() []model.Player {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	players := []model.Player{}
	raw, err := s.rdb.Get(ctx, keyPlayers).Bytes()
	if err != nil {
		return players
	}
	if err := json.Unmarshal(raw, &players); err != nil || players == nil {
		return []model.Player{}
	}
	return players
}

func (s *RedisStore) GetPlayer(id string) (model.Player, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := s.rdb.HGet(ctx, keyPlayerByID, id).Bytes()
	if err != nil {
		return model.Player{}, false
	}
	var p model.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Player{}, false
	}
	return p, true
}

// ReplacePlayers swaps the list and the id index in one MULTI block so
// readers never see one without the other.
func (s *RedisStore) ReplacePlayers(players []model.Player) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	players = dedupePlayers(players)
	raw, err := json.Marshal(players)
	if err != nil {
		return err
	}
	byID := make(map[string]any, len(players))
	for _, p := range players {
		pr, err := json.Marshal(p)
		if err != nil {
			return err
		}
		byID[p.ID] = pr
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPlayers, raw, s.ttl)
		pipe.Del(ctx, keyPlayerByID)
		if len(byID) > 0 {
			pipe.HSet(ctx, keyPlayerByID, byID)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyPlayerByID, s.ttl)
			}
		}
		return nil
	})
	return err
}
