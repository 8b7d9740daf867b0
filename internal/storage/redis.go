package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/olivierg1729/jobfinder/internal/models"
)

const (
	seenSetKey       = "jobfinder:seen_offers"
	searchIndexKey   = "jobfinder:saved_searches"
	searchDedupeKey  = "jobfinder:saved_search_pairs"
	searchHashPrefix = "jobfinder:saved_search:"
)

// RedisStore keeps saved searches and the seen set in Redis: a SET of
// identity keys, a hash per saved search, and a sorted set indexing
// searches by creation time for newest-first listing.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) CreateSearch(ctx context.Context, search models.SavedSearch) (models.SavedSearch, error) {
	pair := search.Query + "|" + search.Email
	added, err := s.rdb.SAdd(ctx, searchDedupeKey, pair).Result()
	if err != nil {
		return models.SavedSearch{}, fmt.Errorf("dedupe saved search: %w", err)
	}
	if added == 0 {
		return models.SavedSearch{}, models.ErrSearchExists
	}

	search.ID = uuid.NewString()
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, searchHashPrefix+search.ID, "query", search.Query, "email", search.Email)
	pipe.ZAdd(ctx, searchIndexKey, redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: search.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return models.SavedSearch{}, fmt.Errorf("store saved search: %w", err)
	}
	return search, nil
}

func (s *RedisStore) ListSearches(ctx context.Context) ([]models.SavedSearch, error) {
	ids, err := s.rdb.ZRevRange(ctx, searchIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}

	var searches []models.SavedSearch
	for _, id := range ids {
		fields, err := s.rdb.HGetAll(ctx, searchHashPrefix+id).Result()
		if err != nil {
			return nil, fmt.Errorf("read saved search %s: %w", id, err)
		}
		if len(fields) == 0 {
			continue
		}
		searches = append(searches, models.SavedSearch{
			ID:    id,
			Query: fields["query"],
			Email: fields["email"],
		})
	}
	return searches, nil
}

func (s *RedisStore) Unseen(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	present, err := s.rdb.SMIsMember(ctx, seenSetKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("read seen set: %w", err)
	}
	return filterUnseen(keys, present), nil
}

// filterUnseen keeps the keys whose membership probe came back false,
// preserving input order. present is positionally aligned with keys.
func filterUnseen(keys []string, present []bool) []string {
	var unseen []string
	for i, seen := range present {
		if i >= len(keys) {
			break
		}
		if !seen {
			unseen = append(unseen, keys[i])
		}
	}
	return unseen
}

func (s *RedisStore) MarkSeen(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	if err := s.rdb.SAdd(ctx, seenSetKey, members...).Err(); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}
