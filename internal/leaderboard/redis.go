package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mathdrill:board:"

// tieSpan splits a sorted-set score into points (high part) and a
// tie-breaker that favours whoever reached the score first (low part).
// Points must stay below 2^53 / tieSpan for the encoding to be exact.
const tieSpan = 1e10

// Standing is one row written to a Redis board.
type Standing struct {
	UID                string
	Username           string
	Score              int
	CompletedExercises int
	// ReachedAt orders equal scores; earlier ranks higher.
	ReachedAt time.Time
}

// RedisBoard keeps boards as sorted sets: member uid, score encoded from
// points and ReachedAt. Usernames and exercise counts live in side hashes.
//
//	ZSET mathdrill:board:{board}            uid -> encoded score
//	HASH mathdrill:board:{board}:names      uid -> username
//	HASH mathdrill:board:{board}:exercises  uid -> completed exercises
type RedisBoard struct {
	client *redis.Client
}

// NewRedisBoard wraps an existing client.
func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func encodeScore(points int, reachedAt time.Time) float64 {
	slot := reachedAt.Unix()
	if slot < 0 {
		slot = 0
	}
	return float64(points)*tieSpan + float64(int64(tieSpan)-1-slot)
}

func decodePoints(score float64) int {
	return int(math.Floor(score / tieSpan))
}

func namesKey(key string) string     { return key + ":names" }
func exercisesKey(key string) string { return key + ":exercises" }

// Exists reports whether the board has been materialized.
func (b *RedisBoard) Exists(ctx context.Context, key string) (bool, error) {
	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("board exists: %w", err)
	}
	return n > 0, nil
}

// Set writes absolute values for one user. Writing the same standing twice
// is harmless.
func (b *RedisBoard) Set(ctx context.Context, key string, s Standing, ttl time.Duration) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: encodeScore(s.Score, s.ReachedAt), Member: s.UID})
		p.HSet(ctx, namesKey(key), s.UID, s.Username)
		p.HSet(ctx, exercisesKey(key), s.UID, s.CompletedExercises)
		if ttl > 0 {
			p.Expire(ctx, key, ttl)
			p.Expire(ctx, namesKey(key), ttl)
			p.Expire(ctx, exercisesKey(key), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set standing: %w", err)
	}
	return nil
}

// Replace atomically swaps the whole board for rows.
func (b *RedisBoard) Replace(ctx context.Context, key string, rows []Standing, ttl time.Duration) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key, namesKey(key), exercisesKey(key))
		if len(rows) == 0 {
			return nil
		}
		zs := make([]redis.Z, len(rows))
		names := make([]any, 0, 2*len(rows))
		counts := make([]any, 0, 2*len(rows))
		for i, s := range rows {
			zs[i] = redis.Z{Score: encodeScore(s.Score, s.ReachedAt), Member: s.UID}
			names = append(names, s.UID, s.Username)
			counts = append(counts, s.UID, s.CompletedExercises)
		}
		p.ZAdd(ctx, key, zs...)
		p.HSet(ctx, namesKey(key), names...)
		p.HSet(ctx, exercisesKey(key), counts...)
		if ttl > 0 {
			p.Expire(ctx, key, ttl)
			p.Expire(ctx, namesKey(key), ttl)
			p.Expire(ctx, exercisesKey(key), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace board: %w", err)
	}
	return nil
}

// Top returns the first limit entries.
func (b *RedisBoard) Top(ctx context.Context, key string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	zs, err := b.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	if len(zs) == 0 {
		return nil, nil
	}

	uids := make([]string, len(zs))
	for i, z := range zs {
		uids[i] = z.Member.(string)
	}
	names, err := b.client.HMGet(ctx, namesKey(key), uids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read board names: %w", err)
	}
	counts, err := b.client.HMGet(ctx, exercisesKey(key), uids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read board exercises: %w", err)
	}

	entries := make([]Entry, len(zs))
	for i, z := range zs {
		entries[i] = Entry{
			Rank:               i + 1,
			UID:                uids[i],
			Username:           stringValue(names[i]),
			Score:              decodePoints(z.Score),
			CompletedExercises: intValue(counts[i]),
		}
	}
	return entries, nil
}

// Rank returns uid's entry and 1-based rank. ok is false when uid is not
// on the board.
func (b *RedisBoard) Rank(ctx context.Context, key, uid string) (Entry, bool, error) {
	rank, err := b.client.ZRevRank(ctx, key, uid).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read rank: %w", err)
	}
	score, err := b.client.ZScore(ctx, key, uid).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("read score: %w", err)
	}
	name, err := b.client.HGet(ctx, namesKey(key), uid).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, false, fmt.Errorf("read name: %w", err)
	}
	count, err := b.client.HGet(ctx, exercisesKey(key), uid).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, false, fmt.Errorf("read exercises: %w", err)
	}
	return Entry{
		Rank:               int(rank) + 1,
		UID:                uid,
		Username:           name,
		Score:              decodePoints(score),
		CompletedExercises: count,
	}, true, nil
}

// Clear deletes every board.
func (b *RedisBoard) Clear(ctx context.Context) error {
	iter := b.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan boards: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear boards: %w", err)
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func intValue(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
