package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"giveaway-offers-backend/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Nil is returned by Get when the key does not exist.
const Nil = redis.Nil

// RedisClient is the subset of commands the backend uses. It is implemented
// by a single-node wrapper and by ShardedRedisClient.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	Close() error
}

// CreateRedisClient builds a single-node or sharded client from config and
// pings every node.
func CreateRedisClient(ctx context.Context, cfg *config.Config) (RedisClient, error) {
	if !cfg.Redis.EnableSharding {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewClient(client), nil
	}

	writeConfigs, err := parseShardConfigs(cfg.Redis.WriteShards)
	if err != nil {
		return nil, fmt.Errorf("failed to parse write shards config: %w", err)
	}

	var readConfigs []ShardConfig
	if len(cfg.Redis.ReadShards) > 0 {
		readConfigs, err = parseShardConfigs(cfg.Redis.ReadShards)
		if err != nil {
			return nil, fmt.Errorf("failed to parse read shards config: %w", err)
		}
	}

	return NewShardedRedisClient(ctx, writeConfigs, readConfigs)
}

// NewClient wraps an existing go-redis client.
func NewClient(client *redis.Client) RedisClient {
	return &redisClientWrapper{client: client}
}

type redisClientWrapper struct {
	client *redis.Client
}

func (w *redisClientWrapper) Ping(ctx context.Context) *redis.StatusCmd {
	return w.client.Ping(ctx)
}

func (w *redisClientWrapper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return w.client.Set(ctx, key, value, ttl)
}

func (w *redisClientWrapper) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	return w.client.SetNX(ctx, key, value, ttl)
}

func (w *redisClientWrapper) Get(ctx context.Context, key string) *redis.StringCmd {
	return w.client.Get(ctx, key)
}

func (w *redisClientWrapper) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return w.client.Del(ctx, keys...)
}

func (w *redisClientWrapper) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	return w.client.Exists(ctx, keys...)
}

func (w *redisClientWrapper) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	return w.client.SAdd(ctx, key, members...)
}

func (w *redisClientWrapper) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	return w.client.SMembers(ctx, key)
}

func (w *redisClientWrapper) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return w.client.Eval(ctx, script, keys, args...)
}

func (w *redisClientWrapper) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	return w.client.XAdd(ctx, a)
}

func (w *redisClientWrapper) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return w.client.XGroupCreateMkStream(ctx, stream, group, start)
}

func (w *redisClientWrapper) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	return w.client.XReadGroup(ctx, a)
}

func (w *redisClientWrapper) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	return w.client.XAck(ctx, stream, group, ids...)
}

func (w *redisClientWrapper) Close() error {
	return w.client.Close()
}

func parseShardConfigs(shardStrings []string) ([]ShardConfig, error) {
	if len(shardStrings) == 0 {
		return nil, fmt.Errorf("no shard configurations provided")
	}

	configs := make([]ShardConfig, 0, len(shardStrings))

	for i, shardStr := range shardStrings {
		parts := strings.Split(strings.TrimSpace(shardStr), ":")

		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid shard config format at index %d: %s (expected host:port[:password][:db])", i, shardStr)
		}

		sc := ShardConfig{Host: parts[0]}

		port, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid port in shard config at index %d: %s", i, shardStr)
		}
		sc.Port = port

		if len(parts) > 2 {
			sc.Password = parts[2]
		}

		if len(parts) > 3 {
			db, err := strconv.Atoi(parts[3])
			if err != nil {
				return nil, fmt.Errorf("invalid database number in shard config at index %d: %s", i, shardStr)
			}
			sc.DB = db
		}

		configs = append(configs, sc)
	}

	return configs, nil
}

// GetShardStats describes the topology for the readiness endpoint.
func GetShardStats(client RedisClient) map[string]interface{} {
	if shardedClient, ok := client.(*ShardedRedisClient); ok {
		return shardedClient.GetShardStats()
	}

	if wrapper, ok := client.(*redisClientWrapper); ok {
		return map[string]interface{}{
			"type": "single",
			"addr": wrapper.client.Options().Addr,
		}
	}

	return map[string]interface{}{
		"type": "unknown",
	}
}
