package redis

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

type ShardConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ShardedRedisClient spreads keys over several nodes by FNV hash. Reads of
// plain values may go to read replicas, which is why participation writes
// are verified by reading back. Lock and stream commands always use the
// write shard owning the key.
type ShardedRedisClient struct {
	writeShards []*redis.Client
	readShards  []*redis.Client
	shardCount  int
}

func NewShardedRedisClient(ctx context.Context, writeConfigs, readConfigs []ShardConfig) (*ShardedRedisClient, error) {
	if len(writeConfigs) == 0 {
		return nil, fmt.Errorf("at least one write shard is required")
	}

	client := &ShardedRedisClient{
		writeShards: make([]*redis.Client, 0, len(writeConfigs)),
		readShards:  make([]*redis.Client, 0, len(readConfigs)),
		shardCount:  len(writeConfigs),
	}

	for i, sc := range writeConfigs {
		shard := newShard(sc)
		client.writeShards = append(client.writeShards, shard)
		if err := shard.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to write shard %d: %w", i, err)
		}
	}

	for i, sc := range readConfigs {
		shard := newShard(sc)
		client.readShards = append(client.readShards, shard)
		if err := shard.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to read shard %d: %w", i, err)
		}
	}

	return client, nil
}

func newShard(sc ShardConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", sc.Host, sc.Port),
		Password: sc.Password,
		DB:       sc.DB,
	})
}

func (c *ShardedRedisClient) getShardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(c.shardCount))
}

func (c *ShardedRedisClient) getWriteShard(key string) *redis.Client {
	return c.writeShards[c.getShardIndex(key)]
}

func (c *ShardedRedisClient) getReadShard(key string) *redis.Client {
	if len(c.readShards) == 0 {
		return c.getWriteShard(key)
	}
	return c.readShards[c.getShardIndex(key)%len(c.readShards)]
}

func (c *ShardedRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	for _, shard := range c.getAllShards() {
		if cmd := shard.Ping(ctx); cmd.Err() != nil {
			return cmd
		}
	}
	result := redis.NewStatusCmd(ctx, "ping")
	result.SetVal("PONG")
	return result
}

func (c *ShardedRedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	return c.getWriteShard(key).Set(ctx, key, value, ttl)
}

func (c *ShardedRedisClient) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	return c.getWriteShard(key).SetNX(ctx, key, value, ttl)
}

func (c *ShardedRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.getReadShard(key).Get(ctx, key)
}

func (c *ShardedRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if len(keys) == 0 {
		return redis.NewIntCmd(ctx, "del")
	}

	shardKeys := make(map[*redis.Client][]string)
	for _, key := range keys {
		shard := c.getWriteShard(key)
		shardKeys[shard] = append(shardKeys[shard], key)
	}

	var total int64
	for shard, list := range shardKeys {
		cmd := shard.Del(ctx, list...)
		if cmd.Err() != nil {
			return cmd
		}
		total += cmd.Val()
	}

	result := redis.NewIntCmd(ctx, "del")
	result.SetVal(total)
	return result
}

// Exists is used for in-flight marks, so it reads from the write shard.
func (c *ShardedRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	var total int64
	for _, key := range keys {
		cmd := c.getWriteShard(key).Exists(ctx, key)
		if cmd.Err() != nil {
			return cmd
		}
		total += cmd.Val()
	}
	result := redis.NewIntCmd(ctx, "exists")
	result.SetVal(total)
	return result
}

func (c *ShardedRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	return c.getWriteShard(key).SAdd(ctx, key, members...)
}

func (c *ShardedRedisClient) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	return c.getReadShard(key).SMembers(ctx, key)
}

// Eval runs the script on the shard owning keys[0]. Scripts must only touch
// keys living on one shard.
func (c *ShardedRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	if len(keys) == 0 {
		cmd := redis.NewCmd(ctx, "eval")
		cmd.SetErr(fmt.Errorf("sharded eval requires at least one key"))
		return cmd
	}
	return c.getWriteShard(keys[0]).Eval(ctx, script, keys, args...)
}

func (c *ShardedRedisClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	return c.getWriteShard(a.Stream).XAdd(ctx, a)
}

func (c *ShardedRedisClient) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return c.getWriteShard(stream).XGroupCreateMkStream(ctx, stream, group, start)
}

// XReadGroup routes by the first stream name; all streams in one call must
// hash to the same shard.
func (c *ShardedRedisClient) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	if len(a.Streams) == 0 {
		cmd := redis.NewXStreamSliceCmd(ctx, "xreadgroup")
		cmd.SetErr(fmt.Errorf("xreadgroup requires a stream"))
		return cmd
	}
	return c.getWriteShard(a.Streams[0]).XReadGroup(ctx, a)
}

func (c *ShardedRedisClient) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	return c.getWriteShard(stream).XAck(ctx, stream, group, ids...)
}

func (c *ShardedRedisClient) getAllShards() []*redis.Client {
	shards := make([]*redis.Client, 0, len(c.writeShards)+len(c.readShards))
	shards = append(shards, c.writeShards...)
	shards = append(shards, c.readShards...)
	return shards
}

func (c *ShardedRedisClient) Close() error {
	var lastErr error
	for _, shard := range c.getAllShards() {
		if err := shard.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *ShardedRedisClient) GetShardStats() map[string]interface{} {
	addrs := func(shards []*redis.Client) []string {
		out := make([]string, len(shards))
		for i, shard := range shards {
			out[i] = shard.Options().Addr
		}
		return out
	}

	return map[string]interface{}{
		"type":         "sharded",
		"write_shards": addrs(c.writeShards),
		"read_shards":  addrs(c.readShards),
		"total_shards": c.shardCount,
	}
}
