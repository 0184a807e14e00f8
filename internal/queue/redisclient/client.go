package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Dequeue when the block timeout elapses with no job.
var ErrEmpty = errors.New("queue empty")

type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// Client is a thin list-based queue on top of redis: LPUSH to enqueue,
// BRPOP to consume, so jobs come out in FIFO order.
type Client struct {
	redisdb *redis.Client
	queue   string
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  0, // BRPOP blocks; per-call deadlines come from ctx
		WriteTimeout: 2 * time.Second,
	})

	return &Client{
		redisdb: redisdb,
		queue:   cfg.Queue,
	}
}

func (c *Client) Enqueue(ctx context.Context, payload []byte) error {
	return c.redisdb.LPush(ctx, c.queue, payload).Err()
}

// Dequeue blocks up to `block` waiting for the next job.
func (c *Client) Dequeue(ctx context.Context, block time.Duration) ([]byte, error) {
	res, err := c.redisdb.BRPop(ctx, block, c.queue).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}

	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, ErrEmpty
	}

	return []byte(res[1]), nil
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// this closes the client

func (c *Client) Close() error {
	return c.redisdb.Close()
}
