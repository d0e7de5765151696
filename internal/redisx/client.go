// Package redisx wraps the go-redis client with the lazy, self-healing
// connection discipline shared by the status store, the notification bus
// and the work queue. The handle is safe for concurrent use and can be
// rebuilt after a connection failure without restarting the process.
package redisx

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	url string
	mu  sync.Mutex
	rdb *redis.Client
}

func New(url string) *Client {
	return &Client{url: url}
}

// Ensure returns a live client. A client that fails its liveness ping is
// discarded and recreated once before the error is reported.
func (c *Client) Ensure(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb != nil {
		if err := c.rdb.Ping(ctx).Err(); err == nil {
			return c.rdb, nil
		}
		c.rdb.Close()
		c.rdb = nil
	}

	rdb, err := c.dial()
	if err != nil {
		return nil, err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	c.rdb = rdb
	return c.rdb, nil
}

func (c *Client) dial() (*redis.Client, error) {
	opt, err := redis.ParseURL(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	return err
}
