// Package redis wraps go-redis with the typed, shared-context convention
// the bus telemetry sink (pkg/telemetry) publishes frame and bus-stats
// events through.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client is a thin, typed wrapper over *redis.Client sharing one
// background context, the shape pkg/service's original Redis helpers used
// before most of their vehicle-specific methods (GetStateInt's
// standby/parked/ready-to-drive string mapping, the BRPop command queue,
// and friends) were trimmed as having no bus-telemetry use.
type Client struct {
	client *redis.Client
	ctx    context.Context
}

// New connects to addr and verifies the connection with a PING.
func New(addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: connect to %s: %w", addr, err)
	}

	return &Client{client: client, ctx: ctx}, nil
}

// WriteInt stores an integer field in the hash at key.
func (c *Client) WriteInt(key, field string, value int) error {
	return c.client.HSet(c.ctx, key, field, value).Err()
}

// GetInt reads an integer field from the hash at key.
func (c *Client) GetInt(key, field string) (int, error) {
	return c.client.HGet(c.ctx, key, field).Int()
}

// Publish publishes message on channel.
func (c *Client) Publish(channel, message string) error {
	return c.client.Publish(c.ctx, channel, message).Err()
}

// Subscribe subscribes to channel, returning a receive-only message
// channel and a cancel function that must be called to release it.
func (c *Client) Subscribe(channel string) (<-chan *redis.Message, func()) {
	pubsub := c.client.Subscribe(c.ctx, channel)
	return pubsub.Channel(), func() { pubsub.Close() }
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
