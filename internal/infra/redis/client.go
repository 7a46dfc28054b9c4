// Package redis provides the hot-data collaborators backed by Redis: the
// last-known-location cache and the dispatch event channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loadline/dispatch/internal/core/domain"
)

// EventChannel is the pub/sub channel dispatch events are published on.
const EventChannel = "dispatch.events"

// locationTTL bounds how long a stale position is served.
const locationTTL = 15 * time.Minute

// Client wraps Redis operations for the dispatch engine.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func locationKey(orgID, loadID string) string {
	return fmt.Sprintf("location:%s:%s", orgID, loadID)
}

// SetLocation records the latest position for a load.
func (c *Client) SetLocation(ctx context.Context, orgID, loadID string, lat, lng float64) error {
	key := locationKey(orgID, loadID)
	if err := c.rdb.HSet(ctx, key,
		"lat", lat,
		"lng", lng,
		"at", time.Now().Unix(),
	).Err(); err != nil {
		return fmt.Errorf("failed to set location: %w", err)
	}
	if err := c.rdb.Expire(ctx, key, locationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set location ttl: %w", err)
	}
	return nil
}

// GetLocation retrieves the latest position for a load.
func (c *Client) GetLocation(ctx context.Context, orgID, loadID string) (float64, float64, bool, error) {
	vals, err := c.rdb.HGetAll(ctx, locationKey(orgID, loadID)).Result()
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to get location: %w", err)
	}
	if len(vals) == 0 {
		return 0, 0, false, nil
	}

	var lat, lng float64
	if _, err := fmt.Sscanf(vals["lat"], "%f", &lat); err != nil {
		return 0, 0, false, fmt.Errorf("corrupt location entry: %w", err)
	}
	if _, err := fmt.Sscanf(vals["lng"], "%f", &lng); err != nil {
		return 0, 0, false, fmt.Errorf("corrupt location entry: %w", err)
	}
	return lat, lng, true, nil
}

// Emit publishes a dispatch event on the event channel.
func (c *Client) Emit(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := c.rdb.Publish(ctx, EventChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
