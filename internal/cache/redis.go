package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// feedTTL bounds staleness for cached feed pages.
const feedTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
}

// Connect builds a Redis-backed cache from environment settings.
func Connect() (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func feedKey(viewerID uint) string {
	return fmt.Sprintf("feed:%d", viewerID)
}

// SetFeed caches the first feed page for a viewer with a 5-minute TTL.
func (c *Cache) SetFeed(viewerID uint, page any) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(context.Background(), feedKey(viewerID), payload, feedTTL).Err()
}

// GetFeed loads a cached feed page into out. Returns redis.Nil on a miss.
func (c *Cache) GetFeed(viewerID uint, out any) error {
	payload, err := c.client.Get(context.Background(), feedKey(viewerID)).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(payload), out)
}

// InvalidateFeed drops a viewer's cached feed page, e.g. after the viewer's
// follow set changes.
func (c *Cache) InvalidateFeed(viewerID uint) error {
	return c.client.Del(context.Background(), feedKey(viewerID)).Err()
}
