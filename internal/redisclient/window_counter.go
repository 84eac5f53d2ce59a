package redisclient

import (
	"context"
	"fmt"
	"time"
)

// Hit implements a fixed-window counter shared by every API instance. The
// first hit in a window sets the key's expiry.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := c.redisdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate counter %s: %w", key, err)
	}

	count := incr.Val()
	ttl := pttl.Val()

	// new key, or one left without expiry by a crash between INCR and PEXPIRE
	if count == 1 || ttl < 0 {
		if err := c.redisdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("rate counter expiry %s: %w", key, err)
		}
		ttl = window
	}

	return count, ttl, nil
}
