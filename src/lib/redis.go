package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// RevokeRoomSessions drops every guest-portal session scoped to the room.
// Invoked by check-out. This only revokes access tokens; the derived guest
// records themselves are untouched.
func RevokeRoomSessions(ctx context.Context, roomID uint) error {
	rd := GetRedisClient()
	if rd == nil {
		return fmt.Errorf("redis client unavailable")
	}
	pattern := fmt.Sprintf("session:room:%d:*", roomID)
	iter := rd.Scan(ctx, 0, pattern, 0).Iterator()
	revoked := 0
	for iter.Next(ctx) {
		if err := rd.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("[redis] Failed to revoke session %s: %s\n", iter.Val(), err.Error())
			return err
		}
		revoked++
	}
	if err := iter.Err(); err != nil {
		log.Printf("[redis] Error scanning sessions for room %d: %s\n", roomID, err.Error())
		return err
	}
	log.Printf("[redis] Revoked %d guest session(s) for room %d\n", revoked, roomID)
	return nil
}
