package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	maxScoreScript string
	popMinScript   string
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		maxScoreScript: rc.ScriptLoad(context.Background(), `
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return nextScore
		`).Val(),
		popMinScript: rc.ScriptLoad(context.Background(), `
			local head = redis.call('ZRANGE', KEYS[1], 0, 0)
			if #head == 0 then
				return nil
			end
			redis.call('ZREM', KEYS[1], head[1])
			return head[1]
		`).Val(),
	}
}
