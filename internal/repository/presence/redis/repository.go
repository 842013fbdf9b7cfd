package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// addOrderedScript appends ARGV[1] with the next score so ZRANGE keeps join order.
var addOrderedScript = redis.NewScript(`
	local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	local nextScore = 1
	if #maxScore > 0 then
		nextScore = tonumber(maxScore[2]) + 1
	end
	redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return nextScore
`)

// touchScript re-adds ARGV[1] after the tail when it is missing and pushes the expiration out.
var touchScript = redis.NewScript(`
	if redis.call('ZSCORE', KEYS[1], ARGV[1]) == false then
		local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
		local nextScore = 1
		if #maxScore > 0 then
			nextScore = tonumber(maxScore[2]) + 1
		end
		redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
	end
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	return 1
`)

type repo struct {
	rc         redis.UniversalClient
	logger     *slog.Logger
	ttl        time.Duration
	addOrdered *redis.Script
	touch      *redis.Script
}

func NewRepo(rc redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:         rc,
		logger:     logger,
		ttl:        ttl,
		addOrdered: addOrderedScript,
		touch:      touchScript,
	}
}
