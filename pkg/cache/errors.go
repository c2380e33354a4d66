package cache

import "errors"

var (
	ErrEncode                       = errors.New("cache.encode_failed")
	ErrDecode                       = errors.New("cache.decode_failed")
	ErrFailedToParseRedisConnString = errors.New("cache.redis_invalid_url")
	ErrRedisNotReady                = errors.New("cache.redis_not_ready")
	ErrHealthcheckFailed            = errors.New("cache.redis_healthcheck_failed")
)
