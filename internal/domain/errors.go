package domain

import "errors"

var (
	// ErrInvalidJSON is returned when the JSON deal feed cannot be decoded as an array
	ErrInvalidJSON = errors.New("Invalid JSON")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrFeedUnavailable is returned when the remote deal feed cannot be fetched
	ErrFeedUnavailable = errors.New("deal feed unavailable")
)
