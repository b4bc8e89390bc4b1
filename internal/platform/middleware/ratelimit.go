// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// ipLimiters holds one token bucket per client IP.
type ipLimiters struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   rate.Limit
	burst   int
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{buckets: make(map[string]*ipBucket), limit: limit, burst: burst}
}

// reserve takes a token for ip and reports how long the caller must wait.
// A zero delay means the request may proceed.
func (limiters *ipLimiters) reserve(ip string, now time.Time) time.Duration {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()

	bucket, found := limiters.buckets[ip]
	if !found {
		bucket = &ipBucket{limiter: rate.NewLimiter(limiters.limit, limiters.burst)}
		limiters.buckets[ip] = bucket
	}
	bucket.lastSeen = now

	reservation := bucket.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return delay
	}
	return 0
}

// sweep forgets clients idle for longer than ttl.
func (limiters *ipLimiters) sweep(now time.Time, ttl time.Duration) {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()

	for ip, bucket := range limiters.buckets {
		if now.Sub(bucket.lastSeen) > ttl {
			delete(limiters.buckets, ip)
		}
	}
}

// RateLimit applies a per-IP token bucket. Rejected requests get 429 with a
// Retry-After header. Idle entries are swept until context is cancelled.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	limiters := newIPLimiters(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst)

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				limiters.sweep(now, constants.RateLimitClientTTL)
			case <-context.Done():
				return
			}
		}
	}()

	return limiters.middleware
}

func (limiters *ipLimiters) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if delay := limiters.reserve(RealIP(request), time.Now()); delay > 0 {
			retryAfter := int(math.Ceil(delay.Seconds()))
			writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respond.Error(writer, request, apperr.RateLimited(retryAfter))
			return
		}

		next.ServeHTTP(writer, request)
	})
}
