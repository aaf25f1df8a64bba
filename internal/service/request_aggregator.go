package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/w920801-a11y/climate-try/internal/inmemorycache"
	"github.com/w920801-a11y/climate-try/internal/orchestrator"
	"github.com/w920801-a11y/climate-try/internal/weather"
)

// FetchResult is what waiters receive for a coalesced fetch. Error carries the
// orchestrator's message verbatim; classification happens at the HTTP boundary.
type FetchResult struct {
	Snapshot *weather.Snapshot
	Error    string
}

type WeatherRequestAggregator interface {
	AddRequest(ctx context.Context, loc weather.Location) (<-chan FetchResult, error)
	ProcessQueueForTesting(loc weather.Location)
	Shutdown()
}

type locationQueue struct {
	location weather.Location
	channels []chan FetchResult
	timer    *time.Timer
	mu       sync.Mutex
}

type weatherAggregator struct {
	orchestrator   orchestrator.Orchestrator
	cache          inmemorycache.Cache
	queues         map[string]*locationQueue
	queueMutex     sync.RWMutex
	maxQueueSize   int
	maxWaitTime    time.Duration
	cacheTTL       time.Duration
	failedCacheTTL time.Duration

	quotaBreaker  *gobreaker.CircuitBreaker
	cooldownMu    sync.Mutex
	cooldownUntil time.Time
}

func NewWeatherRequestAggregator(
	orch orchestrator.Orchestrator,
	cache inmemorycache.Cache,
	maxQueueSize int,
	maxWaitTime time.Duration,
	cacheTTL time.Duration,
	failedCacheTTL time.Duration,
	quotaCooldown time.Duration,
) WeatherRequestAggregator {
	w := &weatherAggregator{
		orchestrator:   orch,
		cache:          cache,
		queues:         make(map[string]*locationQueue),
		maxQueueSize:   maxQueueSize,
		maxWaitTime:    maxWaitTime,
		cacheTTL:       cacheTTL,
		failedCacheTTL: failedCacheTTL,
	}

	w.quotaBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle-quota",
		MaxRequests: 1,
		Timeout:     quotaCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("quota breaker state change")
			if to == gobreaker.StateOpen {
				w.cooldownMu.Lock()
				w.cooldownUntil = time.Now().Add(quotaCooldown)
				w.cooldownMu.Unlock()
			}
		},
	})

	return w
}

func (w *weatherAggregator) AddRequest(ctx context.Context, loc weather.Location) (<-chan FetchResult, error) {
	// buffered so processQueue never blocks on a slow consumer
	responseChan := make(chan FetchResult, 1)

	key := loc.Key()

	if cached, exists, err := w.cache.Get(key); err == nil && exists {
		responseChan <- FetchResult{Snapshot: cached.Snapshot, Error: cached.Error}
		close(responseChan)
		return responseChan, nil
	}

	w.queueMutex.RLock()
	queue, exists := w.queues[key]
	w.queueMutex.RUnlock()

	if !exists {
		w.queueMutex.Lock()
		// double check, another goroutine may have created it
		queue, exists = w.queues[key]
		if !exists {
			queue = &locationQueue{location: loc}
			w.queues[key] = queue
		}
		w.queueMutex.Unlock()
	}

	queue.mu.Lock()
	defer queue.mu.Unlock()

	// first waiter for this location arms the flush timer
	if len(queue.channels) == 0 {
		queue.timer = time.AfterFunc(w.maxWaitTime, func() {
			w.processQueue(key)
		})
	}

	queue.channels = append(queue.channels, responseChan)

	if len(queue.channels) >= w.maxQueueSize {
		// queue is full, flush now instead of waiting for the timer
		if queue.timer != nil {
			queue.timer.Stop()
			queue.timer = nil
		}
		go w.processQueue(key)
	}

	return responseChan, nil
}

func (w *weatherAggregator) processQueue(key string) {
	var channels []chan FetchResult

	w.queueMutex.RLock()
	queue, exists := w.queues[key]
	w.queueMutex.RUnlock()

	if !exists {
		return
	}

	queue.mu.Lock()

	if len(queue.channels) == 0 {
		queue.mu.Unlock()
		return
	}

	channels = queue.channels
	queue.channels = nil
	loc := queue.location

	if queue.timer != nil {
		queue.timer.Stop()
		queue.timer = nil
	}

	queue.mu.Unlock()

	w.queueMutex.Lock()
	delete(w.queues, key)
	w.queueMutex.Unlock()

	snapshot, fetchErr := w.fetchThroughBreaker(loc)

	result := FetchResult{Snapshot: snapshot}
	if fetchErr != nil {
		result.Error = fetchErr.Error()
	}

	ttl := w.cacheTTL
	cacheData := &inmemorycache.SnapshotCacheData{Snapshot: snapshot, Error: result.Error}
	if fetchErr != nil {
		ttl = w.failedCacheTTL
	}
	if err := w.cache.Set(key, cacheData, ttl); err != nil {
		log.Error().Err(err).Str("location", key).Msg("failed to cache fetch outcome")
	}

	for _, ch := range channels {
		ch <- result
		close(ch)
	}
}

// fetchThroughBreaker runs the orchestrator behind the quota breaker. Only
// quota-style failures count against the breaker; everything else passes
// through without affecting its state.
func (w *weatherAggregator) fetchThroughBreaker(loc weather.Location) (*weather.Snapshot, error) {
	type outcome struct {
		snapshot *weather.Snapshot
		err      error
	}

	result, err := w.quotaBreaker.Execute(func() (interface{}, error) {
		snapshot, fetchErr := w.orchestrator.FetchWeather(context.Background(), loc, true)
		if fetchErr != nil && isQuotaError(fetchErr) {
			return nil, fetchErr
		}
		return outcome{snapshot: snapshot, err: fetchErr}, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("oracle quota cooldown active, try again in %ds", w.cooldownSeconds())
		}
		return nil, err
	}

	o := result.(outcome)
	return o.snapshot, o.err
}

func (w *weatherAggregator) cooldownSeconds() int {
	w.cooldownMu.Lock()
	defer w.cooldownMu.Unlock()

	remaining := int(time.Until(w.cooldownUntil).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// isQuotaError detects rate limiting from the oracle's error text so the
// breaker only trips on quota exhaustion, not on transient or setup failures.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

func (w *weatherAggregator) Shutdown() {
	w.queueMutex.Lock()
	defer w.queueMutex.Unlock()

	for _, queue := range w.queues {
		queue.mu.Lock()

		if queue.timer != nil {
			queue.timer.Stop()
		}

		for _, ch := range queue.channels {
			close(ch)
		}

		queue.mu.Unlock()
	}

	w.queues = make(map[string]*locationQueue)
}

func (w *weatherAggregator) ProcessQueueForTesting(loc weather.Location) {
	w.processQueue(loc.Key())
}
