package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/domain"
	"github.com/osmosis-labs/poolrouter/log"
	"github.com/osmosis-labs/poolrouter/sqsutil/datafetchers"
)

// NumPoolsWatcher polls the pool count and notifies listeners when it changes.
type NumPoolsWatcher struct {
	client   domain.PoolsClient
	interval time.Duration
	logger   log.Logger

	mu        sync.Mutex
	listeners []domain.NumPoolsListener
	last      uint64
	fetcher   *datafetchers.IntervalFetcher[uint64]
}

// NewNumPoolsWatcher returns a watcher polling client every interval. Call Start to begin polling.
func NewNumPoolsWatcher(client domain.PoolsClient, interval time.Duration, logger log.Logger) *NumPoolsWatcher {
	return &NumPoolsWatcher{
		client:   client,
		interval: interval,
		logger:   logger,
	}
}

// RegisterListener registers a listener notified on every pool count change.
func (w *NumPoolsWatcher) RegisterListener(listener domain.NumPoolsListener) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.listeners = append(w.listeners, listener)
}

// Start begins polling until ctx is canceled or Stop is called.
func (w *NumPoolsWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fetcher != nil {
		return
	}

	w.fetcher = datafetchers.NewIntervalFetcher(ctx, w.client.GetNumPools, w.interval, w.onNumPools)
}

// GetNumPools returns the last polled pool count.
func (w *NumPoolsWatcher) GetNumPools() (uint64, time.Time, error) {
	w.mu.Lock()
	fetcher := w.fetcher
	w.mu.Unlock()

	if fetcher == nil {
		return 0, time.Time{}, datafetchers.ErrNoValueRetrieved
	}
	return fetcher.Get()
}

// Stop stops polling and waits for an in-progress poll to return.
func (w *NumPoolsWatcher) Stop() {
	w.mu.Lock()
	fetcher := w.fetcher
	w.mu.Unlock()

	if fetcher != nil {
		fetcher.Close()
	}
}

func (w *NumPoolsWatcher) onNumPools(ctx context.Context, numPools uint64) {
	w.mu.Lock()
	if numPools == w.last {
		w.mu.Unlock()
		return
	}
	w.last = numPools
	listeners := make([]domain.NumPoolsListener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	w.logger.Debug("pool count changed", zap.Uint64("num_pools", numPools))

	for _, listener := range listeners {
		if err := listener.OnNumPoolsUpdate(ctx, numPools); err != nil {
			w.logger.Error("num pools listener failed", zap.Uint64("num_pools", numPools), zap.Error(err))
		}
	}
}
