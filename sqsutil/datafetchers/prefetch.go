package datafetchers

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Fetcher is an interface that provides a method to get a value.
type Fetcher[T any] interface {
	Get() (T, time.Time, error)
	GetRefetchInterval() time.Duration
}

// IntervalFetcher is a struct that prefetches a value at a given interval
// and provides a method to get the latest value.
// NOTE: It may return stale data if the update function takes longer than the interval.
type IntervalFetcher[T any] struct {
	updateFn func(ctx context.Context) (T, error)
	onUpdate func(ctx context.Context, value T)
	interval time.Duration

	lastRetrievedTime time.Time
	cache             T
	hasClosed         bool
	firstFetchChan    chan struct{}
	firstFetchOnce    sync.Once
	cancel            context.CancelFunc
	done              chan struct{}
	mutex             sync.RWMutex
}

var (
	ErrNoValueRetrieved = errors.New("no cached value has ever been retrieved")
	ErrFetcherClosed    = errors.New("prefetcher has been closed")
)

// NewIntervalFetcher starts fetching immediately and then every interval until
// ctx is canceled or Close is called.
// onUpdate, if non-nil, is called synchronously after each successful fetch.
func NewIntervalFetcher[T any](ctx context.Context, updateFn func(ctx context.Context) (T, error), interval time.Duration, onUpdate func(ctx context.Context, value T)) *IntervalFetcher[T] {
	if interval <= 0 {
		panic("interval must be greater than 0")
	}

	ctx, cancel := context.WithCancel(ctx)

	prefetcher := &IntervalFetcher[T]{
		updateFn:       updateFn,
		onUpdate:       onUpdate,
		interval:       interval,
		firstFetchChan: make(chan struct{}),
		cancel:         cancel,
		done:           make(chan struct{}),
	}

	go prefetcher.startTimer(ctx)

	return prefetcher
}

func (p *IntervalFetcher[T]) startTimer(ctx context.Context) {
	defer close(p.done)

	p.prefetch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prefetch(ctx)
		}
	}
}

func (p *IntervalFetcher[T]) prefetch(ctx context.Context) {
	newValue, err := p.updateFn(ctx)
	if err != nil {
		// By silently skipping the error, the values would become stale,
		// signaling that to the client.
		return
	}

	p.mutex.Lock()
	p.lastRetrievedTime = time.Now()
	p.cache = newValue
	p.mutex.Unlock()

	p.firstFetchOnce.Do(func() { close(p.firstFetchChan) })

	if p.onUpdate != nil {
		p.onUpdate(ctx, newValue)
	}
}

// Get returns the latest value and the time it was last retrieved.
// If no value has ever been retrieved, it returns the zero value of T and time.Time{}.
// If p.hasClosed is true, it returns the zero value of T and time.Time{}.
func (p *IntervalFetcher[T]) Get() (T, time.Time, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if p.hasClosed {
		var zero T
		return zero, time.Time{}, ErrFetcherClosed
	}
	if p.lastRetrievedTime.IsZero() {
		return p.cache, time.Time{}, ErrNoValueRetrieved
	}

	return p.cache, p.lastRetrievedTime, nil
}

// WaitUntilFirstResult blocks until the first successful fetch or until ctx is done.
func (p *IntervalFetcher[T]) WaitUntilFirstResult(ctx context.Context) error {
	select {
	case <-p.firstFetchChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the fetch loop and waits for an in-progress fetch to return.
func (p *IntervalFetcher[T]) Close() {
	p.mutex.Lock()
	p.hasClosed = true
	p.mutex.Unlock()

	p.cancel()
	<-p.done
}

func (p *IntervalFetcher[T]) GetRefetchInterval() time.Duration {
	return p.interval
}
