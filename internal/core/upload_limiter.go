package core

// upload_limiter.go bounds how many contact files are parsed at once.
//
// Parsing holds a whole file's contacts in memory, so the HTTP layer and the
// service share one semaphore. A request that cannot get a slot within
// maxWait fails with ErrTooManyUploads instead of queueing forever.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when every slot stayed busy for maxWait.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

const (
	DefaultMaxConcurrentUploads = 5
	DefaultMaxWaitTime          = 30 * time.Second
)

// UploadLimiter is a counting semaphore with a bounded wait.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
	total   atomic.Int64
	refused atomic.Int64
}

// NewUploadLimiter allows maxConcurrent holders at once. Non-positive
// arguments fall back to the defaults.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. It returns ctx.Err() if ctx ends first and
// ErrTooManyUploads if maxWait passes. Every nil return must be paired with
// one Release.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		l.total.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		l.refused.Add(1)
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *UploadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		l.total.Add(1)
		return true
	default:
		l.refused.Add(1)
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

func (l *UploadLimiter) ActiveCount() int   { return int(l.active.Load()) }
func (l *UploadLimiter) MaxConcurrent() int { return cap(l.slots) }
func (l *UploadLimiter) Available() int     { return cap(l.slots) - len(l.slots) }

// WaitForDrain blocks until no slot is held or ctx ends. Used on shutdown.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// UploadLimiterStatus is a point-in-time view of the limiter.
type UploadLimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Served        int64 `json:"served"`
	Refused       int64 `json:"refused"`
}

func (l *UploadLimiter) Status() UploadLimiterStatus {
	return UploadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
		Served:        l.total.Load(),
		Refused:       l.refused.Load(),
	}
}
