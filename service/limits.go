package service

import (
	"sync"
	"time"

	"github.com/RussellLuo/slidingwindow"
)

func windowFunc() (slidingwindow.Window, slidingwindow.StopFunc) {
	return slidingwindow.NewLocalWindow()
}

// Limiters holds the write-path rate limiters for one issuer
type Limiters struct {
	PerSecond *slidingwindow.Limiter
	PerHour   *slidingwindow.Limiter
	PerDay    *slidingwindow.Limiter
}

// AllowAll takes one slot from every window, or none if any is exhausted.
func (l *Limiters) AllowAll() bool {
	if !l.PerSecond.Allow() {
		return false
	}
	if !l.PerHour.Allow() {
		return false
	}
	if !l.PerDay.Allow() {
		return false
	}
	return true
}

type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*Limiters

	perSecond int64
	perHour   int64
	perDay    int64
}

func newLimiterRegistry(perSecond, perHour, perDay int64) *limiterRegistry {
	return &limiterRegistry{
		limiters:  make(map[string]*Limiters),
		perSecond: perSecond,
		perHour:   perHour,
		perDay:    perDay,
	}
}

// getOrCreate returns the rate limiters for an issuer, creating them if they don't exist
func (r *limiterRegistry) getOrCreate(issuer string) *Limiters {
	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[issuer]
	if !ok {
		perSec, _ := slidingwindow.NewLimiter(time.Second, r.perSecond, windowFunc)
		perHour, _ := slidingwindow.NewLimiter(time.Hour, r.perHour, windowFunc)
		perDay, _ := slidingwindow.NewLimiter(time.Hour*24, r.perDay, windowFunc)
		lim = &Limiters{
			PerSecond: perSec,
			PerHour:   perHour,
			PerDay:    perDay,
		}
		r.limiters[issuer] = lim
	}
	return lim
}
