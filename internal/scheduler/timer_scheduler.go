// Package scheduler provides the in-process timer that turns offer deadlines
// into expiry triggers.
//
// Every offer gets exactly one timer when it is sent. When the timer fires,
// the scheduler invokes the configured callback with the offer's identifier;
// the callback is expected to run the offer expiry flow. Resolving an offer
// before the deadline cancels its timer.
//
// Timers live in process memory only. After a restart the periodic expiry
// sweep picks up any offers whose deadline passed while no timer was armed.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ExpiryFunc is called when an offer's response deadline passes.
type ExpiryFunc func(offerID kernel.UUID)

// TimerScheduler schedules one expiry timer per outstanding offer.
// It is safe for concurrent use.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[kernel.UUID]*time.Timer
	fire   ExpiryFunc
	logger *slog.Logger
}

// NewTimerScheduler creates a scheduler that invokes fire when an offer's
// deadline passes.
func NewTimerScheduler(fire ExpiryFunc, logger *slog.Logger) *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[kernel.UUID]*time.Timer),
		fire:   fire,
		logger: logger.With("component", "offer_scheduler"),
	}
}

// Schedule arms an expiry timer for the offer. A deadline in the past fires
// immediately. Scheduling an offer that already has a timer replaces it.
func (s *TimerScheduler) Schedule(offerID kernel.UUID, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[offerID]; ok {
		existing.Stop()
	}

	s.timers[offerID] = time.AfterFunc(time.Until(expiresAt), func() {
		s.mu.Lock()
		delete(s.timers, offerID)
		s.mu.Unlock()

		s.logger.Info("offer deadline passed", "offer_id", offerID)
		s.fire(offerID)
	})
}

// Cancel disarms the offer's timer. Cancelling an unknown or already fired
// offer is a no-op.
func (s *TimerScheduler) Cancel(offerID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[offerID]; ok {
		timer.Stop()
		delete(s.timers, offerID)
	}
}

// Shutdown disarms every pending timer.
func (s *TimerScheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
