package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/gridfleet/seabattle/internal/model"
)

// Scheduler arms one delayed bot move per game. Scheduling again for the
// same game replaces the pending timer, so the bot never queues more
// than one move. The fired callback runs on the clock's timer goroutine
// and must re-validate game state itself; by the time it runs, the game
// may have finished or been forfeited.
type Scheduler struct {
	clock  quartz.Clock
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	timers map[model.GameID]*quartz.Timer
}

// NewScheduler creates a scheduler firing bot moves after the given delay
func NewScheduler(clock quartz.Clock, delay time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		delay:  delay,
		logger: logger,
		timers: make(map[model.GameID]*quartz.Timer),
	}
}

// Schedule arms (or re-arms) the bot move for the given game
func (s *Scheduler) Schedule(gameID model.GameID, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
	}

	s.logger.Debug("scheduling bot move", "game_id", gameID, "delay", s.delay)
	s.timers[gameID] = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.timers, gameID)
		s.mu.Unlock()
		fire()
	})
}

// Cancel drops any pending bot move for the given game
func (s *Scheduler) Cancel(gameID model.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
		delete(s.timers, gameID)
	}
}

// Pending reports whether a bot move is armed for the given game
func (s *Scheduler) Pending(gameID model.GameID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[gameID]
	return ok
}
