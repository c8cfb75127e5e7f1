package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rosterd/internal/model"
)

// StaffLister lists the staff worth warming. Implemented by *db.DB.
type StaffLister interface {
	ListActiveStaff(ctx context.Context, date time.Time) ([]model.Staff, error)
}

// Warmer periodically resolves the current and following settable week for
// every active staff member, priming the day-schedule cache the admin panel
// reads from.
type Warmer struct {
	resolver *Resolver
	staff    StaffLister
	interval time.Duration
	logger   zerolog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewWarmer creates a cache warmer. interval <= 0 defaults to one hour.
func NewWarmer(resolver *Resolver, staff StaffLister, interval time.Duration, logger zerolog.Logger) *Warmer {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Warmer{
		resolver: resolver,
		staff:    staff,
		interval: interval,
		logger:   logger.With().Str("component", "schedule_warmer").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the warm loop with an immediate first pass.
func (w *Warmer) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop()
	w.logger.Info().Dur("interval", w.interval).Msg("cache warmer started")
}

// Stop gracefully stops the warm loop.
func (w *Warmer) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info().Msg("cache warmer stopped")
}

func (w *Warmer) loop() {
	defer w.wg.Done()

	w.WarmOnce(context.Background())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.WarmOnce(context.Background())
		}
	}
}

// WarmOnce resolves fourteen days of schedule per active staff member:
// the settable week containing today plus the week after it.
func (w *Warmer) WarmOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	now := time.Now()
	staff, err := w.staff.ListActiveStaff(ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("list staff for warm pass")
		return
	}

	thisWeek := WeekKey(now)
	dates := append(WeekDates(thisWeek), WeekDates(thisWeek.AddDate(0, 0, 7))...)

	var warmed int
	for _, s := range staff {
		for _, date := range dates {
			if _, err := w.resolver.Resolve(ctx, s.ID, date); err != nil {
				w.logger.Warn().Err(err).Str("staff_id", s.ID).Time("date", date).Msg("warm resolve failed")
				continue
			}
			warmed++
		}
	}
	w.logger.Debug().Int("staff", len(staff)).Int("days", warmed).Msg("warm pass complete")
}
