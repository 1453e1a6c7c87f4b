package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"NewsDigest/internal/ports"
)

// DailyScheduler fires the job once per day at a configured local
// time-of-day. The OS timer facility it replaces can double-fire; the
// run-lock downstream makes that harmless.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses an "HH:MM" trigger time in the given location.
func NewDailyScheduler(runTime string, loc *time.Location) (*DailyScheduler, error) {
	hour, minute, err := parseRunTime(runTime)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{hour: hour, minute: minute, loc: loc}, nil
}

// Start launches the trigger loop. Each firing invokes job once with the
// trigger time; the loop never runs the job concurrently with itself.
func (s *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done

	go func() {
		defer close(done)
		for {
			next := s.nextRun(time.Now().In(s.loc))
			timer := time.NewTimer(time.Until(next))

			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the trigger loop and waits for it to exit, so no firing can
// happen after Stop returns.
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	s.stop = nil
	done := s.done
	s.done = nil
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun reports the next trigger time after now, for logging at startup.
func (s *DailyScheduler) NextRun(now time.Time) time.Time {
	return s.nextRun(now.In(s.loc))
}

func (s *DailyScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func parseRunTime(runTime string) (int, int, error) {
	parts := strings.SplitN(runTime, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid run time %q, want HH:MM", runTime)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in run time %q", runTime)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in run time %q", runTime)
	}

	return hour, minute, nil
}
