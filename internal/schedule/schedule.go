// Package schedule runs the refresh job on the bank-hours calendar.
// Times are interpreted in a fixed location (Tashkent in production)
// regardless of where the process runs.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	c *cron.Cron
}

func New(loc *time.Location) *Scheduler {
	return &Scheduler{c: cron.New(cron.WithLocation(loc))}
}

// AddDaily schedules job at each "HH:MM" time, every day.
func (s *Scheduler) AddDaily(times []string, job func()) error {
	for _, t := range times {
		spec, err := dailySpec(t)
		if err != nil {
			return err
		}
		if _, err := s.c.AddFunc(spec, job); err != nil {
			return fmt.Errorf("schedule %q: %w", t, err)
		}
	}
	return nil
}

// AddHourly schedules job at the top of every hour.
func (s *Scheduler) AddHourly(job func()) error {
	_, err := s.c.AddFunc("0 * * * *", job)
	return err
}

func (s *Scheduler) Entries() int { return len(s.c.Entries()) }

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func dailySpec(hhmm string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("bad time %q: want HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("bad hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("bad minute in %q", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}
