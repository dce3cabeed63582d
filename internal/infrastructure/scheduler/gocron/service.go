package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/go-co-op/gocron"
	"github.com/photonwallet/photon/internal/core/ports"
)

type service struct {
	scheduler *gocron.Scheduler

	mu  sync.Mutex
	job *gocron.Job
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{scheduler: svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		s.scheduler.Remove(s.job)
		s.job = nil
	}
	s.scheduler.Stop()
	s.scheduler.Clear()
}

// ScheduleRecurring runs task every intervalSecs seconds. Only one
// recurring job exists at a time; scheduling replaces the previous one.
func (s *service) ScheduleRecurring(intervalSecs uint32, task func()) error {
	if intervalSecs == 0 {
		return fmt.Errorf("invalid interval: %d", intervalSecs)
	}
	interval, err := safecast.ToInt(intervalSecs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		s.scheduler.Remove(s.job)
		s.job = nil
	}

	job, err := s.scheduler.Every(interval).Seconds().WaitForSchedule().Do(task)
	if err != nil {
		return err
	}
	s.job = job
	return nil
}

func (s *service) CancelRecurring() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job == nil {
		return
	}
	s.scheduler.Remove(s.job)
	s.job = nil
}
