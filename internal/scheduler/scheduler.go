package scheduler

import (
	"time"

	"github.com/finledger/ledger-service/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the daily maintenance job: posting capitalized interest for
// deferred liabilities and emailing upcoming-payment reminders.
type Scheduler struct {
	svc  *service.Service
	log  *logrus.Logger
	cron *cron.Cron
}

// New initializes the scheduler
func New(svc *service.Service, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		svc:  svc,
		log:  log,
		cron: cron.New(),
	}
}

// Start registers the daily job under the given cron spec and starts the
// scheduler in the background.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runDaily); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("Scheduler started with spec %q", spec)
	return nil
}

// Stop halts the scheduler; running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runDaily() {
	posted, err := s.svc.PostAllCapitalizedInterest()
	if err != nil {
		s.log.Errorf("Capitalization posting job failed: %v", err)
	} else if posted > 0 {
		s.log.Infof("Capitalization posting job created %d transactions", posted)
	}

	sent, err := s.svc.SendUpcomingReminders(time.Now())
	if err != nil {
		s.log.Errorf("Reminder job failed: %v", err)
	} else if sent > 0 {
		s.log.Infof("Reminder job sent %d emails", sent)
	}
}
