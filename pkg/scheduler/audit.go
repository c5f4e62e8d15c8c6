package scheduler

import (
	"context"
	"time"

	"github.com/fadedpez/sentenza/pkg/repositories/account"
)

// defaultFlushInterval is how often buffered ledger entries are pushed
// to the archive when the batch threshold hasn't tripped first.
const defaultFlushInterval = time.Minute

// AuditScheduler periodically flushes the ledger entry archive
type AuditScheduler struct {
	scheduler *Scheduler
	repo      *account.ElasticsearchRepository
}

// NewAuditScheduler creates a scheduler for archive maintenance
func NewAuditScheduler(repo *account.ElasticsearchRepository) *AuditScheduler {
	s := &AuditScheduler{
		scheduler: NewScheduler(),
		repo:      repo,
	}
	s.scheduler.AddTask("audit_flush", defaultFlushInterval, s.flush)
	return s
}

// Start begins periodic flushing
func (s *AuditScheduler) Start(ctx context.Context) {
	s.scheduler.Start(ctx)
}

// Stop halts periodic flushing and performs one final flush so buffered
// entries aren't lost on shutdown.
func (s *AuditScheduler) Stop() {
	s.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.repo.Flush(ctx)
}

func (s *AuditScheduler) flush(ctx context.Context) error {
	return s.repo.Flush(ctx)
}
