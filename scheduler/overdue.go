// Package scheduler runs the recurring background jobs of the library
// service, currently a daily sweep that reports all overdue loans.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"librarysvc/librarystore"
)

// LoanLister supplies the overdue loans for a sweep.
type LoanLister interface {
	ListOverdueBooks(ctx context.Context) ([]librarystore.BorrowedBook, error)
}

// OverdueSweeper periodically lists all overdue loans and logs one entry
// per borrower so operators can follow up.
type OverdueSweeper struct {
	loans        LoanLister
	logger       librarystore.Logger
	cron         *cron.Cron
	sweepTimeout time.Duration
}

// NewOverdueSweeper creates a sweeper that queries loans through the given
// lister. The logger may be nil, in which case sweeps run silently.
func NewOverdueSweeper(loans LoanLister, logger librarystore.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		loans:        loans,
		logger:       logger,
		cron:         cron.New(),
		sweepTimeout: time.Minute,
	}
}

// Start schedules the sweep with the given cron expression and begins
// running it in the background.
func (s *OverdueSweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
		defer cancel()

		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep runs one pass over the overdue loans, logging each one.
func (s *OverdueSweeper) Sweep(ctx context.Context) {
	overdue, err := s.loans.ListOverdueBooks(ctx)
	if err != nil {
		s.logError("overdue sweep failed", "error", err)

		return
	}

	if len(overdue) == 0 {
		s.logInfo("overdue sweep finished", "overdue_loans", 0)

		return
	}

	for _, loan := range overdue {
		s.logWarn("overdue loan",
			"user_id", loan.UserID,
			"user_name", loan.UserName,
			"email", loan.Email,
			"book_id", loan.BookID,
			"title", loan.Title,
			"due_date", loan.DueDate.String())
	}

	s.logInfo("overdue sweep finished", "overdue_loans", len(overdue))
}

func (s *OverdueSweeper) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *OverdueSweeper) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *OverdueSweeper) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
