package saga

import (
	"context"

	custom_error "procurement/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusDone               = "done"
	StatusFailed             = "failed"
	StatusCompensated        = "compensated"
	StatusCompensationFailed = "compensation_failed"
)

// Step is one remote mutation. Undo may be nil for steps with nothing to
// revert, such as the final status change.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

type Entry struct {
	SagaID string
	Saga   string
	Step   string
	Status string
	Error  string
}

type Journal interface {
	Record(ctx context.Context, entry Entry) error
}

type Saga struct {
	ID      string
	name    string
	steps   []Step
	journal Journal
	logger  *zap.Logger
}

func New(name string, journal Journal, logger *zap.Logger) *Saga {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Saga{
		ID:      uuid.NewString(),
		name:    name,
		journal: journal,
		logger:  logger.With(zap.String("saga", name)),
	}
}

func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

func (s *Saga) Len() int {
	return len(s.steps)
}

// Run executes the steps in order. When a step fails, the completed steps are
// undone in reverse order and a PartialFailureError is returned.
func (s *Saga) Run(ctx context.Context) error {
	completed := make([]Step, 0, len(s.steps))

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return s.compensate(ctx, completed, step.Name, err)
		}

		if err := step.Do(ctx); err != nil {
			s.record(ctx, step.Name, StatusFailed, err)
			return s.compensate(ctx, completed, step.Name, err)
		}

		s.record(ctx, step.Name, StatusDone, nil)
		completed = append(completed, step)
	}

	return nil
}

func (s *Saga) compensate(ctx context.Context, completed []Step, failed string, cause error) error {
	// Compensation must run even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	names := make([]string, 0, len(completed))
	for _, step := range completed {
		names = append(names, step.Name)
	}

	compensated := true
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			compensated = false
			s.logger.Error("Compensation failed", zap.String("step", step.Name), zap.Error(err))
			s.record(ctx, step.Name, StatusCompensationFailed, err)
			continue
		}
		s.record(ctx, step.Name, StatusCompensated, nil)
	}

	s.logger.Warn("Saga aborted",
		zap.String("saga_id", s.ID),
		zap.String("failed_step", failed),
		zap.Strings("completed", names),
		zap.Bool("compensated", compensated),
		zap.Error(cause),
	)

	return &custom_error.PartialFailureError{
		Operation:   s.name,
		Completed:   names,
		Failed:      failed,
		Compensated: compensated,
		Err:         cause,
	}
}

func (s *Saga) record(ctx context.Context, step, status string, err error) {
	entry := Entry{SagaID: s.ID, Saga: s.name, Step: step, Status: status}
	if err != nil {
		entry.Error = err.Error()
	}
	if jErr := s.journal.Record(ctx, entry); jErr != nil {
		s.logger.Warn("Unable to record saga step", zap.String("step", step), zap.Error(jErr))
	}
}

type NopJournal struct{}

func (NopJournal) Record(context.Context, Entry) error { return nil }
