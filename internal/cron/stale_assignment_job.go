package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breezepoint/breezepoint-backend/internal/assignments"
	"github.com/breezepoint/breezepoint-backend/internal/orders"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	defaultPendingTTL      = 48 * time.Hour
	staleAssignmentBatch   = 200
	staleAssignmentReason  = "supplier did not respond before the pending deadline"
	staleAssignmentActorID = "cron"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StaleAssignmentJobParams configure the pending assignment sweeper.
type StaleAssignmentJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Orders     orders.Repository
	Outbox     outboxEmitter
	PendingTTL time.Duration
	BatchSize  int
}

// NewStaleAssignmentJob builds the job that releases assignments suppliers
// never answered so the order re-enters matching.
func NewStaleAssignmentJob(params StaleAssignmentJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = staleAssignmentBatch
	}
	return &staleAssignmentJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		ttl:    ttl,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type staleAssignmentJob struct {
	logg   *logger.Logger
	db     txRunner
	orders orders.Repository
	outbox outboxEmitter
	ttl    time.Duration
	batch  int
	now    func() time.Time
}

func (j *staleAssignmentJob) Name() string { return "stale-assignments" }

func (j *staleAssignmentJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	rows, err := j.orders.FindPendingAssignmentsBefore(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query stale assignments: %w", err)
	}

	var errs []error
	released := 0
	for i := range rows {
		ok, err := j.release(ctx, &rows[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("release assignment %s: %w", rows[i].ID, err))
			continue
		}
		if ok {
			released++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"found":    len(rows),
		"released": released,
		"failed":   len(errs),
	})
	j.logg.Info(logCtx, "stale assignment sweep complete")
	return multierr.Combine(errs...)
}

func (j *staleAssignmentJob) release(ctx context.Context, assignment *models.SupplierAssignment) (bool, error) {
	now := j.now().UTC()
	released := true
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		err := repo.UpdateAssignmentStatus(ctx, assignment.ID, enums.AssignmentStatusPending, enums.AssignmentStatusReassigned, now)
		if errors.Is(err, orders.ErrStatusChanged) {
			released = false
			return nil
		}
		if err != nil {
			return err
		}
		actor := outbox.SystemActor(staleAssignmentActorID)
		event := assignments.StatusChangedEvent(assignment, enums.AssignmentStatusPending, enums.AssignmentStatusReassigned, staleAssignmentReason, actor, now)
		return j.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return false, err
	}
	return released, nil
}
