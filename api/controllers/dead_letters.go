package controllers

import (
	"context"
	"net/http"

	"github.com/breezepoint/breezepoint-backend/api/responses"
	"github.com/breezepoint/breezepoint-backend/api/validators"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
)

// DeadLetterLister reads dead-lettered outbox events.
type DeadLetterLister interface {
	List(ctx context.Context, filter outbox.DLQFilter) ([]models.OutboxDLQ, error)
}

// AdminDeadLetters lists the most recent outbox events that exhausted delivery,
// optionally narrowed by ?event_type= and ?reason=.
func AdminDeadLetters(repo DeadLetterLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dead letter repository unavailable"))
			return
		}

		filter, err := deadLetterFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dead letters"))
			return
		}
		if rows == nil {
			rows = []models.OutboxDLQ{}
		}
		responses.WriteSuccess(w, rows)
	}
}

func deadLetterFilter(r *http.Request) (outbox.DLQFilter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", outbox.DefaultDLQLimit, 1, outbox.MaxDLQLimit)
	if err != nil {
		return outbox.DLQFilter{}, err
	}
	eventType, err := validators.ParseQueryEnum(r, "event_type", enums.ParseOutboxEventType)
	if err != nil {
		return outbox.DLQFilter{}, err
	}
	reason, err := validators.ParseQueryEnum(r, "reason", enums.ParseOutboxDLQErrorReason)
	if err != nil {
		return outbox.DLQFilter{}, err
	}
	return outbox.DLQFilter{
		EventType: eventType,
		Reason:    reason,
		Limit:     limit,
	}, nil
}
