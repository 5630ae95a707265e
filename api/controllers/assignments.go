package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/breezepoint/breezepoint-backend/api/middleware"
	"github.com/breezepoint/breezepoint-backend/api/responses"
	"github.com/breezepoint/breezepoint-backend/api/validators"
	"github.com/breezepoint/breezepoint-backend/internal/assignments"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
)

type assignSupplierRequest struct {
	SupplierID     string `json:"supplier_id" validate:"required,uuid"`
	Notes          string `json:"notes" validate:"max=1000"`
	AllowShortfall bool   `json:"allow_shortfall"`
}

type reassignRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type assignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined fulfilled"`
	Reason string `json:"reason" validate:"max=500"`
}

type assignmentResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderID          uuid.UUID              `json:"order_id"`
	SupplierID       uuid.UUID              `json:"supplier_id"`
	SupplierName     string                 `json:"supplier_name"`
	Items            models.AssignedItems   `json:"items"`
	Notes            *string                `json:"notes,omitempty"`
	Status           enums.AssignmentStatus `json:"status"`
	AssignedByUserID *uuid.UUID             `json:"assigned_by_user_id,omitempty"`
	AssignedAt       time.Time              `json:"assigned_at"`
	StatusChangedAt  *time.Time             `json:"status_changed_at,omitempty"`
}

func newAssignmentResponse(a *models.SupplierAssignment) assignmentResponse {
	items := a.Items
	if items == nil {
		items = models.AssignedItems{}
	}
	return assignmentResponse{
		ID:               a.ID,
		OrderID:          a.OrderID,
		SupplierID:       a.SupplierID,
		SupplierName:     a.SupplierName,
		Items:            items,
		Notes:            a.Notes,
		Status:           a.Status,
		AssignedByUserID: a.AssignedByUserID,
		AssignedAt:       a.AssignedAt,
		StatusChangedAt:  a.StatusChangedAt,
	}
}

// AdminOrderCandidates returns the ranked supplier candidates for an order.
func AdminOrderCandidates(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		orderID, err := uuidParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := withOrderLog(r.Context(), logg, orderID)
		list, err := svc.Candidates(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminAssignSupplier commits the operator's supplier choice for an order.
func AdminAssignSupplier(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		orderID, err := uuidParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignSupplierRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := uuid.Parse(req.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}

		ctx := withOrderLog(r.Context(), logg, orderID)
		assignment, err := svc.Assign(ctx, assignments.AssignInput{
			OrderID:        orderID,
			SupplierID:     supplierID,
			Notes:          strings.TrimSpace(req.Notes),
			AllowShortfall: req.AllowShortfall,
			Actor:          actor,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAssignmentResponse(assignment))
	}
}

// AdminOrderAssignments lists every assignment recorded for an order, newest first.
func AdminOrderAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		orderID, err := uuidParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := withOrderLog(r.Context(), logg, orderID)
		rows, err := svc.ListAssignments(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]assignmentResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newAssignmentResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminReassign releases an active assignment so the order can be matched again.
func AdminReassign(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		assignmentID, err := uuidParam(r, "assignmentId", "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reassignRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.UpdateStatus(r.Context(), assignments.StatusInput{
			AssignmentID: assignmentID,
			Status:       enums.AssignmentStatusReassigned,
			Reason:       strings.TrimSpace(req.Reason),
			Actor:        actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAssignmentResponse(assignment))
	}
}

// SupplierUpdateAssignmentStatus lets a supplier accept, decline or fulfil its assignment.
func SupplierUpdateAssignmentStatus(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		assignmentID, err := uuidParam(r, "assignmentId", "assignment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignmentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseAssignmentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		assignment, err := svc.UpdateStatus(r.Context(), assignments.StatusInput{
			AssignmentID: assignmentID,
			Status:       status,
			Reason:       strings.TrimSpace(req.Reason),
			Actor:        actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAssignmentResponse(assignment))
	}
}

func uuidParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

func actorFromRequest(r *http.Request) (assignments.Actor, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || p.UserID == uuid.Nil || !p.Role.IsValid() {
		return assignments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller context")
	}
	return assignments.Actor{UserID: p.UserID, Role: p.Role, SupplierID: p.SupplierID}, nil
}

func withOrderLog(ctx context.Context, logg *logger.Logger, orderID uuid.UUID) context.Context {
	if logg == nil {
		return ctx
	}
	return logg.WithOrderID(ctx, orderID.String())
}
