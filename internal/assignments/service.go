package assignments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/breezepoint/breezepoint-backend/internal/catalog"
	"github.com/breezepoint/breezepoint-backend/internal/fulfillment"
	"github.com/breezepoint/breezepoint-backend/internal/orders"
	"github.com/breezepoint/breezepoint-backend/internal/suppliers"
	"github.com/breezepoint/breezepoint-backend/pkg/db"
	"github.com/breezepoint/breezepoint-backend/pkg/db/models"
	"github.com/breezepoint/breezepoint-backend/pkg/enums"
	pkgerrors "github.com/breezepoint/breezepoint-backend/pkg/errors"
	"github.com/breezepoint/breezepoint-backend/pkg/logger"
	"github.com/breezepoint/breezepoint-backend/pkg/metrics"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox"
	"github.com/breezepoint/breezepoint-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	outcomeAssigned          = "assigned"
	outcomeConflict          = "conflict"
	outcomeStaleSelection    = "stale_selection"
	outcomeShortfallRejected = "shortfall_rejected"
	outcomeFailed            = "failed"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service coordinates candidate discovery and supplier assignment for orders.
type Service interface {
	Candidates(ctx context.Context, orderID uuid.UUID) (*CandidateList, error)
	Assign(ctx context.Context, input AssignInput) (*models.SupplierAssignment, error)
	UpdateStatus(ctx context.Context, input StatusInput) (*models.SupplierAssignment, error)
	ListAssignments(ctx context.Context, orderID uuid.UUID) ([]models.SupplierAssignment, error)
}

// ServiceParams wires the assignment service dependencies.
type ServiceParams struct {
	Logger    *logger.Logger
	Tx        txRunner
	Orders    orders.Repository
	Catalog   catalog.Reader
	Suppliers suppliers.Directory
	Outbox    outboxPublisher
	Metrics   *metrics.MatchingMetrics
}

type service struct {
	logg      *logger.Logger
	tx        txRunner
	orders    orders.Repository
	catalog   catalog.Reader
	suppliers suppliers.Directory
	outbox    outboxPublisher
	metrics   *metrics.MatchingMetrics
	now       func() time.Time
}

// NewService builds the assignment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier directory required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		logg:      params.Logger,
		tx:        params.Tx,
		orders:    params.Orders,
		catalog:   params.Catalog,
		suppliers: params.Suppliers,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

func (s *service) Candidates(ctx context.Context, orderID uuid.UUID) (*CandidateList, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.rankedCandidates(ctx, order)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCandidates(len(candidates))

	list := &CandidateList{
		OrderID:        order.ID,
		OrderStatus:    order.Status,
		OrderItemCount: len(toLineItems(order.Items)),
		Candidates:     candidates,
	}
	if len(candidates) == 0 {
		list.Empty = true
		list.Message = NoInventoryMessage
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(logCtx, "no fulfillment candidates for order")
	}
	return list, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*models.SupplierAssignment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	ctx = s.logg.WithSupplierID(ctx, input.SupplierID.String())

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.AcceptsAssignment() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %s cannot be assigned", order.Status)).
			WithDetails(map[string]any{"order_status": order.Status})
	}
	if err := s.ensureNoActiveAssignment(ctx, s.orders, order.ID); err != nil {
		s.metrics.IncAssignment(outcomeConflict)
		return nil, err
	}

	// Listings may have changed since the operator looked at the candidates.
	candidates, err := s.rankedCandidates(ctx, order)
	if err != nil {
		return nil, err
	}
	supplierID := input.SupplierID.String()
	selection, err := fulfillment.SelectAndValidate(candidates, supplierID, input.Notes)
	if err != nil {
		s.metrics.IncAssignment(outcomeStaleSelection)
		return nil, err
	}
	candidate, _ := fulfillment.FindCandidate(candidates, supplierID)
	if candidate.InsufficientStock && !input.AllowShortfall {
		s.metrics.IncAssignment(outcomeShortfallRejected)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier has insufficient stock for the order").
			WithDetails(map[string]any{
				"supplier_id": supplierID,
				"short_items": candidate.ShortItems,
			})
	}

	now := s.now().UTC()
	assignment := &models.SupplierAssignment{
		OrderID:      order.ID,
		SupplierID:   input.SupplierID,
		SupplierName: selection.SupplierName,
		Items:        toAssignedItems(selection.Items),
		Notes:        selection.Notes,
		Status:       enums.AssignmentStatusPending,
		AssignedAt:   now,
	}
	if input.Actor.UserID != uuid.Nil {
		userID := input.Actor.UserID
		assignment.AssignedByUserID = &userID
	}

	var created *models.SupplierAssignment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if err := s.ensureNoActiveAssignment(ctx, repo, order.ID); err != nil {
			return err
		}
		row, err := repo.CreateAssignment(ctx, assignment)
		if err != nil {
			if db.IsUniqueViolation(err, orders.ActiveAssignmentIndex) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already has an active supplier assignment")
			}
			return err
		}
		created = row

		event := outbox.DomainEvent{
			EventType:     enums.EventSupplierAssigned,
			AggregateType: enums.AggregateSupplierAssignment,
			AggregateID:   row.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.SupplierAssignedEvent{
				AssignmentID:      row.ID,
				OrderID:           row.OrderID,
				SupplierID:        row.SupplierID,
				SupplierName:      row.SupplierName,
				Items:             toEventItems(row.Items),
				Notes:             row.Notes,
				InsufficientStock: candidate.InsufficientStock,
				AssignedAt:        row.AssignedAt,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncAssignment(outcomeConflict)
			return nil, err
		}
		s.metrics.IncAssignment(outcomeFailed)
		return nil, asDependency(err, "create supplier assignment")
	}

	s.metrics.IncAssignment(outcomeAssigned)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"assignment_id":      created.ID.String(),
		"insufficient_stock": candidate.InsufficientStock,
		"item_count":         len(created.Items),
	})
	s.logg.Info(logCtx, "supplier assigned to order")
	return created, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) (*models.SupplierAssignment, error) {
	if input.AssignmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid assignment status %q", input.Status))
	}

	assignment, err := s.orders.FindAssignment(ctx, input.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	ctx = s.logg.WithOrderID(ctx, assignment.OrderID.String())
	ctx = s.logg.WithSupplierID(ctx, assignment.SupplierID.String())
	ctx = s.logg.WithActorRole(ctx, input.Actor.Role.String())

	if err := authorizeStatusChange(input.Actor, assignment, input.Status); err != nil {
		return nil, err
	}

	previous := assignment.Status
	if !previous.CanTransitionTo(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("assignment cannot move from %s to %s", previous, input.Status)).
			WithDetails(map[string]any{"from": previous, "to": input.Status})
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if err := repo.UpdateAssignmentStatus(ctx, assignment.ID, previous, input.Status, now); err != nil {
			if errors.Is(err, orders.ErrStatusChanged) {
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "assignment status changed, reload and retry")
			}
			return err
		}
		return s.outbox.Emit(ctx, tx, StatusChangedEvent(assignment, previous, input.Status, strings.TrimSpace(input.Reason), actorRef(input.Actor), now))
	})
	if err != nil {
		return nil, asDependency(err, "update assignment status")
	}

	assignment.Status = input.Status
	assignment.StatusChangedAt = &now
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"assignment_id":   assignment.ID.String(),
		"previous_status": previous,
		"status":          input.Status,
	})
	s.logg.Info(logCtx, "assignment status updated")
	return assignment, nil
}

func (s *service) ListAssignments(ctx context.Context, orderID uuid.UUID) ([]models.SupplierAssignment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	rows, err := s.orders.ListAssignments(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	if rows == nil {
		rows = []models.SupplierAssignment{}
	}
	return rows, nil
}

// StatusChangedEvent builds the outbox event for an assignment lifecycle move.
func StatusChangedEvent(assignment *models.SupplierAssignment, previous, next enums.AssignmentStatus, reason string, actor *outbox.ActorRef, at time.Time) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventAssignmentStatusChanged,
		AggregateType: enums.AggregateSupplierAssignment,
		AggregateID:   assignment.ID,
		Actor:         actor,
		OccurredAt:    at,
		Data: payloads.AssignmentStatusChangedEvent{
			AssignmentID:   assignment.ID,
			OrderID:        assignment.OrderID,
			SupplierID:     assignment.SupplierID,
			PreviousStatus: previous,
			Status:         next,
			Reason:         reason,
			ChangedAt:      at,
		},
	}
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ensureNoActiveAssignment(ctx context.Context, repo orders.Repository, orderID uuid.UUID) error {
	active, err := repo.FindActiveAssignment(ctx, orderID)
	if err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "order already has an active supplier assignment").
			WithDetails(map[string]any{
				"assignment_id": active.ID.String(),
				"status":        active.Status,
			})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active assignment")
}

func (s *service) rankedCandidates(ctx context.Context, order *models.Order) ([]fulfillment.FulfillmentCandidate, error) {
	items := toLineItems(order.Items)
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	snapshot, err := s.catalog.ListActiveByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog listings")
	}

	candidates := fulfillment.BuildCandidates(items, snapshot)
	if len(candidates) == 0 {
		return candidates, nil
	}

	supplierIDs := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		supplierIDs = append(supplierIDs, candidate.SupplierID)
	}
	names, err := s.suppliers.DisplayNames(ctx, supplierIDs)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "supplier names unavailable, falling back to ids")
	} else {
		fulfillment.ApplySupplierNames(candidates, names)
	}
	return fulfillment.RankCandidates(candidates), nil
}

func authorizeStatusChange(actor Actor, assignment *models.SupplierAssignment, next enums.AssignmentStatus) error {
	switch actor.Role {
	case enums.MemberRoleSupplier:
		switch next {
		case enums.AssignmentStatusAccepted, enums.AssignmentStatusDeclined, enums.AssignmentStatusFulfilled:
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("suppliers cannot set status %s", next))
		}
		if actor.SupplierID == nil || *actor.SupplierID != assignment.SupplierID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "assignment belongs to another supplier")
		}
		return nil
	case enums.MemberRoleAdmin:
		if next != enums.AssignmentStatusReassigned {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("admins cannot set status %s", next))
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot change assignment status")
	}
}

func asDependency(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil && actor.Role == "" {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String(), SupplierID: actor.SupplierID}
}

// toLineItems folds lines that repeat a product into the first one, summing
// quantities, so each product is matched once.
func toLineItems(rows []models.OrderLineItem) []fulfillment.OrderLineItem {
	items := make([]fulfillment.OrderLineItem, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		if idx, ok := seen[row.ProductID]; ok && row.ProductID != "" {
			items[idx].Quantity += row.Quantity
			continue
		}
		seen[row.ProductID] = len(items)
		items = append(items, fulfillment.OrderLineItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
		})
	}
	return items
}

func toAssignedItems(items []fulfillment.MatchedItem) models.AssignedItems {
	out := make(models.AssignedItems, 0, len(items))
	for _, item := range items {
		out = append(out, models.AssignedItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			CatalogItemID: item.CatalogItemID,
		})
	}
	return out
}

func toEventItems(items models.AssignedItems) []payloads.AssignedItem {
	out := make([]payloads.AssignedItem, 0, len(items))
	for _, item := range items {
		out = append(out, payloads.AssignedItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			CatalogItemID: item.CatalogItemID,
		})
	}
	return out
}
