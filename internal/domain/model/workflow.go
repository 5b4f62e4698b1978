package model

import (
	"time"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
)

// OrderWorkflow encapsulates every legal status transition and its guard.
// The workflow carries no state of its own; it operates purely on the order
// passed in and leaves persistence to the caller.
type OrderWorkflow struct{}

func (OrderWorkflow) CanAccept(o *Order) bool { return o.status == OrderStatusCreated }
func (OrderWorkflow) CanRefuse(o *Order) bool { return o.status == OrderStatusCreated }
func (OrderWorkflow) CanCancel(o *Order) bool { return o.status == OrderStatusCreated }
func (OrderWorkflow) CanStart(o *Order) bool  { return o.status == OrderStatusAccepted }

// CanDeliver allows the first delivery from DOING and re-delivery after a
// revision request.
func (OrderWorkflow) CanDeliver(o *Order) bool {
	return o.status == OrderStatusDoing || o.status == OrderStatusRevision
}

func (OrderWorkflow) CanRequestRevision(o *Order) bool { return o.status == OrderStatusDelivered }

func (OrderWorkflow) CanFinish(o *Order) bool {
	return o.status == OrderStatusDelivered || o.status == OrderStatusRevision
}

// Accept moves a freshly created order into the admin's queue.
func (w OrderWorkflow) Accept(o *Order, now time.Time) error {
	if !w.CanAccept(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusAccepted, now)
	return nil
}

// Refuse rejects a created order; the record is kept for history.
func (w OrderWorkflow) Refuse(o *Order, now time.Time) error {
	if !w.CanRefuse(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusRefused, now)
	return nil
}

// Cancel lets the client withdraw an order the admin has not decided on yet.
func (w OrderWorkflow) Cancel(o *Order, now time.Time) error {
	if !w.CanCancel(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusCanceled, now)
	return nil
}

// Start marks work on an accepted order as in progress.
func (w OrderWorkflow) Start(o *Order, now time.Time) error {
	if !w.CanStart(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusDoing, now)
	return nil
}

// Deliver publishes the finished work to the client.
func (w OrderWorkflow) Deliver(o *Order, now time.Time) error {
	if !w.CanDeliver(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusDelivered, now)
	return nil
}

// RequestRevision sends a delivered order back for rework.
func (w OrderWorkflow) RequestRevision(o *Order, now time.Time) error {
	if !w.CanRequestRevision(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusRevision, now)
	return nil
}

// Finish closes the order. FINISHED is terminal for the workflow; only the
// paid flag remains mutable afterwards.
func (w OrderWorkflow) Finish(o *Order, now time.Time) error {
	if !w.CanFinish(o) {
		return domainErrors.ErrInvalidTransition
	}
	o.setStatus(OrderStatusFinished, now)
	return nil
}

func (o *Order) setStatus(status OrderStatus, now time.Time) {
	o.status = status
	o.UpdatedAt = now
}
