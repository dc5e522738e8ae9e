// Package workflow is the single authority on status transitions for the
// workflow-driven entities (returns, INTRASTAT declarations, documents,
// stock reservations, expected receipts). It is a pure rules package: it
// decides whether a transition is allowed and which side effects the caller
// must execute, but it never touches the database itself.
package workflow

import (
	"fmt"

	"github.com/merkur-erp/erp-api/internal/domain"
)

// EntityType identifies a workflow-driven entity kind
type EntityType string

const (
	EntityReturn               EntityType = "return"
	EntityIntrastatDeclaration EntityType = "intrastat_declaration"
	EntityDocument             EntityType = "document"
	EntityStockReservation     EntityType = "stock_reservation"
	EntityExpectedReceipt      EntityType = "expected_receipt"
)

// IsValid checks if the EntityType is a valid enum value
func (e EntityType) IsValid() bool {
	_, ok := allowedStatuses[e]
	return ok
}

// SideEffect names a domain action the service layer must perform together
// with an accepted transition, in the same database transaction.
type SideEffect string

const (
	// SideEffectStockWriteBack increments the stock level by the returned
	// quantity when a return is completed.
	SideEffectStockWriteBack SideEffect = "stock_write_back"
	// SideEffectStoreRejectionReason persists the mandatory reason when a
	// return is rejected.
	SideEffectStoreRejectionReason SideEffect = "store_rejection_reason"
	// SideEffectStockCommit decrements the stock level when a reservation
	// is fulfilled.
	SideEffectStockCommit SideEffect = "stock_commit"
	// SideEffectStockRelease frees the reserved quantity without touching
	// the stock level.
	SideEffectStockRelease SideEffect = "stock_release"
	// SideEffectStockReceipt increments stock levels per item when an
	// expected receipt arrives.
	SideEffectStockReceipt SideEffect = "stock_receipt"
)

// Decision is the outcome of evaluating a requested transition.
type Decision struct {
	Allowed     bool
	Reason      string
	SideEffects []SideEffect
}

type edge struct {
	from string
	to   string
}

// allowedStatuses enumerates every valid status per entity. A target status
// outside this set is a caller error, not a denied transition.
var allowedStatuses = map[EntityType][]string{
	EntityReturn: {
		string(domain.ReturnStatusPending),
		string(domain.ReturnStatusApproved),
		string(domain.ReturnStatusCompleted),
		string(domain.ReturnStatusRejected),
	},
	EntityIntrastatDeclaration: {
		string(domain.IntrastatStatusOpen),
		string(domain.IntrastatStatusReady),
		string(domain.IntrastatStatusSent),
		string(domain.IntrastatStatusConfirmed),
	},
	EntityDocument: {
		string(domain.DocumentStatusUploaded),
		string(domain.DocumentStatusProcessing),
		string(domain.DocumentStatusProcessed),
		string(domain.DocumentStatusFailed),
	},
	EntityStockReservation: {
		string(domain.ReservationStatusReserved),
		string(domain.ReservationStatusFulfilled),
		string(domain.ReservationStatusReleased),
	},
	EntityExpectedReceipt: {
		string(domain.ExpectedReceiptStatusExpected),
		string(domain.ExpectedReceiptStatusReceived),
		string(domain.ExpectedReceiptStatusCancelled),
	},
}

// transitions is the allowed edge set per entity with the side effects each
// edge carries. Anything not listed here is denied.
var transitions = map[EntityType]map[edge][]SideEffect{
	EntityReturn: {
		{string(domain.ReturnStatusPending), string(domain.ReturnStatusApproved)}:   nil,
		{string(domain.ReturnStatusPending), string(domain.ReturnStatusRejected)}:   {SideEffectStoreRejectionReason},
		{string(domain.ReturnStatusApproved), string(domain.ReturnStatusCompleted)}: {SideEffectStockWriteBack},
	},
	EntityIntrastatDeclaration: {
		// Strictly forward, no skipping, no reverse.
		{string(domain.IntrastatStatusOpen), string(domain.IntrastatStatusReady)}:     nil,
		{string(domain.IntrastatStatusReady), string(domain.IntrastatStatusSent)}:     nil,
		{string(domain.IntrastatStatusSent), string(domain.IntrastatStatusConfirmed)}: nil,
	},
	EntityDocument: {
		{string(domain.DocumentStatusUploaded), string(domain.DocumentStatusProcessing)}:  nil,
		{string(domain.DocumentStatusProcessing), string(domain.DocumentStatusProcessed)}: nil,
		{string(domain.DocumentStatusProcessing), string(domain.DocumentStatusFailed)}:    nil,
		// A failed OCR run may be resubmitted.
		{string(domain.DocumentStatusFailed), string(domain.DocumentStatusProcessing)}: nil,
	},
	EntityStockReservation: {
		{string(domain.ReservationStatusReserved), string(domain.ReservationStatusFulfilled)}: {SideEffectStockCommit},
		{string(domain.ReservationStatusReserved), string(domain.ReservationStatusReleased)}:  {SideEffectStockRelease},
	},
	EntityExpectedReceipt: {
		{string(domain.ExpectedReceiptStatusExpected), string(domain.ExpectedReceiptStatusReceived)}:  {SideEffectStockReceipt},
		{string(domain.ExpectedReceiptStatusExpected), string(domain.ExpectedReceiptStatusCancelled)}: nil,
	},
}

// Decide evaluates a requested status transition. It returns an error when
// the entity type is unknown or the target status is not a member of the
// entity's status set; a disallowed edge is not an error but a Decision with
// Allowed=false and a human-readable reason.
func Decide(entity EntityType, from, to string) (Decision, error) {
	statuses, ok := allowedStatuses[entity]
	if !ok {
		return Decision{}, fmt.Errorf("unknown workflow entity type %q", entity)
	}
	if !contains(statuses, to) {
		return Decision{}, fmt.Errorf("%q is not a valid status for entity type %q", to, entity)
	}
	if !contains(statuses, from) {
		return Decision{}, fmt.Errorf("%q is not a valid status for entity type %q", from, entity)
	}

	effects, allowed := transitions[entity][edge{from, to}]
	if !allowed {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("transition from %s to %s is not allowed for %s", from, to, entity),
		}, nil
	}

	return Decision{Allowed: true, SideEffects: effects}, nil
}

// AllowedTargets returns the statuses reachable from the given status.
func AllowedTargets(entity EntityType, from string) []string {
	var targets []string
	for e := range transitions[entity] {
		if e.from == from {
			targets = append(targets, e.to)
		}
	}
	return targets
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
