// Package workflow enforces the quotation status lifecycle. Transition is a
// pure computation over the aggregate; persistence of the resulting quote and
// revision is the caller's concern.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusSent            Status = "SENT"
	StatusAccepted        Status = "ACCEPTED"
	StatusRejected        Status = "REJECTED"
)

// Event is a status-changing action requested by a user or client.
type Event string

const (
	// EventSubmit routes a draft to approval.
	EventSubmit Event = "submit-for-approval"
	// EventExport marks a quote SENT; re-exporting a SENT quote bumps its version.
	EventExport Event = "export"
	// EventApprove releases a pending quote as SENT.
	EventApprove Event = "approve"
	// EventReject declines a pending quote.
	EventReject Event = "reject"
	// EventAccept records client acceptance of a sent quote.
	EventAccept Event = "client-accepts"
)

var (
	// ErrInvalidTransition signals an event undefined for the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotApproved signals a finalized-artifact request for a quote that has
	// not passed approval yet.
	ErrNotApproved = errors.New("quote not approved")
)

// Actor identifies who performed a transition, for revision attribution.
type Actor struct {
	ID    int64
	Email string
	Name  string
}

// Quote is the slice of the aggregate the workflow reads and writes.
type Quote struct {
	ID         int64
	Status     Status
	Version    int
	ApprovedBy *int64
	ApprovedAt *time.Time
	RejectedBy *int64
	RejectedAt *time.Time
}

// Revision is the append-only audit record produced by a transition.
type Revision struct {
	ID        uuid.UUID
	QuoteID   int64
	Version   int
	Status    Status
	ChangedBy int64
	Notes     string
	CreatedAt time.Time
}

// Transition applies event to the quote and returns the updated aggregate
// together with the revision row to append. The input quote is not mutated.
// Returns ErrInvalidTransition when the event is not defined for the current
// status; REJECTED and ACCEPTED are terminal.
func Transition(q Quote, event Event, actor Actor, notes string, now time.Time) (Quote, Revision, error) {
	next := q

	switch {
	case q.Status == StatusDraft && event == EventSubmit:
		next.Status = StatusPendingApproval
		if notes == "" {
			notes = "Submitted for approval"
		}

	case q.Status == StatusDraft && event == EventExport:
		next.Status = StatusSent
		next.Version = 1
		if notes == "" {
			notes = "Initial export"
		}

	case q.Status == StatusPendingApproval && event == EventApprove:
		next.Status = StatusSent
		if next.Version == 0 {
			next.Version = 1
		}
		next.ApprovedBy = &actor.ID
		t := now
		next.ApprovedAt = &t
		if notes == "" {
			notes = "Approved"
		}

	case q.Status == StatusPendingApproval && event == EventReject:
		next.Status = StatusRejected
		next.RejectedBy = &actor.ID
		t := now
		next.RejectedAt = &t
		if notes == "" {
			notes = "Rejected"
		}

	case q.Status == StatusSent && event == EventExport:
		next.Version = q.Version + 1
		if notes == "" {
			notes = "Re-exported"
		}

	case q.Status == StatusSent && event == EventAccept:
		next.Status = StatusAccepted
		if notes == "" {
			notes = "Accepted by client"
		}

	default:
		return q, Revision{}, fmt.Errorf("%w: %s not allowed from %s", ErrInvalidTransition, event, q.Status)
	}

	rev := Revision{
		ID:        uuid.New(),
		QuoteID:   q.ID,
		Version:   next.Version,
		Status:    next.Status,
		ChangedBy: actor.ID,
		Notes:     notes,
		CreatedAt: now,
	}

	return next, rev, nil
}

// EnsureExportable guards final-PDF fetches. A quote that has not left the
// approval pipeline has no finalized document to serve.
func EnsureExportable(status Status) error {
	if status == StatusDraft || status == StatusPendingApproval {
		return fmt.Errorf("%w: status is %s", ErrNotApproved, status)
	}
	return nil
}
