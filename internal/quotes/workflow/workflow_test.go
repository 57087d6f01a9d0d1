package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = Actor{ID: 42, Email: "sales@example.com", Name: "Sales Rep"}

func TestTransitionSubmitFromDraft(t *testing.T) {
	now := time.Now()
	q := Quote{ID: 1, Status: StatusDraft}

	next, rev, err := Transition(q, EventSubmit, testActor, "", now)

	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, next.Status)
	assert.Equal(t, 0, next.Version)
	assert.Equal(t, int64(1), rev.QuoteID)
	assert.Equal(t, StatusPendingApproval, rev.Status)
	assert.Equal(t, testActor.ID, rev.ChangedBy)
	assert.Equal(t, "Submitted for approval", rev.Notes)
	assert.NotZero(t, rev.ID)
}

func TestTransitionFirstExportFromDraft(t *testing.T) {
	q := Quote{ID: 2, Status: StatusDraft}

	next, rev, err := Transition(q, EventExport, testActor, "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, next.Status)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, "Initial export", rev.Notes)
	assert.Equal(t, 1, rev.Version)
}

func TestTransitionApproveSetsVersionAndApprover(t *testing.T) {
	now := time.Now()
	q := Quote{ID: 3, Status: StatusPendingApproval}

	next, rev, err := Transition(q, EventApprove, testActor, "", now)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, next.Status)
	assert.Equal(t, 1, next.Version)
	require.NotNil(t, next.ApprovedBy)
	assert.Equal(t, testActor.ID, *next.ApprovedBy)
	require.NotNil(t, next.ApprovedAt)
	assert.Equal(t, now, *next.ApprovedAt)
	assert.Equal(t, StatusSent, rev.Status)
}

func TestTransitionApproveKeepsExistingVersion(t *testing.T) {
	q := Quote{ID: 3, Status: StatusPendingApproval, Version: 2}

	next, _, err := Transition(q, EventApprove, testActor, "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)
}

func TestTransitionRejectRecordsNotes(t *testing.T) {
	now := time.Now()
	q := Quote{ID: 4, Status: StatusPendingApproval}

	next, rev, err := Transition(q, EventReject, testActor, "pricing too high", now)

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, next.Status)
	require.NotNil(t, next.RejectedBy)
	assert.Equal(t, testActor.ID, *next.RejectedBy)
	assert.Equal(t, "pricing too high", rev.Notes)
}

func TestTransitionReExportIncrementsVersion(t *testing.T) {
	q := Quote{ID: 5, Status: StatusSent, Version: 1}

	next, rev, err := Transition(q, EventExport, testActor, "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, next.Status)
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, "Re-exported", rev.Notes)
}

func TestTransitionClientAccepts(t *testing.T) {
	q := Quote{ID: 6, Status: StatusSent, Version: 3}

	next, rev, err := Transition(q, EventAccept, testActor, "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, next.Status)
	assert.Equal(t, 3, next.Version)
	assert.Equal(t, "Accepted by client", rev.Notes)
}

func TestTransitionRejectsUndefinedEdges(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		event  Event
	}{
		{"submit from sent", StatusSent, EventSubmit},
		{"approve from draft", StatusDraft, EventApprove},
		{"reject from draft", StatusDraft, EventReject},
		{"accept from draft", StatusDraft, EventAccept},
		{"accept from pending", StatusPendingApproval, EventAccept},
		{"export from pending", StatusPendingApproval, EventExport},
		{"submit from rejected", StatusRejected, EventSubmit},
		{"export from rejected", StatusRejected, EventExport},
		{"export from accepted", StatusAccepted, EventExport},
		{"accept from accepted", StatusAccepted, EventAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quote{ID: 9, Status: tt.status, Version: 1}
			next, _, err := Transition(q, tt.event, testActor, "", time.Now())
			require.ErrorIs(t, err, ErrInvalidTransition)
			assert.Contains(t, err.Error(), string(tt.status))
			assert.Equal(t, q, next)
		})
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	q := Quote{ID: 7, Status: StatusDraft}

	_, _, err := Transition(q, EventExport, testActor, "", time.Now())

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, 0, q.Version)
}

func TestEnsureExportable(t *testing.T) {
	err := EnsureExportable(StatusDraft)
	require.ErrorIs(t, err, ErrNotApproved)
	assert.Contains(t, err.Error(), "DRAFT")

	err = EnsureExportable(StatusPendingApproval)
	require.ErrorIs(t, err, ErrNotApproved)
	assert.Contains(t, err.Error(), "PENDING_APPROVAL")

	assert.NoError(t, EnsureExportable(StatusSent))
	assert.NoError(t, EnsureExportable(StatusAccepted))
	assert.NoError(t, EnsureExportable(StatusRejected))
}
