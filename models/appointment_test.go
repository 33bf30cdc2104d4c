package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusInProgress, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusRejected, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCancelled, StatusPending, false},
		{StatusRejected, StatusConfirmed, false},
	}

	for _, tt := range tests {
		a := &Appointment{Status: tt.from}
		assert.Equalf(t, tt.allowed, a.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	a := &Appointment{Status: StatusPending}

	err := a.ChangeStatus("finished", StatusChange{ChangedBy: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "finished")
	assert.Contains(t, err.Error(), ValidStatusNames())
	assert.Equal(t, StatusPending, a.Status)
	assert.Empty(t, a.StatusHistory)
}

func TestChangeStatusRejectedTransitionLeavesAppointmentUntouched(t *testing.T) {
	a := &Appointment{
		Status: StatusCompleted,
		StatusHistory: StatusHistory{
			{Status: StatusCompleted, ChangedBy: 7},
		},
	}

	err := a.ChangeStatus(StatusCancelled, StatusChange{ChangedBy: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot change status from completed to cancelled")
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Len(t, a.StatusHistory, 1)
	assert.Nil(t, a.CompletedAt)
}

func TestChangeStatusLifecycleWithoutInProgress(t *testing.T) {
	a := &Appointment{Status: StatusPending}

	require.NoError(t, a.ChangeStatus(StatusConfirmed, StatusChange{ChangedBy: 2}))
	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Len(t, a.StatusHistory, 1)
	assert.Nil(t, a.CompletedAt)

	require.NoError(t, a.ChangeStatus(StatusCompleted, StatusChange{ChangedBy: 2}))
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Len(t, a.StatusHistory, 2)
	require.NotNil(t, a.CompletedAt)
	assert.Nil(t, a.ActualDuration, "no in_progress entry, so no duration")
}

func TestChangeStatusComputesActualDuration(t *testing.T) {
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	a := &Appointment{
		Status: StatusInProgress,
		StatusHistory: StatusHistory{
			{Status: StatusConfirmed, ChangedBy: 2, ChangedAt: started.Add(-time.Hour)},
			{Status: StatusInProgress, ChangedBy: 2, ChangedAt: started},
		},
	}

	finished := started.Add(42*time.Minute + 20*time.Second)
	require.NoError(t, a.ChangeStatus(StatusCompleted, StatusChange{ChangedBy: 2, ChangedAt: finished}))

	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, finished, *a.CompletedAt)
	require.NotNil(t, a.ActualDuration)
	assert.Equal(t, 42, *a.ActualDuration)
}

func TestStatusHistoryLatest(t *testing.T) {
	var empty StatusHistory
	assert.Nil(t, empty.Latest())

	h := StatusHistory{
		{Status: StatusPending},
		{Status: StatusConfirmed},
	}
	latest := h.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, StatusConfirmed, latest.Status)
}

func TestValidStatusNamesIsSorted(t *testing.T) {
	assert.Equal(t, "cancelled, completed, confirmed, in_progress, pending, rejected", ValidStatusNames())
}

func TestBeforeCreateDefaults(t *testing.T) {
	a := &Appointment{}
	require.NoError(t, a.BeforeCreate(nil))

	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, PaymentUnpaid, a.Payment.Status)
	assert.Equal(t, "INR", a.Payment.Currency)
}
