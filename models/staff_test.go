package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreateGrantsDefaultPermissions(t *testing.T) {
	s := &Staff{UserID: 1, CenterID: 1}
	require.NoError(t, s.BeforeCreate(nil))

	require.Len(t, s.Permissions, len(DefaultPermissionActions))
	for i, action := range DefaultPermissionActions {
		assert.Equal(t, action, s.Permissions[i].Action)
		assert.True(t, s.Permissions[i].Granted)
	}

	assert.NotEmpty(t, s.WorkingHours)
	assert.Equal(t, "today", s.Preferences.Dashboard.DefaultView)
}

func TestBeforeCreateKeepsExplicitPermissions(t *testing.T) {
	s := &Staff{
		Permissions: PermissionList{
			{Action: PermViewReports, Granted: true},
		},
	}
	require.NoError(t, s.BeforeCreate(nil))

	require.Len(t, s.Permissions, 1)
	assert.Equal(t, PermViewReports, s.Permissions[0].Action)
}

func TestHasPermission(t *testing.T) {
	s := &Staff{
		IsActive: true,
		Permissions: PermissionList{
			{Action: PermUpdateStatus, Granted: true},
			{Action: PermManageServices, Granted: false},
		},
	}

	assert.True(t, s.HasPermission(PermUpdateStatus))
	assert.False(t, s.HasPermission(PermManageServices), "revoked entry")
	assert.False(t, s.HasPermission(PermViewReports), "missing entry")

	s.IsActive = false
	assert.False(t, s.HasPermission(PermUpdateStatus), "inactive staff hold no permissions")
}

func TestIsCurrentlyWorkingAt(t *testing.T) {
	s := &Staff{
		WorkingHours: WeeklySchedule{
			"monday": {Start: "09:00", End: "17:00", IsWorking: true},
			"sunday": {Start: "10:00", End: "16:00", IsWorking: false},
		},
	}

	// 2026-08-24 is a Monday, 2026-08-30 a Sunday.
	monday := func(h, m int) time.Time {
		return time.Date(2026, 8, 24, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid window", monday(12, 30), true},
		{"start boundary inclusive", monday(9, 0), true},
		{"end boundary inclusive", monday(17, 0), true},
		{"before window", monday(8, 59), false},
		{"after window", monday(17, 1), false},
		{"non working day regardless of time", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), false},
		{"unconfigured day", time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsCurrentlyWorkingAt(tt.at))
		})
	}
}

func TestIsCurrentlyWorkingAtMalformedWindow(t *testing.T) {
	s := &Staff{
		WorkingHours: WeeklySchedule{
			"monday": {Start: "nine", End: "17:00", IsWorking: true},
		},
	}
	assert.False(t, s.IsCurrentlyWorkingAt(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)))
}

func TestBeforeSaveClampsStatistics(t *testing.T) {
	s := &Staff{
		Statistics: StaffStatistics{
			CompletionRate:        140,
			UserSatisfactionScore: 7.5,
		},
	}
	require.NoError(t, s.BeforeSave(nil))
	assert.Equal(t, 100.0, s.Statistics.CompletionRate)
	assert.Equal(t, 5.0, s.Statistics.UserSatisfactionScore)

	s.Statistics.CompletionRate = -3
	s.Statistics.UserSatisfactionScore = -1
	require.NoError(t, s.BeforeSave(nil))
	assert.Equal(t, 0.0, s.Statistics.CompletionRate)
	assert.Equal(t, 0.0, s.Statistics.UserSatisfactionScore)
}

func TestPermissionListHas(t *testing.T) {
	list := PermissionList{
		{Action: PermAddComments, Granted: true},
		{Action: PermViewRatings, Granted: false},
	}
	assert.True(t, list.Has(PermAddComments))
	assert.False(t, list.Has(PermViewRatings))
	assert.False(t, list.Has(PermManageSchedule))
}
