package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   GrievanceStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusAssigned, false},
		{StatusInProgress, false},
		{StatusVerification, false},
		{StatusResolved, true},
		{StatusRejected, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.terminal, tc.status.IsTerminal(), string(tc.status))
	}
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusInProgress.IsValid())
	assert.False(t, GrievanceStatus("Escalated").IsValid())
	assert.False(t, GrievanceStatus("").IsValid())
}

func TestStatusStaffSettable(t *testing.T) {
	tests := []struct {
		status   GrievanceStatus
		settable bool
	}{
		{StatusPending, false},
		{StatusAssigned, false},
		{StatusInProgress, true},
		{StatusVerification, false},
		{StatusResolved, true},
		{StatusRejected, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.settable, tc.status.StaffSettable(), string(tc.status))
	}
}

func TestStaffRecordHasDepartmentRole(t *testing.T) {
	assert.False(t, (&StaffRecord{}).HasDepartmentRole())
	assert.True(t, (&StaffRecord{AdminDepartment: "Hostel"}).HasDepartmentRole())
}
