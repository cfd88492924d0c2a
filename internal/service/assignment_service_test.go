package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/events"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

func newAssignmentFixture(t *testing.T) (*fixture, *AssignmentService) {
	t.Helper()
	f := newFixture(t)
	svc := NewAssignmentService(AssignmentDependencies{
		GrievanceRepo: f.grievances,
		StaffRepo:     f.staff,
		UserRepo:      f.users,
		HistoryRepo:   f.history,
		Directory:     f.directory,
		Dispatcher:    f.dispatcher,
	})
	return f, svc
}

func TestAssignHappyPath(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	f.addStaffMember("ADM1", "Hostel", true)
	g := f.submit(t, "STU1", "Hostel")

	assigned, warning, err := svc.Assign(context.Background(), "ADM1", g.ID, "STF1", "2026-10-01")
	require.NoError(t, err)
	assert.Empty(t, warning)

	assert.Equal(t, domain.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, "STF1", *assigned.AssignedTo)
	require.NotNil(t, assigned.AssignedBy)
	assert.Equal(t, "ADM1", *assigned.AssignedBy)
	require.NotNil(t, assigned.AssignedRole)
	assert.Equal(t, "staff", *assigned.AssignedRole)
	require.NotNil(t, assigned.DeadlineDate)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *assigned.DeadlineDate)

	// assignment publishes an event but mails nobody; the notification
	// service has no handler for it
	assert.Len(t, f.dispatcher.byType(events.EventGrievanceAssigned), 1)

	entries, err := f.history.ListByGrievance(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeTypeAssignee, entries[0].ChangeType)
}

func TestAssignWithoutDeadline(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	g := f.submit(t, "STU1", "Hostel")

	assigned, warning, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF1", "")
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, domain.StatusAssigned, assigned.Status)
	assert.Equal(t, "STF1", *assigned.AssignedTo)
	assert.Nil(t, assigned.DeadlineDate)
}

func TestAssignSelfAssignmentForbidden(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	g := f.submit(t, "STU1", "Hostel")

	_, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STU1", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "INVALID_ASSIGNMENT"))
}

func TestAssignUnknownGrievance(t *testing.T) {
	_, svc := newAssignmentFixture(t)
	_, _, err := svc.Assign(context.Background(), testMasterID, "missing", "STF1", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAssignUnknownStaff(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	g := f.submit(t, "STU1", "Hostel")

	_, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "nobody", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAssignResolvesStaffFromUserDirectory(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	// user exists but has no staff record yet
	f.users.put(domain.User{ID: "STF9", FullName: "New Hire", Status: domain.UserStatusActive})
	g := f.submit(t, "STU1", "Hostel")

	assigned, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF9", "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, "STF9", *assigned.AssignedTo)
}

func TestAssignAuthorization(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	f.addStaffMember("ADM2", "Library", true)
	g := f.submit(t, "STU1", "Hostel")

	// plain staff cannot assign
	_, _, err := svc.Assign(context.Background(), "STF1", g.ID, "STF1", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	// admin of another department cannot assign
	_, _, err = svc.Assign(context.Background(), "ADM2", g.ID, "STF1", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))
}

func TestAssignInvalidDeadline(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	g := f.submit(t, "STU1", "Hostel")

	_, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF1", "soon")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAssignDeadlineBeforeSubmissionWarnsButProceeds(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	g := f.submit(t, "STU1", "Hostel")

	past := g.CreatedAt.AddDate(0, 0, -3).Format("2006-01-02")
	assigned, warning, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF1", past)
	require.NoError(t, err)

	assert.NotEmpty(t, warning)
	assert.Equal(t, domain.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.DeadlineDate)
}

func TestAssignTerminalGrievanceRejected(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	g := f.submit(t, "STU1", "Hostel")
	g.Status = domain.StatusRejected
	require.NoError(t, f.grievances.Update(context.Background(), g))

	_, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF1", "2026-10-01")
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestAssignReassignmentOverwrites(t *testing.T) {
	f, svc := newAssignmentFixture(t)
	f.addStudent("STU1")
	f.addStaffMember("STF1", "", false)
	f.addStaffMember("STF2", "", false)
	g := f.submit(t, "STU1", "Hostel")

	_, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF1", "2026-10-01")
	require.NoError(t, err)
	assigned, _, err := svc.Assign(context.Background(), testMasterID, g.ID, "STF2", "2026-10-05")
	require.NoError(t, err)

	assert.Equal(t, "STF2", *assigned.AssignedTo)
	entries, err := f.history.ListByGrievance(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
