package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

func newApprovalServiceForTest(t *testing.T, db *gorm.DB) (ApprovalService, *recordingNotifier) {
	t.Helper()
	users := repository.NewUserRepository(db)
	requests := repository.NewApprovalRequestRepository(db)
	activity := NewActivityService(repository.NewActivityLogRepository(db), users, zerolog.Nop())
	notifier := &recordingNotifier{}
	return NewApprovalService(users, requests, activity, notifier, newValidator(), zerolog.Nop()), notifier
}

func seedRequest(t *testing.T, db *gorm.DB, user models.User) models.ApprovalRequest {
	t.Helper()
	request := models.ApprovalRequest{UserID: user.ID}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func TestApproveTransitionsUser(t *testing.T) {
	db := setupTestDB(t)
	svc, notifier := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	applicant := seedUser(t, db, models.RoleStudent, models.StatusPending, nil)
	request := seedRequest(t, db, applicant)

	require.NoError(t, svc.Approve(ctx, dean.ID, request.ID))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", applicant.ID).Error)
	require.Equal(t, models.StatusApproved, updated.Status)
	require.False(t, updated.Archived)

	require.Contains(t, notifier.kinds, "users.approved")

	var entries int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("action = ?", models.ActivityUserApproved).Count(&entries).Error)
	require.Equal(t, int64(1), entries)
}

func TestApproveIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	applicant := seedUser(t, db, models.RoleStudent, models.StatusPending, nil)
	request := seedRequest(t, db, applicant)

	require.NoError(t, svc.Approve(ctx, dean.ID, request.ID))

	err := svc.Approve(ctx, dean.ID, request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	err = svc.Reject(ctx, dean.ID, request.ID, dto.RejectUserRequest{Reason: "changed my mind"})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	// The approval survives the failed reversal.
	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", applicant.ID).Error)
	require.Equal(t, models.StatusApproved, updated.Status)
}

func TestRejectArchivesUser(t *testing.T) {
	db := setupTestDB(t)
	svc, notifier := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	applicant := seedUser(t, db, models.RoleManager, models.StatusPending, nil)
	request := seedRequest(t, db, applicant)

	require.NoError(t, svc.Reject(ctx, dean.ID, request.ID, dto.RejectUserRequest{Reason: "unknown affiliation"}))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", applicant.ID).Error)
	require.Equal(t, models.StatusRejected, updated.Status)
	require.True(t, updated.Archived)

	require.Contains(t, notifier.kinds, "users.rejected")

	// Rejected users vanish from the pending queue.
	listing, total, err := repository.NewApprovalRequestRepository(db).ListUnprocessed(ctx, repository.PendingRequestFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, listing)
}

func TestRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	applicant := seedUser(t, db, models.RoleStudent, models.StatusPending, nil)
	request := seedRequest(t, db, applicant)

	err := svc.Reject(ctx, dean.ID, request.ID, dto.RejectUserRequest{})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestApproveSelfForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	request := seedRequest(t, db, dean)

	err := svc.Approve(ctx, dean.ID, request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestPendingManagerCannotDecide(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	company := seedCompany(t, db, "Acme")
	pendingManager := seedUser(t, db, models.RoleManager, models.StatusPending, &company.ID)
	applicant := seedUser(t, db, models.RoleManager, models.StatusPending, &company.ID)
	request := seedRequest(t, db, applicant)

	err := svc.Approve(ctx, pendingManager.ID, request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// But the pending manager may still watch the queue.
	listing, err2 := svc.ListPending(ctx, pendingManager.ID, 1, 10)
	require.NoError(t, err2)
	require.Len(t, listing.Items, 1)
}

func TestManagerCannotDecideAcrossUnits(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	acme := seedCompany(t, db, "Acme")
	globex := seedCompany(t, db, "Globex")
	manager := seedUser(t, db, models.RoleManager, models.StatusApproved, &acme.ID)
	applicant := seedUser(t, db, models.RoleManager, models.StatusPending, &globex.ID)
	request := seedRequest(t, db, applicant)

	err := svc.Approve(ctx, manager.ID, request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestListPendingScopesManagers(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	acme := seedCompany(t, db, "Acme")
	globex := seedCompany(t, db, "Globex")
	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	acmeManager := seedUser(t, db, models.RoleManager, models.StatusApproved, &acme.ID)

	acmeApplicant := seedUser(t, db, models.RoleManager, models.StatusPending, &acme.ID)
	globexApplicant := seedUser(t, db, models.RoleManager, models.StatusPending, &globex.ID)
	student := seedUser(t, db, models.RoleStudent, models.StatusPending, nil)
	seedRequest(t, db, acmeApplicant)
	seedRequest(t, db, globexApplicant)
	seedRequest(t, db, student)

	deanView, err := svc.ListPending(ctx, dean.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, deanView.Items, 3)

	managerView, err := svc.ListPending(ctx, acmeManager.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, managerView.Items, 1)
	require.Equal(t, acmeApplicant.ID, managerView.Items[0].UserID)
}

func TestListPendingUnassignedManagerConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	manager := seedUser(t, db, models.RoleManager, models.StatusApproved, nil)

	_, err := svc.ListPending(ctx, manager.ID, 1, 10)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestApproveUnknownRequestNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newApprovalServiceForTest(t, db)
	ctx := context.Background()

	dean := seedUser(t, db, models.RoleDean, models.StatusApproved, nil)
	applicant := seedUser(t, db, models.RoleStudent, models.StatusPending, nil)
	request := seedRequest(t, db, applicant)
	require.NoError(t, db.Delete(&request).Error)

	err := svc.Approve(ctx, dean.ID, request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
