package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.ApprovalRequest{},
		&models.Event{},
		&models.Registration{},
		&models.ActivityLog{},
	))
	return db
}

func createCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	company := models.Company{Name: name}
	require.NoError(t, db.Create(&company).Error)
	return company
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, status models.Status, companyID *uuid.UUID) models.User {
	t.Helper()
	user := models.User{
		Name:      "Test " + string(role),
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password:  "hashed",
		Role:      role,
		Status:    status,
		CompanyID: companyID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createEvent(t *testing.T, db *gorm.DB, manager models.User, start time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Title:     "Open Day",
		StartTime: start,
		Location:  "Main hall",
		ManagerID: manager.ID,
		CompanyID: *manager.CompanyID,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestUserRepositoryCreateWithRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{
		Name:     "Applicant",
		Email:    "applicant@example.com",
		Password: "hashed",
		Role:     models.RoleStudent,
		Status:   models.StatusRegistered,
	}
	require.NoError(t, repo.CreateWithRequest(ctx, &user))

	var request models.ApprovalRequest
	require.NoError(t, db.First(&request, "user_id = ?", user.ID).Error)
	require.False(t, request.Processed)

	// Filing the request leaves the account pending, in memory and in the row.
	require.Equal(t, models.StatusPending, user.Status)
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusPending, stored.Status)

	duplicate := models.User{
		Name:     "Applicant Again",
		Email:    "applicant@example.com",
		Password: "hashed",
		Role:     models.RoleStudent,
		Status:   models.StatusRegistered,
	}
	err := repo.CreateWithRequest(ctx, &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestApprovalRequestRepositoryProcessIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApprovalRequestRepository(db)
	ctx := context.Background()

	user := createUser(t, db, models.RoleStudent, models.StatusPending, nil)
	request := models.ApprovalRequest{UserID: user.ID}
	require.NoError(t, db.Create(&request).Error)

	require.NoError(t, repo.Process(ctx, request.ID, ProcessOutcome{UserStatus: models.StatusApproved}))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusApproved, updated.Status)
	require.False(t, updated.Archived)

	// A second decision loses the compare-and-set.
	reason := "too late"
	err := repo.Process(ctx, request.ID, ProcessOutcome{RejectionReason: &reason, UserStatus: models.StatusRejected, ArchiveUser: true})
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusApproved, updated.Status)
}

func TestApprovalRequestRepositoryProcessRejectArchivesUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApprovalRequestRepository(db)
	ctx := context.Background()

	user := createUser(t, db, models.RoleManager, models.StatusPending, nil)
	request := models.ApprovalRequest{UserID: user.ID}
	require.NoError(t, db.Create(&request).Error)

	reason := "unknown company affiliation"
	require.NoError(t, repo.Process(ctx, request.ID, ProcessOutcome{
		RejectionReason: &reason,
		UserStatus:      models.StatusRejected,
		ArchiveUser:     true,
	}))

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusRejected, updated.Status)
	require.True(t, updated.Archived)

	var processed models.ApprovalRequest
	require.NoError(t, db.First(&processed, "id = ?", request.ID).Error)
	require.True(t, processed.Processed)
	require.NotNil(t, processed.RejectionReason)
	require.Equal(t, reason, *processed.RejectionReason)
}

func TestApprovalRequestRepositoryListUnprocessedScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApprovalRequestRepository(db)
	ctx := context.Background()

	acme := createCompany(t, db, "Acme")
	globex := createCompany(t, db, "Globex")

	acmeManager := createUser(t, db, models.RoleManager, models.StatusPending, &acme.ID)
	globexManager := createUser(t, db, models.RoleManager, models.StatusPending, &globex.ID)
	student := createUser(t, db, models.RoleStudent, models.StatusPending, nil)
	archived := createUser(t, db, models.RoleStudent, models.StatusRejected, nil)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", archived.ID).Update("archived", true).Error)

	for _, userID := range []uuid.UUID{acmeManager.ID, globexManager.ID, student.ID, archived.ID} {
		require.NoError(t, db.Create(&models.ApprovalRequest{UserID: userID}).Error)
	}

	all, total, err := repo.ListUnprocessed(ctx, PendingRequestFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total, "archived users are invisible")
	require.Len(t, all, 3)

	scoped, total, err := repo.ListUnprocessed(ctx, PendingRequestFilter{CompanyID: &acme.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, scoped, 1)
	require.Equal(t, acmeManager.ID, scoped[0].UserID)
	require.NotNil(t, scoped[0].User)
	require.Equal(t, acmeManager.Email, scoped[0].User.Email)
}

func TestRegistrationRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	company := createCompany(t, db, "Acme")
	manager := createUser(t, db, models.RoleManager, models.StatusApproved, &company.ID)
	student := createUser(t, db, models.RoleStudent, models.StatusApproved, nil)
	event := createEvent(t, db, manager, time.Now().Add(24*time.Hour))

	registration := models.Registration{StudentID: student.ID, EventID: event.ID, RegisteredAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &registration))

	// The unique (student, event) index rejects a duplicate row.
	duplicate := models.Registration{StudentID: student.ID, EventID: event.ID, RegisteredAt: time.Now()}
	require.ErrorIs(t, repo.Create(ctx, &duplicate), gorm.ErrDuplicatedKey)

	// Active rows cannot be reactivated.
	require.ErrorIs(t, repo.Reactivate(ctx, registration.ID, time.Now()), ErrRegistrationActive)

	require.NoError(t, repo.Deactivate(ctx, registration.ID, time.Now()))
	require.ErrorIs(t, repo.Deactivate(ctx, registration.ID, time.Now()), ErrRegistrationInactive)

	// Re-registration reuses the same row.
	require.NoError(t, repo.Reactivate(ctx, registration.ID, time.Now()))

	found, err := repo.FindByStudentAndEvent(ctx, student.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, registration.ID, found.ID)
	require.True(t, found.Active())

	var count int64
	require.NoError(t, db.Model(&models.Registration{}).Where("student_id = ? AND event_id = ?", student.ID, event.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegistrationRepositoryActiveListings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	company := createCompany(t, db, "Acme")
	manager := createUser(t, db, models.RoleManager, models.StatusApproved, &company.ID)
	alice := createUser(t, db, models.RoleStudent, models.StatusApproved, nil)
	bob := createUser(t, db, models.RoleStudent, models.StatusApproved, nil)
	event := createEvent(t, db, manager, time.Now().Add(24*time.Hour))

	active := models.Registration{StudentID: alice.ID, EventID: event.ID, RegisteredAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &active))

	left := time.Now()
	inactive := models.Registration{StudentID: bob.ID, EventID: event.ID, RegisteredAt: time.Now(), UnregisteredAt: &left}
	require.NoError(t, repo.Create(ctx, &inactive))

	byEvent, err := repo.ListActiveByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	require.Equal(t, alice.ID, byEvent[0].StudentID)
	require.NotNil(t, byEvent[0].Student)

	byStudent, total, err := repo.ListActiveByStudent(ctx, alice.ID, RegistrationFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, byStudent, 1)
	require.NotNil(t, byStudent[0].Event)
	require.Equal(t, event.ID, byStudent[0].Event.ID)
}

func TestCompanyRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()

	company := createCompany(t, db, "Acme")
	manager := createUser(t, db, models.RoleManager, models.StatusApproved, &company.ID)
	require.NoError(t, db.Create(&models.ApprovalRequest{UserID: manager.ID}).Error)
	student := createUser(t, db, models.RoleStudent, models.StatusApproved, nil)
	event := createEvent(t, db, manager, time.Now().Add(24*time.Hour))
	require.NoError(t, db.Create(&models.Registration{StudentID: student.ID, EventID: event.ID, RegisteredAt: time.Now()}).Error)

	require.NoError(t, repo.Delete(ctx, company.ID))

	for _, probe := range []struct {
		name  string
		model interface{}
		where string
		arg   interface{}
	}{
		{"company", &models.Company{}, "id = ?", company.ID},
		{"manager", &models.User{}, "id = ?", manager.ID},
		{"request", &models.ApprovalRequest{}, "user_id = ?", manager.ID},
		{"event", &models.Event{}, "id = ?", event.ID},
		{"registration", &models.Registration{}, "event_id = ?", event.ID},
	} {
		var count int64
		require.NoError(t, db.Model(probe.model).Where(probe.where, probe.arg).Count(&count).Error)
		require.Zero(t, count, probe.name)
	}

	// Students outside the company survive.
	var survivors int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", student.ID).Count(&survivors).Error)
	require.Equal(t, int64(1), survivors)
}

func TestEventRepositoryListFiltersByCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	acme := createCompany(t, db, "Acme")
	globex := createCompany(t, db, "Globex")
	acmeManager := createUser(t, db, models.RoleManager, models.StatusApproved, &acme.ID)
	globexManager := createUser(t, db, models.RoleManager, models.StatusApproved, &globex.ID)

	early := createEvent(t, db, acmeManager, time.Now().Add(time.Hour))
	createEvent(t, db, globexManager, time.Now().Add(2*time.Hour))

	all, total, err := repo.List(ctx, EventFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, all, 2)
	require.Equal(t, early.ID, all[0].ID, "events are ordered by start time")

	scoped, total, err := repo.List(ctx, EventFilter{CompanyID: &acme.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, scoped, 1)
	require.Equal(t, early.ID, scoped[0].ID)
}

func TestEventRepositoryDeleteRemovesRegistrations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	company := createCompany(t, db, "Acme")
	manager := createUser(t, db, models.RoleManager, models.StatusApproved, &company.ID)
	student := createUser(t, db, models.RoleStudent, models.StatusApproved, nil)
	event := createEvent(t, db, manager, time.Now().Add(time.Hour))
	require.NoError(t, db.Create(&models.Registration{StudentID: student.ID, EventID: event.ID, RegisteredAt: time.Now()}).Error)

	require.NoError(t, repo.Delete(ctx, event.ID))

	var count int64
	require.NoError(t, db.Model(&models.Registration{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Zero(t, count)

	require.ErrorIs(t, repo.Delete(ctx, event.ID), gorm.ErrRecordNotFound)
}
