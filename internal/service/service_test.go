package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
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

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	company := models.Company{Name: name}
	require.NoError(t, db.Create(&company).Error)
	return company
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, status models.Status, companyID *uuid.UUID) models.User {
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

func seedEvent(t *testing.T, db *gorm.DB, manager models.User, start time.Time, mutate func(*models.Event)) models.Event {
	t.Helper()
	event := models.Event{
		Title:     "Open Day",
		StartTime: start,
		Location:  "Main hall",
		ManagerID: manager.ID,
		CompanyID: *manager.CompanyID,
	}
	if mutate != nil {
		mutate(&event)
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

// recordingNotifier captures published notification kinds for assertions.
type recordingNotifier struct {
	kinds []string
}

func (n *recordingNotifier) UserApproved(models.User)                        { n.kinds = append(n.kinds, "users.approved") }
func (n *recordingNotifier) UserRejected(models.User, string)                { n.kinds = append(n.kinds, "users.rejected") }
func (n *recordingNotifier) EventCreated(models.Event)                       { n.kinds = append(n.kinds, "events.created") }
func (n *recordingNotifier) StudentRegistered(models.User, models.Event)     { n.kinds = append(n.kinds, "events.registered") }
func (n *recordingNotifier) StudentUnregistered(models.User, models.Event)   { n.kinds = append(n.kinds, "events.unregistered") }
