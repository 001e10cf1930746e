package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/observability"
	"github.com/noah-isme/eventhub-api/internal/policy"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

// EventService exposes the event lifecycle and the student registration
// workflow. Legality of every mutation is re-derived from current state at
// call time; there is no persisted draft/published status.
type EventService interface {
	List(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.EventPageResponse, error)
	Get(ctx context.Context, actorID, eventID uuid.UUID) (dto.EventResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, payload dto.EventCreateRequest) (dto.EventResponse, error)
	Update(ctx context.Context, actorID, eventID uuid.UUID, payload dto.EventUpdateRequest) (dto.EventResponse, error)
	Delete(ctx context.Context, actorID, eventID uuid.UUID) error
	Register(ctx context.Context, actorID, eventID uuid.UUID) error
	Unregister(ctx context.Context, actorID, eventID uuid.UUID) error
	Students(ctx context.Context, actorID, eventID uuid.UUID) ([]dto.StudentResponse, error)
}

type eventService struct {
	events        repository.EventRepository
	users         repository.UserRepository
	registrations repository.RegistrationRepository
	activity      ActivityService
	notifier      Notifier
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewEventService builds the event workflow service.
func NewEventService(events repository.EventRepository, users repository.UserRepository, registrations repository.RegistrationRepository, activity ActivityService, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		events:        events,
		users:         users,
		registrations: registrations,
		activity:      activity,
		notifier:      notifier,
		validator:     validate,
		sanitizer:     bluemonday.UGCPolicy(),
		logger:        logger.With().Str("component", "event_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/eventhub-api/internal/service/event"),
		now:           time.Now,
	}
}

func (s *eventService) List(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.EventPageResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.EventPageResponse{}, err
	}

	if actor.Role == models.RoleManager && actor.CompanyID == nil {
		return dto.EventPageResponse{}, apperr.Conflict("manager is not assigned to any company")
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceEvent, CompanyID: actor.CompanyID}, policy.OpList)
	if !decision.Allowed {
		return dto.EventPageResponse{}, apperr.Forbidden(decision.Reason)
	}

	filter := repository.EventFilter{Page: page, PageSize: pageSize}
	if actor.Role == models.RoleManager {
		filter.CompanyID = actor.CompanyID
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return dto.EventPageResponse{}, err
	}

	return dto.NewEventPageResponse(events, page, pageSize, total), nil
}

func (s *eventService) Get(ctx context.Context, actorID, eventID uuid.UUID) (dto.EventResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), eventResource(event), policy.OpView)
	if !decision.Allowed {
		return dto.EventResponse{}, apperr.Forbidden(decision.Reason)
	}

	return dto.NewEventResponse(event), nil
}

func (s *eventService) Create(ctx context.Context, actorID uuid.UUID, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	if actor.Role == models.RoleManager && actor.CompanyID == nil {
		return dto.EventResponse{}, apperr.Conflict("manager is not assigned to any company")
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceEvent, CompanyID: actor.CompanyID}, policy.OpCreate)
	if !decision.Allowed {
		return dto.EventResponse{}, apperr.Forbidden(decision.Reason)
	}

	if actor.CompanyID == nil {
		return dto.EventResponse{}, apperr.Conflict("manager is not assigned to any company")
	}

	startTime, err := parseRequiredTime(payload.StartTime, "start time")
	if err != nil {
		return dto.EventResponse{}, err
	}

	endTime, err := parseOptionalTime(payload.EndTime, "end time")
	if err != nil {
		return dto.EventResponse{}, err
	}

	deadline, err := parseOptionalTime(payload.RegistrationDeadline, "registration deadline")
	if err != nil {
		return dto.EventResponse{}, err
	}

	event := models.Event{
		Title:                payload.Title,
		Description:          s.sanitizer.Sanitize(payload.Description),
		StartTime:            startTime,
		EndTime:              endTime,
		Location:             payload.Location,
		RegistrationDeadline: deadline,
		ManagerID:            actor.ID,
		CompanyID:            *actor.CompanyID,
	}

	if err := validateEventTimes(event); err != nil {
		return dto.EventResponse{}, err
	}

	if err := s.events.Create(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	event.Company = actor.Company

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityEventCreated,
		EntityType: "event",
		EntityID:   &event.ID,
		Metadata:   map[string]interface{}{"title": event.Title},
	})
	s.notifier.EventCreated(event)

	s.logger.Info().Str("event_id", event.ID.String()).Str("manager_id", actor.ID.String()).Msg("event created")

	return dto.NewEventResponse(event), nil
}

func (s *eventService) Update(ctx context.Context, actorID, eventID uuid.UUID, payload dto.EventUpdateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), eventResource(event), policy.OpUpdate)
	if !decision.Allowed {
		return dto.EventResponse{}, apperr.Forbidden(decision.Reason)
	}

	if payload.Title != nil {
		event.Title = *payload.Title
	}
	if payload.Description != nil {
		event.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Location != nil {
		event.Location = *payload.Location
	}
	if payload.StartTime != nil {
		startTime, err := parseRequiredTime(*payload.StartTime, "start time")
		if err != nil {
			return dto.EventResponse{}, err
		}
		event.StartTime = startTime
	}
	if payload.EndTime != nil {
		endTime, err := parseOptionalTime(*payload.EndTime, "end time")
		if err != nil {
			return dto.EventResponse{}, err
		}
		event.EndTime = endTime
	}
	if payload.RegistrationDeadline != nil {
		deadline, err := parseOptionalTime(*payload.RegistrationDeadline, "registration deadline")
		if err != nil {
			return dto.EventResponse{}, err
		}
		event.RegistrationDeadline = deadline
	}

	// The merged event must satisfy the temporal invariants as a whole; a
	// partial update is rejected wholesale rather than partially applied.
	if err := validateEventTimes(event); err != nil {
		return dto.EventResponse{}, err
	}

	if err := s.events.Save(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityEventUpdated,
		EntityType: "event",
		EntityID:   &event.ID,
		Metadata:   map[string]interface{}{"title": event.Title},
	})

	s.logger.Info().Str("event_id", event.ID.String()).Msg("event updated")

	return dto.NewEventResponse(event), nil
}

func (s *eventService) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), eventResource(event), policy.OpDelete)
	if !decision.Allowed {
		return apperr.Forbidden(decision.Reason)
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("event not found")
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityEventDeleted,
		EntityType: "event",
		EntityID:   &eventID,
		Metadata:   map[string]interface{}{"title": event.Title},
	})

	s.logger.Info().Str("event_id", eventID.String()).Msg("event deleted")

	return nil
}

func (s *eventService) Register(ctx context.Context, actorID, eventID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "events.register", trace.WithAttributes(
		attribute.String("event.id", eventID.String()),
		attribute.String("student.id", actorID.String()),
	))
	defer span.End()

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceRegistration, OwnerID: actor.ID}, policy.OpRegister)
	if !decision.Allowed {
		return apperr.Forbidden(decision.Reason)
	}

	now := s.now()
	if event.RegistrationClosed(now) {
		return apperr.Validation("registration deadline has passed")
	}
	if event.Ended(now) {
		return apperr.Validation("event has already ended")
	}

	registration, err := s.registrations.FindByStudentAndEvent(ctx, actor.ID, eventID)
	switch {
	case err == nil:
		if registration.Active() {
			return apperr.Conflict("student is already registered")
		}
		if err := s.registrations.Reactivate(ctx, registration.ID, now); err != nil {
			if errors.Is(err, repository.ErrRegistrationActive) {
				return apperr.Conflict("student is already registered")
			}
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		registration = models.Registration{
			StudentID:    actor.ID,
			EventID:      eventID,
			RegisteredAt: now,
		}
		if err := s.registrations.Create(ctx, &registration); err != nil {
			// The unique (student, event) index settles concurrent first-time
			// registrations; the loser surfaces as a conflict.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("student is already registered")
			}
			return err
		}
	default:
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityEventRegistered,
		EntityType: "event",
		EntityID:   &eventID,
		Metadata:   map[string]interface{}{"title": event.Title},
	})
	s.notifier.StudentRegistered(actor, event)
	observability.Registrations().WithLabelValues("registered").Inc()

	s.logger.Info().Str("event_id", eventID.String()).Str("student_id", actor.ID.String()).Msg("student registered")

	return nil
}

func (s *eventService) Unregister(ctx context.Context, actorID, eventID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "events.unregister", trace.WithAttributes(
		attribute.String("event.id", eventID.String()),
		attribute.String("student.id", actorID.String()),
	))
	defer span.End()

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceRegistration, OwnerID: actor.ID}, policy.OpUnregister)
	if !decision.Allowed {
		return apperr.Forbidden(decision.Reason)
	}

	registration, err := s.registrations.FindByStudentAndEvent(ctx, actor.ID, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("you are not registered for this event")
		}
		return err
	}

	if !registration.Active() {
		return apperr.Validation("you have already unregistered from this event")
	}

	// Unregistering is gated by the start time, not the registration
	// deadline: leaving stays possible until the event begins.
	now := s.now()
	if event.Started(now) {
		return apperr.Validation("cannot unregister after the event has started")
	}

	if err := s.registrations.Deactivate(ctx, registration.ID, now); err != nil {
		if errors.Is(err, repository.ErrRegistrationInactive) {
			return apperr.Validation("you have already unregistered from this event")
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityEventUnregistered,
		EntityType: "event",
		EntityID:   &eventID,
		Metadata:   map[string]interface{}{"title": event.Title},
	})
	s.notifier.StudentUnregistered(actor, event)
	observability.Registrations().WithLabelValues("unregistered").Inc()

	s.logger.Info().Str("event_id", eventID.String()).Str("student_id", actor.ID.String()).Msg("student unregistered")

	return nil
}

func (s *eventService) Students(ctx context.Context, actorID, eventID uuid.UUID) ([]dto.StudentResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resource := policy.Resource{
		Kind:      policy.ResourceRegistration,
		CompanyID: &event.CompanyID,
		ManagerID: event.ManagerID,
	}
	decision := policy.Authorize(policy.ActorFromUser(actor), resource, policy.OpListRegistrants)
	if !decision.Allowed {
		return nil, apperr.Forbidden(decision.Reason)
	}

	registrations, err := s.registrations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	students := make([]dto.StudentResponse, 0, len(registrations))
	for _, registration := range registrations {
		if registration.Student == nil {
			continue
		}
		students = append(students, dto.StudentResponse{
			ID:    registration.Student.ID,
			Name:  registration.Student.Name,
			Email: registration.Student.Email,
		})
	}

	return students, nil
}

func (s *eventService) loadEvent(ctx context.Context, eventID uuid.UUID) (models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, apperr.NotFound("event not found")
		}
		return models.Event{}, err
	}
	return event, nil
}

func eventResource(event models.Event) policy.Resource {
	return policy.Resource{
		Kind:      policy.ResourceEvent,
		CompanyID: &event.CompanyID,
		ManagerID: event.ManagerID,
	}
}

func validateEventTimes(event models.Event) error {
	if event.EndTime != nil && event.EndTime.Before(event.StartTime) {
		return apperr.Validation("end time cannot be before start time")
	}
	if event.RegistrationDeadline != nil && event.RegistrationDeadline.After(event.StartTime) {
		return apperr.Validation("registration deadline cannot be after event start time")
	}
	return nil
}

func parseRequiredTime(value, field string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid %s: %v", field, err)
	}
	return parsed, nil
}

func parseOptionalTime(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperr.Validationf("invalid %s: %v", field, err)
	}
	return &parsed, nil
}
