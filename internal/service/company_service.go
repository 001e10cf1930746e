package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/eventhub-api/internal/apperr"
	"github.com/noah-isme/eventhub-api/internal/dto"
	"github.com/noah-isme/eventhub-api/internal/models"
	"github.com/noah-isme/eventhub-api/internal/policy"
	"github.com/noah-isme/eventhub-api/internal/repository"
)

const companyDirectoryVersionKey = "companies:directory:ver"

// CompanyService manages the organizational directory. Listing for the
// sign-up form is public; everything else is dean territory, except that a
// manager may view their own company.
type CompanyService interface {
	List(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.CompanyPageResponse, error)
	Get(ctx context.Context, actorID, companyID uuid.UUID) (dto.CompanyResponse, error)
	Create(ctx context.Context, actorID uuid.UUID, payload dto.CompanyCreateRequest) (dto.CompanyResponse, error)
	Update(ctx context.Context, actorID, companyID uuid.UUID, payload dto.CompanyUpdateRequest) (dto.CompanyResponse, error)
	Delete(ctx context.Context, actorID, companyID uuid.UUID) error
	// ListForRegistration serves the public company picker on the sign-up
	// form. No authentication; results are cached.
	ListForRegistration(ctx context.Context, page, pageSize int) (dto.CompanyPageResponse, error)
}

type companyService struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	activity  ActivityService
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCompanyService constructs the company directory service.
func NewCompanyService(companies repository.CompanyRepository, users repository.UserRepository, activity ActivityService, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) CompanyService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &companyService{
		companies: companies,
		users:     users,
		activity:  activity,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "company_service").Logger(),
	}
}

func (s *companyService) List(ctx context.Context, actorID uuid.UUID, page, pageSize int) (dto.CompanyPageResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.CompanyPageResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceCompany}, policy.OpList)
	if !decision.Allowed {
		return dto.CompanyPageResponse{}, apperr.Forbidden(decision.Reason)
	}

	companies, total, err := s.companies.List(ctx, repository.CompanyFilter{Page: page, PageSize: pageSize})
	if err != nil {
		return dto.CompanyPageResponse{}, err
	}

	return dto.NewCompanyPageResponse(companies, page, pageSize, total), nil
}

func (s *companyService) Get(ctx context.Context, actorID, companyID uuid.UUID) (dto.CompanyResponse, error) {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.CompanyResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceCompany, CompanyID: &companyID}, policy.OpView)
	if !decision.Allowed {
		return dto.CompanyResponse{}, apperr.Forbidden(decision.Reason)
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompanyResponse{}, apperr.NotFound("company not found")
		}
		return dto.CompanyResponse{}, err
	}

	return dto.NewCompanyResponse(company), nil
}

func (s *companyService) Create(ctx context.Context, actorID uuid.UUID, payload dto.CompanyCreateRequest) (dto.CompanyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompanyResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.CompanyResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceCompany}, policy.OpCreate)
	if !decision.Allowed {
		return dto.CompanyResponse{}, apperr.Forbidden(decision.Reason)
	}

	company := models.Company{Name: payload.Name}
	if err := s.companies.Create(ctx, &company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CompanyResponse{}, apperr.Conflict("company name already exists")
		}
		return dto.CompanyResponse{}, err
	}

	s.invalidateDirectory(ctx)

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityCompanyCreated,
		EntityType: "company",
		EntityID:   &company.ID,
		Metadata:   map[string]interface{}{"name": company.Name},
	})

	s.logger.Info().Str("company_id", company.ID.String()).Msg("company created")

	return dto.NewCompanyResponse(company), nil
}

func (s *companyService) Update(ctx context.Context, actorID, companyID uuid.UUID, payload dto.CompanyUpdateRequest) (dto.CompanyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompanyResponse{}, apperr.Wrap(apperr.KindValidation, err, err.Error())
	}

	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return dto.CompanyResponse{}, err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceCompany, CompanyID: &companyID}, policy.OpUpdate)
	if !decision.Allowed {
		return dto.CompanyResponse{}, apperr.Forbidden(decision.Reason)
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompanyResponse{}, apperr.NotFound("company not found")
		}
		return dto.CompanyResponse{}, err
	}

	company.Name = payload.Name
	if err := s.companies.Save(ctx, &company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CompanyResponse{}, apperr.Conflict("company name already exists")
		}
		return dto.CompanyResponse{}, err
	}

	s.invalidateDirectory(ctx)

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityCompanyUpdated,
		EntityType: "company",
		EntityID:   &company.ID,
		Metadata:   map[string]interface{}{"name": company.Name},
	})

	return dto.NewCompanyResponse(company), nil
}

func (s *companyService) Delete(ctx context.Context, actorID, companyID uuid.UUID) error {
	actor, err := resolveActor(ctx, s.users, actorID)
	if err != nil {
		return err
	}

	decision := policy.Authorize(policy.ActorFromUser(actor), policy.Resource{Kind: policy.ResourceCompany, CompanyID: &companyID}, policy.OpDelete)
	if !decision.Allowed {
		return apperr.Forbidden(decision.Reason)
	}

	if err := s.companies.Delete(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	}

	s.invalidateDirectory(ctx)

	s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     models.ActivityCompanyDeleted,
		EntityType: "company",
		EntityID:   &companyID,
	})

	s.logger.Info().Str("company_id", companyID.String()).Msg("company deleted")

	return nil
}

func (s *companyService) ListForRegistration(ctx context.Context, page, pageSize int) (dto.CompanyPageResponse, error) {
	cacheKey := ""
	if s.cache != nil {
		cacheKey = s.directoryCacheKey(ctx, page, pageSize)
		if cacheKey != "" {
			if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
				var response dto.CompanyPageResponse
				if err := json.Unmarshal([]byte(cached), &response); err == nil {
					return response, nil
				}
			} else if err != nil && err != redis.Nil {
				s.logger.Warn().Err(err).Msg("company directory cache read failed")
			}
		}
	}

	companies, total, err := s.companies.List(ctx, repository.CompanyFilter{Page: page, PageSize: pageSize})
	if err != nil {
		return dto.CompanyPageResponse{}, err
	}

	response := dto.NewCompanyPageResponse(companies, page, pageSize, total)

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache company directory")
			}
		}
	}

	return response, nil
}

// directoryCacheKey embeds a generation counter so mutations invalidate every
// cached page with a single INCR instead of scanning keys.
func (s *companyService) directoryCacheKey(ctx context.Context, page, pageSize int) string {
	version, err := s.cache.Get(ctx, companyDirectoryVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}
	return fmt.Sprintf("companies:directory:v%d:%d:%d", version, page, pageSize)
}

func (s *companyService) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, companyDirectoryVersionKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate company directory cache")
	}
}
