package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
	"tenantadmin/internal/repositories"
)

// ActivityService records and lists what users did.
type ActivityService struct {
	Store  repositories.ActivityStore
	Logger *zap.Logger
	Now    func() time.Time
}

func (s ActivityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

// Record stores a, assigning its id and timestamp.
func (s ActivityService) Record(ctx context.Context, a models.UserActivity) (string, error) {
	a.ID = uuid.NewString()
	a.CreatedOn = s.now()
	if err := s.Store.Insert(ctx, a); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("activity not recorded", zap.String("path", a.Path), zap.Error(err))
		}
		return "", err
	}
	return a.ID, nil
}

func (s ActivityService) List(ctx context.Context, p auth.Principal, spec query.FilterSpec) (query.PagedResult[models.UserActivity], error) {
	spec, scope, err := auth.ScopeFilter(p, auth.TenantResources, query.Activities, spec)
	if err != nil {
		return query.PagedResult[models.UserActivity]{}, err
	}
	plan, err := query.Compile(query.Activities, spec, scope)
	if err != nil {
		return query.PagedResult[models.UserActivity]{}, err
	}
	return query.Paginate[models.UserActivity](ctx, query.Activities.Name, plan, s.Store)
}

// ExportPDF renders the filtered page as a PDF report.
func (s ActivityService) ExportPDF(ctx context.Context, p auth.Principal, spec query.FilterSpec) ([]byte, string, error) {
	page, err := s.List(ctx, p, spec)
	if err != nil {
		return nil, "", err
	}
	return buildActivityReportPDF(p.TenantID(), page, s.now())
}
