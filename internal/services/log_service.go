package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
	"tenantadmin/internal/repositories"
)

type LogService struct {
	Store repositories.LogStore
	Now   func() time.Time
}

func (s LogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

// Log stores item and returns its id. An id already set on item is kept, so callers can
// hand out the id before the write.
func (s LogService) Log(ctx context.Context, item models.LogItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Type == "" {
		item.Type = models.LogInfo
	}
	item.CreatedOn = s.now()
	if err := s.Store.Insert(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

func (s LogService) Get(ctx context.Context, p auth.Principal, id string) (models.LogItem, error) {
	scope, err := auth.Enforce(p, auth.TenantResources)
	if err != nil {
		return models.LogItem{}, err
	}
	return s.Store.Get(ctx, scope.TenantID, id)
}

func (s LogService) List(ctx context.Context, p auth.Principal, spec query.FilterSpec) (query.PagedResult[models.LogItem], error) {
	spec, scope, err := auth.ScopeFilter(p, auth.TenantResources, query.Logs, spec)
	if err != nil {
		return query.PagedResult[models.LogItem]{}, err
	}
	plan, err := query.Compile(query.Logs, spec, scope)
	if err != nil {
		return query.PagedResult[models.LogItem]{}, err
	}
	return query.Paginate[models.LogItem](ctx, query.Logs.Name, plan, s.Store)
}
