package repositories

import (
	"context"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

var (
	_ ActivityStore = (*MemoryActivityStore)(nil)
	_ LogStore      = (*MemoryLogStore)(nil)
)

// MemoryActivityStore keeps activities in process for local runs.
type MemoryActivityStore struct {
	*query.MemoryExecutor
}

func NewMemoryActivityStore(mem *query.MemoryExecutor) *MemoryActivityStore {
	return &MemoryActivityStore{MemoryExecutor: mem}
}

func (s *MemoryActivityStore) Insert(ctx context.Context, a models.UserActivity) error {
	if err := ctx.Err(); err != nil {
		return domain.CanceledError{Op: "activities.insert", Err: err}
	}
	s.MemoryExecutor.Insert(query.Activities.Name, map[string]any{
		"_id":        a.ID,
		"tenant_id":  a.TenantID,
		"user_id":    a.UserID,
		"username":   a.Username,
		"action":     a.Action,
		"path":       a.Path,
		"reference":  a.Reference,
		"message":    a.Message,
		"created_on": a.CreatedOn,
	})
	return nil
}

// MemoryLogStore keeps log items in process for local runs.
type MemoryLogStore struct {
	*query.MemoryExecutor
}

func NewMemoryLogStore(mem *query.MemoryExecutor) *MemoryLogStore {
	return &MemoryLogStore{MemoryExecutor: mem}
}

func (s *MemoryLogStore) Insert(ctx context.Context, item models.LogItem) error {
	if err := ctx.Err(); err != nil {
		return domain.CanceledError{Op: "logs.insert", Err: err}
	}
	doc := map[string]any{
		"_id":        item.ID,
		"tenant_id":  item.TenantID,
		"user_id":    item.UserID,
		"username":   item.Username,
		"type":       item.Type,
		"message":    item.Message,
		"created_on": item.CreatedOn,
	}
	if item.Request != nil {
		req := *item.Request
		doc["request"] = &req
	}
	s.MemoryExecutor.Insert(query.Logs.Name, doc)
	return nil
}

func (s *MemoryLogStore) Get(ctx context.Context, tenantID, id string) (models.LogItem, error) {
	if err := ctx.Err(); err != nil {
		return models.LogItem{}, domain.CanceledError{Op: "logs.get", Err: err}
	}
	doc, ok := s.Find(query.Logs.Name, func(d query.MapRecord) bool {
		return d["_id"] == id && d["tenant_id"] == tenantID
	})
	if !ok {
		return models.LogItem{}, domain.NotFoundError{Resource: logResource}
	}
	var item models.LogItem
	if err := doc.Decode(&item); err != nil {
		return models.LogItem{}, domain.StoreError{Op: "logs.get", Err: err}
	}
	return item, nil
}
