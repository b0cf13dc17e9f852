package repositories

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

const activityResource = "Activity"

// ActivityStore persists user activity and lists it through query plans.
type ActivityStore interface {
	query.Executor
	Insert(ctx context.Context, a models.UserActivity) error
}

var (
	_ ActivityStore = (*SQLActivityStore)(nil)
	_ ActivityStore = (*MongoActivityStore)(nil)
)

type SQLActivityStore struct {
	*SQLExecutor
	stbl sq.StatementBuilderType
}

func NewSQLActivityStore(db *sql.DB) *SQLActivityStore {
	return &SQLActivityStore{
		SQLExecutor: NewSQLExecutor(db, query.Activities),
		stbl:        sq.StatementBuilder.RunWith(db),
	}
}

func (s *SQLActivityStore) Insert(ctx context.Context, a models.UserActivity) error {
	_, err := s.stbl.Insert(tableOf(query.Activities.Name)).
		Columns("id", "tenant_id", "user_id", "username", "action", "path", "reference", "message", "created_on").
		Values(a.ID, a.TenantID, a.UserID, a.Username, a.Action, a.Path, a.Reference, a.Message, a.CreatedOn).
		ExecContext(ctx)
	return handleSQLError("activities.insert", activityResource, err)
}

type MongoActivityStore struct {
	*MongoExecutor
	coll *mongod.Collection
}

func NewMongoActivityStore(db *mongod.Database) *MongoActivityStore {
	return &MongoActivityStore{
		MongoExecutor: NewMongoExecutor(db, query.Activities),
		coll:          db.Collection(query.Activities.Name),
	}
}

func (s *MongoActivityStore) Insert(ctx context.Context, a models.UserActivity) error {
	_, err := s.coll.InsertOne(ctx, a)
	return handleMongoError("activities.insert", activityResource, err)
}
