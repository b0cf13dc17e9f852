package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

const logResource = "Log"

// LogStore persists audit log items and lists them through query plans.
type LogStore interface {
	query.Executor
	Insert(ctx context.Context, item models.LogItem) error
	// Get returns the item with id inside tenantID. An empty tenantID matches items logged without one.
	Get(ctx context.Context, tenantID, id string) (models.LogItem, error)
}

var (
	_ LogStore = (*SQLLogStore)(nil)
	_ LogStore = (*MongoLogStore)(nil)
)

type SQLLogStore struct {
	*SQLExecutor
	stbl sq.StatementBuilderType
}

func NewSQLLogStore(db *sql.DB) *SQLLogStore {
	return &SQLLogStore{
		SQLExecutor: NewSQLExecutor(db, query.Logs),
		stbl:        sq.StatementBuilder.RunWith(db),
	}
}

func (s *SQLLogStore) Insert(ctx context.Context, item models.LogItem) error {
	var request any
	if item.Request != nil {
		b, err := json.Marshal(item.Request)
		if err != nil {
			return err
		}
		request = string(b)
	}
	_, err := s.stbl.Insert(query.Logs.Name).
		Columns("id", "tenant_id", "user_id", "username", "type", "message", "request", "created_on").
		Values(item.ID, item.TenantID, item.UserID, item.Username, item.Type, item.Message, request, item.CreatedOn).
		ExecContext(ctx)
	return handleSQLError("logs.insert", logResource, err)
}

func (s *SQLLogStore) Get(ctx context.Context, tenantID, id string) (models.LogItem, error) {
	var item models.LogItem
	var request sql.NullString
	err := s.stbl.Select("id", "tenant_id", "user_id", "username", "type", "message", "request", "created_on").
		From(query.Logs.Name).
		Where(sq.Eq{"id": id, "tenant_id": tenantID}).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&item.ID, &item.TenantID, &item.UserID, &item.Username, &item.Type, &item.Message, &request, &item.CreatedOn)
	if err != nil {
		return models.LogItem{}, handleSQLError("logs.get", logResource, err)
	}
	if request.Valid && request.String != "" {
		item.Request = &models.LogRequest{}
		if err := json.Unmarshal([]byte(request.String), item.Request); err != nil {
			return models.LogItem{}, handleSQLError("logs.get", logResource, err)
		}
	}
	return item, nil
}

type MongoLogStore struct {
	*MongoExecutor
	coll *mongod.Collection
}

func NewMongoLogStore(db *mongod.Database) *MongoLogStore {
	return &MongoLogStore{
		MongoExecutor: NewMongoExecutor(db, query.Logs),
		coll:          db.Collection(query.Logs.Name),
	}
}

func (s *MongoLogStore) Insert(ctx context.Context, item models.LogItem) error {
	_, err := s.coll.InsertOne(ctx, item)
	return handleMongoError("logs.insert", logResource, err)
}

func (s *MongoLogStore) Get(ctx context.Context, tenantID, id string) (models.LogItem, error) {
	var item models.LogItem
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "tenant_id", Value: tenantID}}).Decode(&item)
	if err != nil {
		return models.LogItem{}, handleMongoError("logs.get", logResource, err)
	}
	return item, nil
}

// EnsureMongoIndexes creates the indexes the activity and log collections are listed by.
func EnsureMongoIndexes(ctx context.Context, db *mongod.Database) error {
	for _, name := range []string{query.Activities.Name, query.Logs.Name} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongod.IndexModel{
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_on", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}}},
		})
		if err != nil {
			return handleMongoError(name+".indexes", name, err)
		}
	}
	return nil
}
