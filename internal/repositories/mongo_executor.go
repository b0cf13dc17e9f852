package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/query"
)

// MongoExecutor runs query plans as one aggregation whose $facet stage yields
// the page and the total from the same filtered set.
type MongoExecutor struct {
	db          *mongod.Database
	collections map[string]query.Collection
}

func NewMongoExecutor(db *mongod.Database, collections ...query.Collection) *MongoExecutor {
	byName := make(map[string]query.Collection, len(collections))
	for _, c := range collections {
		byName[c.Name] = c
	}
	return &MongoExecutor{db: db, collections: byName}
}

type facetResult struct {
	Items []bson.Raw `bson:"items"`
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// rawRecord decodes through bson tags.
type rawRecord bson.Raw

func (r rawRecord) Decode(dst any) error {
	return bson.Unmarshal(r, dst)
}

func (e *MongoExecutor) Execute(ctx context.Context, collection string, plan query.QueryPlan) (query.Result, error) {
	if _, ok := e.collections[collection]; !ok {
		return query.Result{}, domain.StoreError{Op: collection, Err: fmt.Errorf("unknown collection %q", collection)}
	}

	pipeline, err := Pipeline(plan)
	if err != nil {
		return query.Result{}, domain.StoreError{Op: collection + ": compile", Err: err}
	}

	cur, err := e.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return query.Result{}, handleMongoError(collection, collection, err)
	}
	var out []facetResult
	if err := cur.All(ctx, &out); err != nil {
		return query.Result{}, handleMongoError(collection, collection, err)
	}

	res := query.Result{Records: []query.Record{}}
	if len(out) == 0 {
		return res, nil
	}
	for _, raw := range out[0].Items {
		res.Records = append(res.Records, rawRecord(raw))
	}
	if len(out[0].Total) > 0 {
		res.Total = out[0].Total[0].Count
	}
	return res, nil
}

// Pipeline translates plan into an aggregation pipeline.
func Pipeline(plan query.QueryPlan) (mongod.Pipeline, error) {
	pipeline := mongod.Pipeline{}
	for _, s := range plan.Stages {
		switch s.Kind {
		case query.StageMatchEqual:
			conds := bson.A{}
			for _, eq := range s.Equal {
				conds = append(conds, bson.D{{Key: eq.Field, Value: eq.Value}})
			}
			pipeline = append(pipeline, match(conds))
		case query.StageMatchRegex:
			conds := bson.A{}
			for _, re := range s.Regex {
				conds = append(conds, bson.D{{Key: re.Field, Value: bson.D{
					{Key: "$regex", Value: re.Pattern},
					{Key: "$options", Value: "i"},
				}}})
			}
			pipeline = append(pipeline, match(conds))
		case query.StageMatchRange:
			conds := bson.A{}
			for _, b := range s.Range {
				conds = append(conds, bson.D{{Key: b.Field, Value: bson.D{
					{Key: "$gte", Value: b.Low},
					{Key: "$lte", Value: b.High},
				}}})
			}
			pipeline = append(pipeline, match(conds))
		case query.StageSort:
			if len(s.Sort) == 0 {
				continue
			}
			keys := bson.D{}
			for _, k := range s.Sort {
				dir := 1
				if k.Order == query.Descending {
					dir = -1
				}
				keys = append(keys, bson.E{Key: k.Field, Value: dir})
			}
			pipeline = append(pipeline, bson.D{{Key: "$sort", Value: keys}})
		default:
			return nil, fmt.Errorf("unsupported stage %s", s.Kind)
		}
	}

	items, err := facetStages(plan.Items)
	if err != nil {
		return nil, err
	}
	total, err := facetStages(plan.Total)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || len(total) == 0 {
		return nil, errors.New("plan has an empty facet")
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "items", Value: items},
		{Key: "total", Value: total},
	}}})
	return pipeline, nil
}

// match builds a $match stage; an empty condition list matches everything.
func match(conds bson.A) bson.D {
	if len(conds) == 0 {
		return bson.D{{Key: "$match", Value: bson.D{}}}
	}
	return bson.D{{Key: "$match", Value: bson.D{{Key: "$and", Value: conds}}}}
}

func facetStages(stages []query.Stage) (bson.A, error) {
	out := bson.A{}
	for _, s := range stages {
		switch s.Kind {
		case query.StageSkip:
			out = append(out, bson.D{{Key: "$skip", Value: s.N}})
		case query.StageLimit:
			if s.N <= 0 {
				return nil, fmt.Errorf("invalid limit %d", s.N)
			}
			out = append(out, bson.D{{Key: "$limit", Value: s.N}})
		case query.StageCount:
			out = append(out, bson.D{{Key: "$count", Value: "count"}})
		default:
			return nil, fmt.Errorf("unsupported facet stage %s", s.Kind)
		}
	}
	return out, nil
}

// mongoInvalidRegex is the server code for a $regex it cannot compile.
const mongoInvalidRegex = 51091

// handleMongoError maps driver errors onto the domain taxonomy.
func handleMongoError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongod.ErrNoDocuments) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.CanceledError{Op: op, Err: err}
	}
	if mongod.IsDuplicateKeyError(err) {
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	}
	var se mongod.ServerError
	if errors.As(err, &se) && se.HasErrorCode(mongoInvalidRegex) {
		ve := errUnsupportedPattern
		ve.Err = err
		return ve
	}
	return domain.StoreError{
		Op:        op,
		Retryable: mongod.IsNetworkError(err) || mongod.IsTimeout(err),
		Err:       err,
	}
}
