package query

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"tenantadmin/internal/domain"
)

// Record is one raw document returned by an executor.
type Record interface {
	Decode(dst any) error
}

// Result is the single-round-trip output of a plan: the page and the filtered total.
type Result struct {
	Records []Record
	Total   int64
}

// Executor runs a QueryPlan against a named collection in one atomic request.
type Executor interface {
	Execute(ctx context.Context, collection string, plan QueryPlan) (Result, error)
}

// PagedResult is a page of items plus totals.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// TotalPages is ceil(total/size); zero items means zero pages.
func TotalPages(total int64, size int) int64 {
	if total <= 0 || size <= 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}

// maxRetries bounds retries of transient store failures.
const maxRetries = 2

// Paginate executes plan through exec and decodes the page into T.
// Transient store failures are retried until ctx ends; cancellation yields a CanceledError
// and never a partial page.
func Paginate[T any](ctx context.Context, collection string, plan QueryPlan, exec Executor) (PagedResult[T], error) {
	start := time.Now()

	var res Result
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		r, err := exec.Execute(ctx, collection, plan)
		if err != nil {
			if !retryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		res = r
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 2 * time.Second
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		err = classify(collection, err)
		observe(collection, err, start)
		return PagedResult[T]{}, err
	}

	items := make([]T, 0, len(res.Records))
	for _, rec := range res.Records {
		var item T
		if err := rec.Decode(&item); err != nil {
			err = domain.StoreError{Op: collection + ": decode", CorrelationID: uuid.NewString(), Err: err}
			observe(collection, err, start)
			return PagedResult[T]{}, err
		}
		items = append(items, item)
	}

	observe(collection, nil, start)
	return PagedResult[T]{
		Items:      items,
		Page:       plan.Page,
		PageSize:   plan.PageSize,
		TotalItems: res.Total,
		TotalPages: TotalPages(res.Total, plan.PageSize),
	}, nil
}

func retryable(err error) bool {
	var se domain.StoreError
	return errors.As(err, &se) && se.Retryable
}

func classify(collection string, err error) error {
	var ce domain.CanceledError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.CanceledError{Op: collection, Err: err}
	}
	var se domain.StoreError
	if errors.As(err, &se) {
		if se.CorrelationID == "" {
			se.CorrelationID = uuid.NewString()
		}
		return se
	}
	return err
}
