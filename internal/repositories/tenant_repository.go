package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
)

const tenantResource = "Tenant"

var tenantColumns = []string{"id", "name", "domain", "disabled", "created_on", "updated_on"}

type TenantRepository struct {
	DB *sql.DB
}

func (r TenantRepository) stbl() sq.StatementBuilderType {
	return sq.StatementBuilder.RunWith(r.DB)
}

func scanTenant(row sq.RowScanner) (models.Tenant, error) {
	var t models.Tenant
	var updated sql.NullTime
	if err := row.Scan(&t.ID, &t.Name, &t.Domain, &t.Disabled, &t.CreatedOn, &updated); err != nil {
		return models.Tenant{}, err
	}
	if updated.Valid {
		t.UpdatedOn = &updated.Time
	}
	return t, nil
}

// Any reports whether at least one tenant exists.
func (r TenantRepository) Any(ctx context.Context) (bool, error) {
	var one int
	err := r.stbl().Select("1").From("tenants").Limit(1).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, handleSQLError("tenants.any", tenantResource, err)
	}
	return true, nil
}

// GetByName returns the enabled tenant with the given name.
func (r TenantRepository) GetByName(ctx context.Context, name string) (models.Tenant, error) {
	return r.getWhere(ctx, "tenants.get_by_name", sq.Eq{"name": name, "disabled": false})
}

func (r TenantRepository) GetByDomain(ctx context.Context, domainName string) (models.Tenant, error) {
	return r.getWhere(ctx, "tenants.get_by_domain", sq.Eq{"domain": domainName})
}

func (r TenantRepository) Get(ctx context.Context, id string) (models.Tenant, error) {
	return r.getWhere(ctx, "tenants.get", sq.Eq{"id": id})
}

func (r TenantRepository) getWhere(ctx context.Context, op string, where sq.Eq) (models.Tenant, error) {
	row := r.stbl().Select(tenantColumns...).From("tenants").Where(where).Limit(1).QueryRowContext(ctx)
	t, err := scanTenant(row)
	if err != nil {
		return models.Tenant{}, handleSQLError(op, tenantResource, err)
	}
	return t, nil
}

func (r TenantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.stbl().Select("1").From("tenants").Where(sq.Eq{"id": id}).Limit(1).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, handleSQLError("tenants.exists", tenantResource, err)
	}
	return true, nil
}

func insertTenant(t models.Tenant) sq.InsertBuilder {
	return sq.Insert("tenants").
		Columns("id", "name", "domain", "disabled", "created_on").
		Values(t.ID, t.Name, t.Domain, t.Disabled, t.CreatedOn)
}

func (r TenantRepository) Create(ctx context.Context, t models.Tenant) error {
	_, err := insertTenant(t).RunWith(r.DB).ExecContext(ctx)
	return handleSQLError("tenants.create", tenantResource, err)
}

// CreateWithAdmin stores t and its administrator in one transaction; either both rows exist or neither.
func (r TenantRepository) CreateWithAdmin(ctx context.Context, t models.Tenant, admin models.User, passwordHash string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return handleSQLError("tenants.create", tenantResource, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = insertTenant(t).RunWith(tx).ExecContext(ctx); err != nil {
		return handleSQLError("tenants.create", tenantResource, err)
	}
	if _, err = insertUser(admin, passwordHash).RunWith(tx).ExecContext(ctx); err != nil {
		return handleSQLError("users.create", userResource, err)
	}
	if err = tx.Commit(); err != nil {
		return handleSQLError("tenants.create", tenantResource, err)
	}
	return nil
}

// Update sets only the fields present in upd.
func (r TenantRepository) Update(ctx context.Context, id string, upd models.TenantUpdate, now time.Time) error {
	set := map[string]any{"updated_on": now}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Domain != nil {
		set["domain"] = *upd.Domain
	}
	if upd.Disabled != nil {
		set["disabled"] = *upd.Disabled
	}
	res, err := r.stbl().Update("tenants").SetMap(set).Where(sq.Eq{"id": id}).ExecContext(ctx)
	return affected("tenants.update", tenantResource, res, err)
}

// Replace overwrites every mutable field, keeping id and created_on.
func (r TenantRepository) Replace(ctx context.Context, t models.Tenant, now time.Time) error {
	res, err := r.stbl().Update("tenants").
		Set("name", t.Name).
		Set("domain", t.Domain).
		Set("disabled", t.Disabled).
		Set("updated_on", now).
		Where(sq.Eq{"id": t.ID}).
		ExecContext(ctx)
	return affected("tenants.replace", tenantResource, res, err)
}

func (r TenantRepository) Delete(ctx context.Context, id string) error {
	res, err := r.stbl().Delete("tenants").Where(sq.Eq{"id": id}).ExecContext(ctx)
	return affected("tenants.delete", tenantResource, res, err)
}

// affected turns a zero-row write into NotFound.
func affected(op, resource string, res sql.Result, err error) error {
	if err != nil {
		return handleSQLError(op, resource, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return handleSQLError(op, resource, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
