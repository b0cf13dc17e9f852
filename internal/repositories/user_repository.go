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

const userResource = "User"

var userColumns = []string{"id", "tenant_id", "username", "firstname", "lastname", "role", "disabled", "created_on", "updated_on"}

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) stbl() sq.StatementBuilderType {
	return sq.StatementBuilder.RunWith(r.DB)
}

func scanUser(row sq.RowScanner) (models.User, error) {
	var u models.User
	var tenant sql.NullString
	var updated sql.NullTime
	if err := row.Scan(&u.ID, &tenant, &u.Username, &u.Firstname, &u.Lastname, &u.Role, &u.Disabled, &u.CreatedOn, &updated); err != nil {
		return models.User{}, err
	}
	if tenant.Valid {
		u.TenantID = &tenant.String
	}
	if updated.Valid {
		u.UpdatedOn = &updated.Time
	}
	return u, nil
}

// tenantEq matches the tenant column; an empty tenant means the super user's NULL tenant.
func tenantEq(tenantID string) sq.Eq {
	if tenantID == "" {
		return sq.Eq{"tenant_id": nil}
	}
	return sq.Eq{"tenant_id": tenantID}
}

// Get returns the user with id inside tenantID.
func (r UserRepository) Get(ctx context.Context, tenantID, id string) (models.User, error) {
	row := r.stbl().Select(userColumns...).From("users").
		Where(sq.Eq{"id": id}).
		Where(tenantEq(tenantID)).
		Limit(1).
		QueryRowContext(ctx)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, handleSQLError("users.get", userResource, err)
	}
	return u, nil
}

func (r UserRepository) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	return r.exists(ctx, "users.exists", sq.And{sq.Eq{"id": id}, tenantEq(tenantID)})
}

func (r UserRepository) UsernameExists(ctx context.Context, tenantID, username string) (bool, error) {
	return r.exists(ctx, "users.username_exists", sq.And{sq.Eq{"username": username}, tenantEq(tenantID)})
}

func (r UserRepository) SuperRoleExists(ctx context.Context) (bool, error) {
	return r.exists(ctx, "users.super_exists", sq.Eq{"role": domain.RoleSuperUser})
}

func (r UserRepository) exists(ctx context.Context, op string, where sq.Sqlizer) (bool, error) {
	var one int
	err := r.stbl().Select("1").From("users").Where(where).Limit(1).QueryRowContext(ctx).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, handleSQLError(op, userResource, err)
	}
	return true, nil
}

// Credentials loads what login needs for an enabled user of tenantID.
func (r UserRepository) Credentials(ctx context.Context, tenantID, username string) (models.Credentials, error) {
	var c models.Credentials
	var tenant sql.NullString
	err := r.stbl().Select("id", "tenant_id", "username", "role", "password", "disabled").
		From("users").
		Where(sq.Eq{"username": username}).
		Where(tenantEq(tenantID)).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&c.UserID, &tenant, &c.Username, &c.Role, &c.PasswordHash, &c.Disabled)
	if err != nil {
		return models.Credentials{}, handleSQLError("users.credentials", userResource, err)
	}
	if tenant.Valid {
		c.TenantID = &tenant.String
	}
	return c, nil
}

func insertUser(u models.User, passwordHash string) sq.InsertBuilder {
	return sq.Insert("users").
		Columns("id", "tenant_id", "username", "password", "firstname", "lastname", "role", "disabled", "created_on").
		Values(u.ID, u.TenantID, u.Username, passwordHash, u.Firstname, u.Lastname, u.Role, u.Disabled, u.CreatedOn)
}

// Create inserts u; passwordHash must already be hashed.
func (r UserRepository) Create(ctx context.Context, u models.User, passwordHash string) error {
	_, err := insertUser(u, passwordHash).RunWith(r.DB).ExecContext(ctx)
	return handleSQLError("users.create", userResource, err)
}

// Update sets only the fields present in upd. A password in upd must already be hashed.
func (r UserRepository) Update(ctx context.Context, tenantID, id string, upd models.UserUpdate, now time.Time) error {
	set := map[string]any{"updated_on": now}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}
	if upd.Firstname != nil {
		set["firstname"] = *upd.Firstname
	}
	if upd.Lastname != nil {
		set["lastname"] = *upd.Lastname
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.Disabled != nil {
		set["disabled"] = *upd.Disabled
	}
	res, err := r.stbl().Update("users").SetMap(set).
		Where(sq.Eq{"id": id}).
		Where(tenantEq(tenantID)).
		ExecContext(ctx)
	return affected("users.update", userResource, res, err)
}

func (r UserRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.stbl().Delete("users").
		Where(sq.Eq{"id": id}).
		Where(tenantEq(tenantID)).
		ExecContext(ctx)
	return affected("users.delete", userResource, res, err)
}

// DeleteByTenant removes every user of tenantID.
func (r UserRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	_, err := r.stbl().Delete("users").Where(sq.Eq{"tenant_id": tenantID}).ExecContext(ctx)
	return handleSQLError("users.delete_by_tenant", userResource, err)
}
