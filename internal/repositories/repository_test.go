package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
)

func TestTenantRepositoryGetByDomain(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(loose("SELECT id, name, domain, disabled, created_on, updated_on FROM tenants WHERE domain = ?", "LIMIT 1")).
		WithArgs("acme.example.com").
		WillReturnRows(sqlmock.NewRows(tenantColumns).AddRow("t-1", "acme", "acme.example.com", false, created, nil))

	tenant, err := TenantRepository{DB: db}.GetByDomain(context.Background(), "acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, "t-1", tenant.ID)
	assert.Equal(t, "acme", tenant.Name)
	assert.Nil(t, tenant.UpdatedOn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM tenants WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(tenantColumns))
	mock.ExpectQuery("SELECT 1 FROM tenants WHERE id = ?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := TenantRepository{DB: db}
	_, err = repo.Get(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Tenant does not exist", err.Error())

	ok, err := repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryUpdateSetsOnlyPresentFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	disabled := true
	mock.ExpectExec(loose("UPDATE tenants SET disabled = ?, updated_on = ? WHERE id = ?")).
		WithArgs(true, now, "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tenants").
		WithArgs(true, now, "t-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := TenantRepository{DB: db}
	require.NoError(t, repo.Update(context.Background(), "t-1", models.TenantUpdate{Disabled: &disabled}, now))
	err = repo.Update(context.Background(), "t-2", models.TenantUpdate{Disabled: &disabled}, now)
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectExec("INSERT INTO tenants").
		WithArgs("t-1", "acme", "acme.example.com", false, created).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'acme.example.com' for key 'domain'"})

	err = TenantRepository{DB: db}.Create(context.Background(), models.Tenant{ID: "t-1", Name: "acme", Domain: "acme.example.com", CreatedOn: created})
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryCreateWithAdmin(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	tenant := models.Tenant{ID: "t-1", Name: "acme", Domain: "acme.example.com", CreatedOn: created}
	admin := models.User{ID: "u-1", TenantID: &tenant.ID, Username: "administrator", Firstname: "Tenant", Lastname: "Administrator", Role: domain.RoleAdmin, CreatedOn: created}

	t.Run("commits both rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO users").
			WithArgs("u-1", "t-1", "administrator", "hash", "Tenant", "Administrator", domain.RoleAdmin, false, created).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, TenantRepository{DB: db}.CreateWithAdmin(context.Background(), tenant, admin, "hash"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the administrator fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO users").WillReturnError(mysql.ErrInvalidConn)
		mock.ExpectRollback()

		err = TenantRepository{DB: db}.CreateWithAdmin(context.Background(), tenant, admin, "hash")
		require.Error(t, err)
		assert.True(t, domain.IsStore(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepositoryScopesByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(loose("FROM users WHERE id = ? AND tenant_id = ?", "LIMIT 1")).
		WithArgs("u-1", "A").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "A", "administrator", "Ada", "Admin", int64(2), false, created, created))
	mock.ExpectExec(loose("DELETE FROM users WHERE id = ? AND tenant_id = ?")).
		WithArgs("u-1", "B").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := UserRepository{DB: db}
	u, err := repo.Get(context.Background(), "A", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Tenant())
	assert.Equal(t, domain.RoleAdmin, u.Role)
	require.NotNil(t, u.UpdatedOn)

	err = repo.Delete(context.Background(), "B", "u-1")
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDuplicateSuperUserIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-2", nil, "superuser", "hash", "", "", domain.RoleSuperUser, false, created).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '-superuser' for key 'users.uq_users_tenant_key_username'"})

	err = UserRepository{DB: db}.Create(context.Background(), models.User{ID: "u-2", Username: "superuser", Role: domain.RoleSuperUser, CreatedOn: created}, "hash")
	assert.True(t, domain.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCredentialsForSuperUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(loose("SELECT id, tenant_id, username, role, password, disabled FROM users WHERE username = ? AND tenant_id IS NULL")).
		WithArgs("superuser").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "username", "role", "password", "disabled"}).
			AddRow("root", nil, "superuser", int64(1), "$2a$10$hash", false))

	c, err := UserRepository{DB: db}.Credentials(context.Background(), "", "superuser")
	require.NoError(t, err)
	assert.Nil(t, c.TenantID)
	assert.Equal(t, domain.RoleSuperUser, c.Role)
	assert.Equal(t, "$2a$10$hash", c.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLLogStoreRoundTripsRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	item := models.LogItem{
		ID: "log-1", TenantID: "A", UserID: "u-1", Username: "administrator",
		Type: models.LogError, Message: "boom", CreatedOn: created,
		Request: &models.LogRequest{Method: "POST", URL: "/api/v1/users", StatusCode: 500},
	}
	payload := `{"method":"POST","url":"/api/v1/users","status_code":500}`

	mock.ExpectExec("INSERT INTO logs").
		WithArgs("log-1", "A", "u-1", "administrator", "error", "boom", payload, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(loose("FROM logs WHERE id = ? AND tenant_id = ?")).
		WithArgs("log-1", "A").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "user_id", "username", "type", "message", "request", "created_on"}).
			AddRow("log-1", "A", "u-1", "administrator", "error", "boom", payload, created))

	store := NewSQLLogStore(db)
	require.NoError(t, store.Insert(context.Background(), item))
	got, err := store.Get(context.Background(), "A", "log-1")
	require.NoError(t, err)
	assert.Equal(t, item, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLActivityStoreInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectExec("INSERT INTO user_activity").
		WithArgs("a-1", "A", "u-1", "administrator", "DELETE", "/api/v1/users/u-2", "u-2", "", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewSQLActivityStore(db).Insert(context.Background(), models.UserActivity{
		ID: "a-1", TenantID: "A", UserID: "u-1", Username: "administrator",
		Action: "DELETE", Path: "/api/v1/users/u-2", Reference: "u-2", CreatedOn: created,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
