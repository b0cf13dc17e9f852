package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/config"
	"tenantadmin/internal/query"
	"tenantadmin/internal/repositories"
	"tenantadmin/internal/services"
	"tenantadmin/internal/utils"
)

// app holds the long-lived collaborators shared by the subcommands.
type app struct {
	env    config.Env
	logger *zap.Logger
	db     *sql.DB
	mongo  *mongo.Client

	tenants    services.TenantService
	users      services.UserService
	activities services.ActivityService
	logs       services.LogService
}

func newApp(ctx context.Context) (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(env.LogLevel, env.LogJSON)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := config.ConnectDB(ctx, env.MySQLDSN, logger)
	if err != nil {
		return nil, err
	}
	a := &app{env: env, logger: logger, db: db}

	var (
		activityStore repositories.ActivityStore = repositories.NewSQLActivityStore(db)
		logStore      repositories.LogStore      = repositories.NewSQLLogStore(db)
	)
	switch env.ActivityStore {
	case config.StoreMongo:
		a.mongo, err = config.ConnectMongo(ctx, env.MongoURI, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		mdb := a.mongo.Database(env.MongoDatabase)
		activityStore = repositories.NewMongoActivityStore(mdb)
		logStore = repositories.NewMongoLogStore(mdb)
	case config.StoreMemory:
		logger.Warn("activities and logs are kept in memory and lost on restart")
		mem := query.NewMemoryExecutor()
		activityStore = repositories.NewMemoryActivityStore(mem)
		logStore = repositories.NewMemoryLogStore(mem)
	}

	tenantRepo := repositories.TenantRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}
	executor := repositories.NewSQLExecutor(db, query.Tenants, query.Users)

	a.tenants = services.TenantService{Tenants: tenantRepo, Users: userRepo, Executor: executor, Logger: logger}
	a.users = services.UserService{
		Tenants:  tenantRepo,
		Users:    userRepo,
		Executor: executor,
		Issuer:   auth.NewIssuer(env.JWTSecret, env.JWTTTL),
	}
	a.activities = services.ActivityService{Store: activityStore, Logger: logger}
	a.logs = services.LogService{Store: logStore}
	return a, nil
}

func (a *app) seed(ctx context.Context) error {
	return services.Seeder{Tenants: a.tenants, Users: a.users, Logger: a.logger}.Seed(ctx, services.SeedConfig{
		TenantName:        a.env.DefaultTenantName,
		TenantDomain:      a.env.DefaultTenantDomain,
		SuperUser:         a.env.SuperUser,
		SuperUserPassword: a.env.SuperUserPassword,
	})
}

// ping checks every store the app talks to.
func (a *app) ping(ctx context.Context) error {
	err := a.db.PingContext(ctx)
	if a.mongo != nil {
		err = errors.Join(err, a.mongo.Ping(ctx, nil))
	}
	return err
}

func (a *app) close() {
	if a.mongo != nil {
		if err := a.mongo.Disconnect(context.Background()); err != nil {
			a.logger.Warn("mongo disconnect", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("mysql close", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
