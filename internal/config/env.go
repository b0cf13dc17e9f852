package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Env struct {
	AppAddr string
	GinMode string

	LogLevel string
	LogJSON  bool

	MySQLDSN      string
	MongoURI      string
	MongoDatabase string
	ActivityStore string

	JWTSecret    string
	JWTTTL       time.Duration
	QueryTimeout time.Duration

	CORSAllowedOrigins []string

	DefaultTenantName   string
	DefaultTenantDomain string
	SuperUser           string
	SuperUserPassword   string
}

const (
	StoreMySQL = "mysql"
	StoreMongo = "mongo"
	// StoreMemory keeps activities and logs in process; they are lost on restart.
	StoreMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("mysql_dsn", "root:@tcp(127.0.0.1:3306)/tenantadmin?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s")
	v.SetDefault("mongo_uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo_database", "tenantadmin")
	v.SetDefault("activity_store", StoreMySQL)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", "8640h")
	v.SetDefault("query_timeout", "10s")
	v.SetDefault("cors_allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("default_tenant_name", "default")
	v.SetDefault("default_tenant_domain", "localhost")
	v.SetDefault("super_user", "")
	v.SetDefault("super_user_password", "")
}

// LoadEnv reads configuration from the process environment, after loading an optional .env file.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Env, error) {
	env := Env{
		AppAddr:             strings.TrimSpace(v.GetString("app_addr")),
		GinMode:             strings.TrimSpace(v.GetString("gin_mode")),
		LogLevel:            strings.TrimSpace(v.GetString("log_level")),
		LogJSON:             v.GetBool("log_json"),
		MySQLDSN:            strings.TrimSpace(v.GetString("mysql_dsn")),
		MongoURI:            strings.TrimSpace(v.GetString("mongo_uri")),
		MongoDatabase:       strings.TrimSpace(v.GetString("mongo_database")),
		ActivityStore:       strings.ToLower(strings.TrimSpace(v.GetString("activity_store"))),
		JWTSecret:           v.GetString("jwt_secret"),
		JWTTTL:              v.GetDuration("jwt_ttl"),
		QueryTimeout:        v.GetDuration("query_timeout"),
		DefaultTenantName:   strings.TrimSpace(v.GetString("default_tenant_name")),
		DefaultTenantDomain: strings.TrimSpace(v.GetString("default_tenant_domain")),
		SuperUser:           strings.TrimSpace(v.GetString("super_user")),
		SuperUserPassword:   v.GetString("super_user_password"),
	}
	for _, o := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			env.CORSAllowedOrigins = append(env.CORSAllowedOrigins, o)
		}
	}

	if env.JWTSecret == "" {
		return env, errors.New("JWT_SECRET is required")
	}
	switch env.ActivityStore {
	case StoreMySQL, StoreMongo, StoreMemory:
	default:
		return env, errors.New("ACTIVITY_STORE must be mysql, mongo or memory")
	}
	if env.JWTTTL <= 0 {
		return env, errors.New("JWT_TTL must be positive")
	}
	if env.QueryTimeout <= 0 {
		return env, errors.New("QUERY_TIMEOUT must be positive")
	}
	return env, nil
}
