package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Backend is the selector from the CI matrix, e.g. "postgres-10+postgis".
	Backend    string
	ConfigFile string
	Database   struct {
		Name     string
		Username string
		Password string
	}
	MySQL struct {
		AdminDSN string
	}
	Postgres struct {
		AdminDSN string
	}
	// SkipServiceRestart disables the version-pinned postgresql restart,
	// for hosts where the server lifecycle is managed externally
	// (containers, managed CI services).
	SkipServiceRestart bool
}

// Load reads config from environment (EDEN_ prefix) and optional eden-dbsetup.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("eden-dbsetup")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("config_file", "models/000_config.py")
	v.SetDefault("database.name", "sahana")
	v.SetDefault("database.username", "travis")
	v.SetDefault("database.password", "")
	v.SetDefault("mysql.admin_dsn", "root@tcp(127.0.0.1:3306)/")
	v.SetDefault("postgres.admin_dsn", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")

	cfg := &Config{}
	cfg.Backend = v.GetString("db")
	cfg.ConfigFile = v.GetString("config_file")
	cfg.Database.Name = v.GetString("database.name")
	cfg.Database.Username = v.GetString("database.username")
	cfg.Database.Password = v.GetString("database.password")
	cfg.MySQL.AdminDSN = v.GetString("mysql.admin_dsn")
	cfg.Postgres.AdminDSN = v.GetString("postgres.admin_dsn")
	cfg.SkipServiceRestart = v.GetBool("skip_service_restart")

	if cfg.ConfigFile == "" {
		return nil, fmt.Errorf("EDEN_CONFIG_FILE must not be empty")
	}
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("EDEN_DATABASE_NAME must not be empty")
	}
	if cfg.Database.Username == "" {
		return nil, fmt.Errorf("EDEN_DATABASE_USERNAME must not be empty")
	}

	return cfg, nil
}
