package db

import (
	"fmt"
	"net/url"

	"github.com/fundbridge/donate/pkg/config"
)

// DriverName maps the configured driver to the database/sql driver name.
func DriverName(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "pgx" {
		return "pgx"
	}
	return "postgres"
}

func GetDBDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}
