package db

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// BuildDSN converts a ConnectionConfig to a go-sql-driver DSN.
func BuildDSN(config *sprocc.ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = config.Username
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	cfg.DBName = config.Database
	cfg.Timeout = config.ConnectTimeout

	if config.TLSMode != "" {
		cfg.TLSConfig = config.TLSMode
	}

	// Token-based auth sends the token through the cleartext plugin,
	// which the driver only permits when explicitly allowed.
	if config.AuthMethod != sprocc.AuthMethodStandard {
		cfg.AllowCleartextPasswords = true
		if cfg.TLSConfig == "" {
			cfg.TLSConfig = "preferred"
		}
	}

	if len(config.AdditionalParams) > 0 {
		cfg.Params = make(map[string]string, len(config.AdditionalParams))
		for k, v := range config.AdditionalParams {
			cfg.Params[k] = v
		}
	}

	return cfg.FormatDSN()
}
