package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		HTTP:   HTTPConfig{RequestTimeout: 5 * time.Second},
		Postgres: PostgresConfig{
			Host: "localhost", Port: 5432,
			User: "postgres", Password: "postgres", DBName: "branch_content_review_db",
			SSLMode: "disable",
		},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	noPort := validConfig()
	noPort.Server.Port = 0
	require.Error(t, noPort.Validate())

	noCreds := validConfig()
	noCreds.Postgres.Password = ""
	require.Error(t, noCreds.Validate())

	noDeadline := validConfig()
	noDeadline.HTTP.RequestTimeout = 0
	require.Error(t, noDeadline.Validate())
}

func TestServerAddr(t *testing.T) {
	require.Equal(t, "0.0.0.0:8080", validConfig().ServerAddr())
}

func TestPostgresDSN(t *testing.T) {
	dsn := validConfig().Postgres.DSN()
	require.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=branch_content_review_db sslmode=disable", dsn)
}
