package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEmptyPathYieldsDemoConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Companies, 3)
	assert.Equal(t, "Divinator", cfg.Companies[0].Name)
	assert.Equal(t, 10000.0, cfg.InitialCash)
	assert.Empty(t, cfg.Traders)
	assert.Equal(t, 8080, cfg.QuotePort)
	assert.Equal(t, 8089, cfg.AuditPort)
	assert.Equal(t, 256, cfg.BusBuffer)
	assert.True(t, cfg.DropOnStart)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "audit", cfg.Database.Database)
}

func TestLoadResolvesFileValues(t *testing.T) {
	path := writeConfig(t, `{
		"companies": [
			{"name": "Divinator", "symbol": "DVN", "period": 1000, "variation": 50, "price": 25.5, "volume": 3000}
		],
		"portfolio": {"cash": 5000},
		"traders": [{"company": "Divinator", "shares": 4}],
		"http": {"quotePort": 9090, "auditPort": 9091},
		"bus": {"buffer": 64},
		"database": {"host": "db", "port": 5433, "user": "market", "database": "trades", "dropOnStart": false}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Companies, 1)
	assert.Equal(t, time.Second, cfg.Companies[0].Period)
	assert.Equal(t, 25.5, cfg.Companies[0].Price)
	assert.Equal(t, 5000.0, cfg.InitialCash)
	require.Len(t, cfg.Traders, 1)
	assert.Equal(t, 4, cfg.Traders[0].Shares)
	assert.Equal(t, 9090, cfg.QuotePort)
	assert.Equal(t, 9091, cfg.AuditPort)
	assert.Equal(t, 64, cfg.BusBuffer)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "market", cfg.Database.User)
	assert.Equal(t, "trades", cfg.Database.Database)
	assert.False(t, cfg.DropOnStart)
}

func TestLoadRejectsMissingCompanyName(t *testing.T) {
	path := writeConfig(t, `{"companies": [{"symbol": "DVN"}]}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "has no name")
}

func TestLoadRejectsEmptyCompanies(t *testing.T) {
	path := writeConfig(t, `{"companies": []}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "no companies configured")
}

func TestLoadRejectsBadTrader(t *testing.T) {
	path := writeConfig(t, `{
		"companies": [{"name": "Divinator"}],
		"traders": [{"company": "Divinator", "shares": 0}]
	}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "shares must be > 0")
}

func TestLoadRejectsNegativeCash(t *testing.T) {
	path := writeConfig(t, `{
		"companies": [{"name": "Divinator"}],
		"portfolio": {"cash": -1}
	}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "initial cash must be >= 0")
}

func TestDatabaseEnvOverrides(t *testing.T) {
	t.Setenv("DB_USERNAME", "auditor")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "auditor", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
}
