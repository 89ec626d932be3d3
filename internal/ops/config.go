// Package ops loads and validates the deployment configuration.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/quote"
	"main/pkg/conn"
)

const (
	defaultInitialCash = 10000.0
	defaultQuotePort   = 8080
	defaultAuditPort   = 8089
	defaultBusBuffer   = 256
	defaultDBUser      = "postgres"
	defaultDBName      = "audit"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Companies []CompanyConfig `json:"companies"`
	Portfolio PortfolioConfig `json:"portfolio"`
	Traders   []TraderConfig  `json:"traders"`
	HTTP      HTTPConfig      `json:"http"`
	Bus       BusConfig       `json:"bus"`
	Database  DatabaseConfig  `json:"database"`
}

// CompanyConfig describes one simulated company.
type CompanyConfig struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Period    int64   `json:"period"`
	Variation int     `json:"variation"`
	Price     float64 `json:"price"`
	Volume    int     `json:"volume"`
}

// PortfolioConfig describes the ledger's starting state.
type PortfolioConfig struct {
	Cash *float64 `json:"cash"`
}

// TraderConfig describes one trading agent.
type TraderConfig struct {
	Company string `json:"company"`
	Shares  int    `json:"shares"`
}

// HTTPConfig holds the query endpoint ports.
type HTTPConfig struct {
	QuotePort int `json:"quotePort"`
	AuditPort int `json:"auditPort"`
}

// BusConfig holds bus tuning.
type BusConfig struct {
	Buffer int `json:"buffer"`
}

// DatabaseConfig holds the audit store connection parameters.
type DatabaseConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password"`
	Database    string `json:"database"`
	SSLMode     string `json:"sslMode"`
	DropOnStart *bool  `json:"dropOnStart"`
}

// TraderSpec is a resolved agent definition.
type TraderSpec struct {
	Company string
	Shares  int
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Companies   []quote.Company
	InitialCash float64
	Traders     []TraderSpec
	QuotePort   int
	AuditPort   int
	BusBuffer   int
	Database    conn.Option
	DropOnStart bool
}

// Load reads a JSON config file and resolves defaults. An empty path yields
// the built-in demo configuration.
func Load(path string) (Loaded, error) {
	if path == "" {
		return defaultLoaded(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	if len(cfg.Companies) == 0 {
		return Loaded{}, fmt.Errorf("no companies configured")
	}
	companies := make([]quote.Company, 0, len(cfg.Companies))
	for i, c := range cfg.Companies {
		if c.Name == "" {
			return Loaded{}, fmt.Errorf("company %d has no name", i)
		}
		companies = append(companies, quote.Company{
			Name:      c.Name,
			Symbol:    c.Symbol,
			Period:    time.Duration(c.Period) * time.Millisecond,
			Variation: c.Variation,
			Price:     c.Price,
			Volume:    c.Volume,
		})
	}

	cash := defaultInitialCash
	if cfg.Portfolio.Cash != nil {
		cash = *cfg.Portfolio.Cash
	}
	if cash < 0 {
		return Loaded{}, fmt.Errorf("initial cash must be >= 0, got %v", cash)
	}

	traders := make([]TraderSpec, 0, len(cfg.Traders))
	for i, t := range cfg.Traders {
		if t.Company == "" {
			return Loaded{}, fmt.Errorf("trader %d has no company", i)
		}
		if t.Shares <= 0 {
			return Loaded{}, fmt.Errorf("trader %d shares must be > 0, got %d", i, t.Shares)
		}
		traders = append(traders, TraderSpec{Company: t.Company, Shares: t.Shares})
	}

	loaded := Loaded{
		Companies:   companies,
		InitialCash: cash,
		Traders:     traders,
		QuotePort:   cfg.HTTP.QuotePort,
		AuditPort:   cfg.HTTP.AuditPort,
		BusBuffer:   cfg.Bus.Buffer,
		Database:    resolveDatabase(cfg.Database),
		DropOnStart: cfg.Database.DropOnStart == nil || *cfg.Database.DropOnStart,
	}
	if loaded.QuotePort <= 0 {
		loaded.QuotePort = defaultQuotePort
	}
	if loaded.AuditPort <= 0 {
		loaded.AuditPort = defaultAuditPort
	}
	if loaded.BusBuffer <= 0 {
		loaded.BusBuffer = defaultBusBuffer
	}
	return loaded, nil
}

// resolveDatabase applies defaults and the DB_USERNAME / DB_PASSWORD env
// overrides used by containerized deployments.
func resolveDatabase(cfg DatabaseConfig) conn.Option {
	opt := conn.Option{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		SSLMode:  cfg.SSLMode,
	}
	if opt.User == "" {
		opt.User = defaultDBUser
	}
	if opt.Database == "" {
		opt.Database = defaultDBName
	}
	if user := os.Getenv("DB_USERNAME"); user != "" {
		opt.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		opt.Password = password
	}
	return opt
}

// defaultLoaded is the demo deployment: three companies, no fixed traders
// (the wiring spawns random agents instead).
func defaultLoaded() Loaded {
	return Loaded{
		Companies: []quote.Company{
			{Name: "Divinator", Symbol: "DVN"},
			{Name: "MacroHard", Symbol: "MCH"},
			{Name: "Black Coat", Symbol: "BCT"},
		},
		InitialCash: defaultInitialCash,
		QuotePort:   defaultQuotePort,
		AuditPort:   defaultAuditPort,
		BusBuffer:   defaultBusBuffer,
		Database:    resolveDatabase(DatabaseConfig{}),
		DropOnStart: true,
	}
}
