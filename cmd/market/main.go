package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"

	"main/internal/audit"
	"main/internal/bus"
	"main/internal/discovery"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/portfolio"
	"main/internal/quote"
	"main/internal/trader"
	"main/pkg/conn"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to JSON config (empty = built-in demo)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("market: %v", err)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if server := os.Getenv("PYROSCOPE_SERVER"); server != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "micromarket",
			ServerAddress:   server,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return fmt.Errorf("pyroscope start failed: %w", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	cfg, err := ops.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	metrics := obs.NewMetrics()
	b := bus.New(cfg.BusBuffer, bus.WithDropHook(func(string) {
		metrics.IncBusDrop()
	}))
	defer b.Close()
	registry := discovery.NewInMemory()

	// Price generators, one independent timer per company.
	for _, company := range cfg.Companies {
		g, err := quote.NewGenerator(company, b, metrics, 0)
		if err != nil {
			return fmt.Errorf("generator init failed for %q: %w", company.Name, err)
		}
		go g.Run(ctx)
		log.Printf("initialized %s", g.Company().Name)
	}
	marketReg, err := registry.Publish(discovery.MessageSource("market-data", quote.MarketAddress))
	if err != nil {
		return fmt.Errorf("publish market-data record failed: %w", err)
	}
	defer unpublish(registry, marketReg)

	// Quote cache and its query endpoint.
	cache := quote.NewCache()
	go cache.Run(ctx, b.Subscribe(quote.MarketAddress))
	quoteSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.QuotePort),
		Handler: quote.NewRouter(cache),
	}
	go serve(quoteSrv, "quote")
	defer shutdown(quoteSrv, "quote")

	// Portfolio ledger and the compulsive traders.
	ledger := portfolio.NewService(cfg.InitialCash, b, metrics)
	for _, spec := range traderSpecs(cfg) {
		t, err := trader.New(spec.Company, spec.Shares, ledger, 0)
		if err != nil {
			return fmt.Errorf("trader init failed: %w", err)
		}
		go t.Run(ctx, b.Subscribe(quote.MarketAddress))
		log.Printf("trader watching %s, %d shares a trade", spec.Company, spec.Shares)
	}

	// Audit log: durable store, subscriber, query endpoint.
	client, err := conn.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("audit database connect failed: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()
	store := audit.NewSQLStore(client)
	if err := store.Init(ctx, cfg.DropOnStart); err != nil {
		return fmt.Errorf("audit schema init failed: %w", err)
	}
	auditSvc := audit.NewService(store, metrics)
	go auditSvc.Run(ctx, b.Subscribe(portfolio.OperationsAddress))
	auditSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AuditPort),
		Handler: auditSvc.Router(),
	}
	go serve(auditSrv, "audit")
	defer shutdown(auditSrv, "audit")
	auditSvc.SetReady(true)

	auditReg, err := registry.Publish(discovery.HTTPEndpoint("audit", fmt.Sprintf("localhost:%d", cfg.AuditPort)))
	if err != nil {
		return fmt.Errorf("publish audit record failed: %w", err)
	}
	defer unpublish(registry, auditReg)

	log.Printf("market up: quotes on :%d, audit on :%d", cfg.QuotePort, cfg.AuditPort)
	<-ctx.Done()

	snapshot := metrics.Snapshot()
	log.Printf("metrics: quotes=%d drops=%d buys=%d sells=%d rejected=%d audited=%d audit_failures=%d",
		snapshot.QuotesPublished, snapshot.BusDrops, snapshot.BuysApplied,
		snapshot.SellsApplied, snapshot.TradesRejected, snapshot.AuditAppends, snapshot.AuditFailures)
	return nil
}

// traderSpecs falls back to two random agents when none are configured.
func traderSpecs(cfg ops.Loaded) []ops.TraderSpec {
	if len(cfg.Traders) > 0 {
		return cfg.Traders
	}
	rng := trader.NewRand(0)
	return []ops.TraderSpec{
		{Company: trader.PickCompany(rng), Shares: trader.PickShares(rng)},
		{Company: trader.PickCompany(rng), Shares: trader.PickShares(rng)},
	}
}

func serve(srv *http.Server, name string) {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("%s server error: %v", name, err)
	}
}

func shutdown(srv *http.Server, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("%s server shutdown error: %v", name, err)
	}
}

func unpublish(registry discovery.Registry, reg discovery.Registration) {
	if err := registry.Unpublish(reg); err != nil {
		log.Printf("unpublish %s failed: %v", reg, err)
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
