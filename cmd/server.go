// Server = deposit store + audit publisher + VAA fetcher + chain handlers +
// redemption handlers + lifecycle loop + http reporter.
// All components are configured via environment variables (strings!).

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/chain/factory"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/depositmongo"
	"github.com/bitbridge-io/relay-go/depositstore"
	"github.com/bitbridge-io/relay-go/redemption"
	"github.com/bitbridge-io/relay-go/reporter"
	"github.com/bitbridge-io/relay-go/tasks"
	"github.com/bitbridge-io/relay-go/wormhole"
)

// Default params for server.
// More often we don't recommend users to tweak those.
// So we list them here.
const (
	defaultTickerInterval    = 5 * time.Second
	defaultPastTimeInMinutes = 60
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type RelayServerConfig struct {
	// store side: "sqlite" (default) or "mongo"
	StoreBackend  string
	DbFilePath    string // sqlite file path
	MongoUri      string
	MongoDatabase string

	// audit side; empty NatsUrl falls back to the log publisher
	NatsUrl string

	// wormhole side
	GuardianApiUrl string

	// lifecycle loop
	TickerInterval    time.Duration
	PastTimeInMinutes int

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080

	// per-chain settings
	Chains []*chain.Config
}

// RelayServer holds the objects that consists of the relay server.
type RelayServer struct {
	MyStore deposit.Store
	MyAudit audit.Publisher
	MyVaa   *wormhole.Client

	ChainRegistry      *chain.Registry
	RedemptionRegistry *redemption.Registry

	MyRunner   *tasks.Runner
	MyReporter *reporter.HttpReporter
}

// NewRelayServer creates a new relay server.
// ctx is used for parental context to cancel the operation of the server.
// wg is used to wait for all the goroutines inside the server (lifecycle
// loop, http reporter) to finish.
func NewRelayServer(rsc *RelayServerConfig, ctx context.Context, wg *sync.WaitGroup) (*RelayServer, error) {
	// 0) deposit store, sqlite by default
	store, err := setupStore(ctx, rsc)
	if err != nil {
		logger.Fatalf("failed to create deposit store: %v", err)
		return nil, err
	}

	// 1) audit publisher
	var auditPublisher audit.Publisher
	if rsc.NatsUrl != "" {
		auditPublisher, err = audit.NewNatsPublisher(rsc.NatsUrl)
		if err != nil {
			logger.Fatalf("failed to connect audit publisher: %v", err)
			return nil, err
		}
	} else {
		auditPublisher = audit.NewLogPublisher()
	}

	// 2) VAA fetcher over the guardian api
	vaaClient := wormhole.NewClient(rsc.GuardianApiUrl)

	deps := chain.Deps{
		Store: store,
		Audit: auditPublisher,
		Vaa:   vaaClient,
	}

	// 3) one deposit handler per configured chain; a failing chain is
	// logged and skipped inside Initialize
	chainRegistry := chain.NewRegistry(factory.Default)
	chainRegistry.Initialize(ctx, rsc.Chains, deps)

	// 4) redemption handlers for the EVM chains that enable them
	redemptionRegistry := redemption.NewRegistry(redemption.DefaultFactory)
	redemptionRegistry.Initialize(ctx, rsc.Chains)

	// 5) lifecycle loop
	tickerInterval := rsc.TickerInterval
	if tickerInterval == 0 {
		tickerInterval = defaultTickerInterval
	}
	pastTime := rsc.PastTimeInMinutes
	if pastTime == 0 {
		pastTime = defaultPastTimeInMinutes
	}
	runner := tasks.NewRunner(&tasks.Config{
		Registry:          chainRegistry,
		Store:             store,
		TickerInterval:    tickerInterval,
		PastTimeInMinutes: pastTime,
	})
	if runner == nil {
		return nil, fmt.Errorf("failed to create lifecycle runner")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			logger.Fatalf("lifecycle loop stopped: %v", err)
		}
	}()

	// 6) http reporter: reveal intake + deposit state routes
	myReporter := reporter.NewHttpReporter(rsc.HttpIp, rsc.HttpPort, store, chainRegistry)
	wg.Add(1)
	go func() {
		defer wg.Done()
		myReporter.Run()
	}()

	return &RelayServer{
		MyStore:            store,
		MyAudit:            auditPublisher,
		MyVaa:              vaaClient,
		ChainRegistry:      chainRegistry,
		RedemptionRegistry: redemptionRegistry,
		MyRunner:           runner,
		MyReporter:         myReporter,
	}, nil
}

func setupStore(ctx context.Context, rsc *RelayServerConfig) (deposit.Store, error) {
	switch rsc.StoreBackend {
	case "mongo":
		return depositmongo.NewMongoStore(ctx, depositmongo.MongoStoreOpts{
			URI:          rsc.MongoUri,
			DatabaseName: rsc.MongoDatabase,
		})
	case "", "sqlite":
		sqldb, err := sql.Open("sqlite3", rsc.DbFilePath)
		if err != nil {
			return nil, err
		}
		return depositstore.NewSqliteStore(sqldb)
	default:
		return nil, fmt.Errorf("unknown store backend %q", rsc.StoreBackend)
	}
}

// Create, then start the relay server and wait.
// Press Ctrl-C to kill the server.
func StartRelayServerAndWait(rsc *RelayServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		fmt.Printf("Received signal: %v, cancelling context...\n", sig)
		cancel()
	}()

	var wg sync.WaitGroup

	server, err := NewRelayServer(rsc, ctx, &wg)
	if err != nil {
		logger.Fatalf("failed to create relay server: %v", err)
		return
	}
	defer server.ChainRegistry.Clear()

	// wait for all routines to finish (which is forever)
	wg.Wait()
}
