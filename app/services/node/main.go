package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/miners"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/reward"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/stats"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7000"`
			PublicHost      string        `conf:"default:0.0.0.0:8000"`
		}
		State struct {
			MinerName       string        `conf:"default:miner1"`
			AutoMine        bool          `conf:"default:false"`
			GenesisPath     string        `conf:"default:zblock/genesis.json"`
			KnownPeers      []string      `conf:"help:peer hosts polled for their chain, defaults to the two adjacent ports"`
			Neighbours      int           `conf:"default:2"`
			ResolveInterval time.Duration `conf:"default:1m"`
			PeerTimeout     time.Duration `conf:"default:5s"`
			RewardsFile     string        `conf:"default:zblock/miner_rewards.txt"`
			MetricsFile     string        `conf:"default:zblock/metrics.txt"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/miners/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for miner addresses.
	// The names come from the file names in the miners folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load miner name service: %w", err)
	}

	// Logging the miners for documentation in the logs.
	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Blockchain Support

	// Every node on the network must start from the same genesis block.
	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	// A peer set is the fixed collection of nodes polled when resolving the
	// chain. Without configured peers the adjacent ports are used.
	peerSet := peer.NewPeerSet()
	switch len(cfg.State.KnownPeers) {
	case 0:
		neighbours, err := peer.Neighbours(cfg.Web.PublicHost, cfg.State.Neighbours)
		if err != nil {
			return fmt.Errorf("unable to derive peers: %w", err)
		}
		for _, pr := range neighbours {
			peerSet.Add(pr)
		}

	default:
		for _, host := range cfg.State.KnownPeers {
			peerSet.Add(peer.New(host))
		}
	}

	// Rewards paid to miners are appended to a file as they are paid.
	rewardsFile, err := reward.NewFile(cfg.State.RewardsFile)
	if err != nil {
		return fmt.Errorf("unable to open rewards file: %w", err)
	}

	// Chain statistics are appended to a file each time the chain changes.
	metricsFile, err := stats.NewFile(cfg.State.MetricsFile)
	if err != nil {
		return fmt.Errorf("unable to open metrics file: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. Messages for the viewer are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		const websocketPrefix = "viewer: "

		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, websocketPrefix) {
			typ, msg := events.TypeNode, strings.TrimPrefix(s, websocketPrefix)
			if t, rest, ok := strings.Cut(msg, ": "); ok && (t == events.TypeBlock || t == events.TypeChain) {
				typ, msg = t, rest
			}
			evts.Send(typ, msg)
		}
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	st, err := state.New(state.Config{
		Host:        cfg.Web.PublicHost,
		Genesis:     gen,
		KnownPeers:  peerSet,
		Rewards:     reward.New(rewardsFile),
		Stats:       stats.New(time.Now(), metricsFile),
		PeerTimeout: cfg.State.PeerTimeout,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the background workflows such as
	// auto mining and fork resolution. The worker will register itself
	// with the state.
	worker.Run(st, worker.Config{
		MinerName:       cfg.State.MinerName,
		AutoMine:        cfg.State.AutoMine,
		ResolveInterval: cfg.State.ResolveInterval,
	}, ev)

	log.Infow("startup", "status", "ledger files", "rewards", filepath.Clean(cfg.State.RewardsFile), "metrics", filepath.Clean(cfg.State.MetricsFile))

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
		Miners:   miners.NewStore(0),
	})

	// Construct a server to service the requests against the mux. Mining is
	// done inside the request so the write timeout must cover a search.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
