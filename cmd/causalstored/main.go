package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dcnet/causalstore/engine"
	"github.com/dcnet/causalstore/enginelog"
	"github.com/dcnet/causalstore/kv"
)

// Version is set at build time via -ldflags.
var Version string

func main() {
	var (
		dbPath       string
		configPath   string
		replicaID    string
		logLevel     string
		printVersion bool
	)
	flag.StringVar(&dbPath, "db", "causalstore.db", "path to the bbolt database file")
	flag.StringVar(&configPath, "config", "", "path to a TOML config file (optional)")
	flag.StringVar(&replicaID, "id", "local", "this replica's source id")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&printVersion, "version", false, "print version and exit")
	flag.Parse()

	if printVersion {
		fmt.Println("causalstored " + Version)
		return
	}

	enginelog.Init(logLevel)
	log := enginelog.For("main")

	opts := engine.DefaultOptions()
	if configPath != "" {
		loaded, err := engine.LoadOptions(configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		opts = loaded
	}

	store, err := kv.OpenBolt(dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer store.Close()

	host := &discardHost{log: enginelog.For("host")}
	e := engine.New(store, host, opts, replicaID)
	defer e.Close()

	log.WithField("db", dbPath).WithField("id", replicaID).Info("causalstored started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
}

// discardHost is a placeholder Host for the standalone binary: it logs
// every delivered op rather than routing it anywhere, since the routing
// layer is an external collaborator not built by this repository.
type discardHost struct {
	log *enginelog.Entry
}

func (h *discardHost) Deliver(op engine.Op) error {
	h.log.WithField("spec", op.Spec).Debug("op delivered")
	return nil
}
