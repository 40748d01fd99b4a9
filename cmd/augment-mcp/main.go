package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/annotated-augment/internal/config"
	"github.com/ironsheep/annotated-augment/internal/metrics"
	"github.com/ironsheep/annotated-augment/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML pipeline definition used when a tool call names none")
		logLevel    = flag.String("log-level", os.Getenv("IMAGE_AUG_LOG_LEVEL"), "log level (debug, info, warn, error)")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
		showVersion = flag.Bool("version", false, "print version information")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "augment-mcp - MCP server for annotation-aware image augmentation")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: augment-mcp [options]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  IMAGE_AUG_LOG_LEVEL=debug    default for --log-level")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "This server communicates via MCP protocol over stdin/stdout.")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("augment-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// stdout is for MCP protocol
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lv, err := log.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lv)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.Debugf("augment-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load pipeline config")
		}
		cfg = loaded
		log.WithFields(log.Fields{"path": *configPath, "mode": cfg.Mode}).Info("loaded pipeline config")
	}

	m := metrics.New()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			log.Info("start metrics server addr: ", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	srv := server.New(
		server.WithConfig(cfg),
		server.WithRecorder(m),
		server.WithLogger(log.StandardLogger()),
		server.WithVersion(Version),
	)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
