package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Mirshida/sf-dta/internal/config"
	"github.com/Mirshida/sf-dta/internal/converter"
	"github.com/Mirshida/sf-dta/internal/logging"
	"github.com/Mirshida/sf-dta/internal/model"
	"github.com/Mirshida/sf-dta/internal/network"
	"github.com/Mirshida/sf-dta/internal/server"
	"github.com/Mirshida/sf-dta/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config.toml (default: next to the executable)")
	serve      = flag.Bool("serve", false, "start the review API after the run")
	port       = flag.Int("port", 0, "review API port (overrides config)")
	devMode    = flag.Bool("dev", false, "development mode for the review API")
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s [flags] NET_DIR NET_PREFIX CARDS_DIR START_TIME END_TIME OUT_DIR [OVERRIDES_CSV ...]

Reads the road network <NET_PREFIX>_{nodes,links,movements}.csv from NET_DIR,
parses every signal card workbook in CARDS_DIR, maps each card onto the
network and writes the synthesized time plans for the START_TIME..END_TIME
window (HH:MM) to OUT_DIR. Optional override CSVs rewrite turn types before
mapping.

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 6 {
		usage()
		os.Exit(2)
	}
	netDir, netPrefix, cardsDir := args[0], args[1], args[2]
	outDir := args[5]
	overrideFiles := args[6:]

	start, err := model.ParseClock(args[3])
	if err != nil {
		log.Fatalf("invalid start time %q: %v", args[3], err)
	}
	end, err := model.ParseClock(args[4])
	if err != nil {
		log.Fatalf("invalid end time %q: %v", args[4], err)
	}

	var cfg *config.AppConfig
	if *configPath != "" {
		cfg, err = config.LoadConfigFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}

	logger, closeLogs, err := logging.Setup(cfg.Logging.InfoFile, cfg.Logging.DebugFile)
	if err != nil {
		log.Fatalf("cannot open log files: %v", err)
	}
	defer closeLogs()

	net, err := network.Read(netDir, netPrefix)
	if err != nil {
		logger.Error("cannot read network", "dir", netDir, "prefix", netPrefix, "error", err)
		os.Exit(1)
	}

	for _, path := range overrideFiles {
		overrides, err := network.LoadTurnTypeOverrides(path)
		if err != nil {
			logger.Error("cannot load turn-type overrides", "file", path, "error", err)
			os.Exit(1)
		}
		changed := net.ApplyTurnTypeOverrides(overrides)
		logger.Info("applied turn-type overrides", "file", path, "changed", changed)
	}

	st, err := store.New(cfg.Data.DatabasePath)
	if err != nil {
		logger.Error("cannot open import log", "path", cfg.Data.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	runID, err := st.CreateRun(cardsDir, netPrefix, start.String(), end.String())
	if err != nil {
		logger.Error("cannot create run", "error", err)
		os.Exit(1)
	}
	logger.Info("starting run", "run_id", runID, "cards_dir", cardsDir,
		"start", start.String(), "end", end.String())

	cx := converter.New(net, cfg, st, runID, logger)
	if err := cx.Run(cardsDir, start, end); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	c := cx.Counters
	if err := st.FinishRun(runID, c.Parsed, c.Mapped, c.MovementMapped, c.Plans, c.Ambiguous); err != nil {
		logger.Error("cannot finish run", "error", err)
	}

	if err := net.WritePlans(outDir, netPrefix); err != nil {
		logger.Error("cannot write time plans", "dir", outDir, "error", err)
		os.Exit(1)
	}
	logger.Info("wrote time plans", "dir", outDir,
		"parsed", c.Parsed, "mapped", c.Mapped,
		"movement_mapped", c.MovementMapped, "plans", c.Plans, "ambiguous", c.Ambiguous)

	if *serve {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("starting review API", "addr", addr)
		srv := server.NewServer(cfg, st)
		if err := srv.Run(addr); err != nil {
			logger.Error("review API failed", "error", err)
			os.Exit(1)
		}
	}
}
