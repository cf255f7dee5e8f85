// Smartmeter reads the digital meter's P1 port, stores the decoded
// readings and switches configured loads based on the power we inject
// into the grid.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"smartmeter/pkg/aggregator"
	"smartmeter/pkg/config"
	"smartmeter/pkg/csvwriter"
	"smartmeter/pkg/dispatch"
	"smartmeter/pkg/loadmanager"
	"smartmeter/pkg/logging"
	"smartmeter/pkg/meterdb"
	"smartmeter/pkg/pathing"
	"smartmeter/pkg/port_reader"
	"smartmeter/pkg/statusapi"
)

func main() {
	configPath := flag.String("c", "", "path to the config file")
	replayPath := flag.String("f", "", "replay a recorded meter stream from this file instead of reading the serial port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	logger.Info("---start---")

	// Termination signals stop the process immediately; there is no
	// graceful drain of in-flight telegrams.
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	// Load manager. The actuator writes are assumed successful, there is
	// no read-back from the relays.
	loads := loadmanager.NewManager(logger, nil)
	for _, loadCfg := range cfg.Loads {
		if err := loads.AddLoad(loadCfg); err != nil {
			logger.Fatalf("Bad load config: %v", err)
		}
	}
	if loads.LoadCount() == 0 {
		logger.Info("Load management is disabled or not configured.")
	}

	queue := dispatch.NewQueue(cfg.Queue.Capacity, logger)
	status := dispatch.NewStatusCache()

	var sinks []dispatch.Sink

	if cfg.Database.Enabled {
		dbPath := cfg.Database.Path
		if dbPath == "" {
			dbPath = pathing.GetMeterDbPath()
		}
		store, err := meterdb.Open(dbPath)
		if err != nil {
			logger.Fatalf("Failed to open meter database: %v", err)
		}
		defer store.Close()
		sinks = append(sinks, meterdb.NewSink(store))
		go aggregator.Run(ctx, store, logger)
	} else {
		logger.Info("Meter database is disabled.")
	}

	if cfg.CSV.Enabled {
		writer, err := csvwriter.NewWriter(cfg.CSV, logger)
		if err != nil {
			logger.Fatalf("Failed to set up CSV writer: %v", err)
		}
		defer writer.Close()
		sinks = append(sinks, writer)
	}

	if cfg.API.Enabled {
		api := statusapi.NewServer(cfg.API, status, logger)
		sinks = append(sinks, api)
		go func() {
			if err := api.Run(ctx); err != nil {
				logger.WithError(err).Error("Status API stopped.")
			}
		}()
	}

	// Ingest worker: live serial port, or a throttled replay file.
	var worker *port_reader.Worker
	if *replayPath != "" {
		worker = port_reader.NewReplayWorker(*replayPath, 20*time.Millisecond, queue, logger)
	} else {
		worker, err = port_reader.NewSerialWorker(cfg.Serial, queue, logger)
		if err != nil {
			logger.Fatalf("Failed to set up serial reader: %v", err)
		}
	}

	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.WithError(err).Error("Ingest worker stopped.")
		}
		stop()
	}()

	dispatch.NewLoop(logger, queue, loads, status, sinks).Run(ctx)
}
