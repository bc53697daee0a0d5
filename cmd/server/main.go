package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hwmonitor/internal/adapters/mqtt"
	"hwmonitor/internal/adapters/redis"
	"hwmonitor/internal/config"
	"hwmonitor/internal/hardware"
	"hwmonitor/internal/logger"
	"hwmonitor/internal/poller"
	"hwmonitor/internal/privilege"
	httptransport "hwmonitor/internal/transport/http"
	"hwmonitor/internal/transport/websocket"
	"hwmonitor/internal/tree"
	"hwmonitor/internal/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, relying on system environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}
	appLog := logger.New(cfg)

	if err := privilege.Require(cfg.RequirePrivilege, privilege.Elevated); err != nil {
		appLog.Error("privilege check failed", "error", err)
		os.Exit(1)
	}

	hostname, err := os.Hostname()
	if err != nil {
		appLog.Warn("hostname unavailable", "error", err)
		hostname = "localhost"
	}

	runtimeCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	computer, err := openComputer(runtimeCtx, cfg, appLog)
	if err != nil {
		appLog.Error("failed to open hardware", "error", err)
		os.Exit(1)
	}
	defer computer.Close()

	appLog.Info("hwmonitor: starting...",
		"instance_id", cfg.InstanceID, "backend", cfg.HardwareBackend, "hardware", len(computer.Hardware()))

	sensorPoller := poller.New(computer, cfg.PollInterval, appLog)
	sensorPoller.Update(runtimeCtx)

	source := tree.NewSource(sensorPoller, tree.NewBuilder(hostname, hardware.NewValueFormatter(cfg.Locale)))

	hub := websocket.NewHub(source, cfg.WsPushInterval, appLog)
	wsHandler := websocket.NewHandler(hub, cfg.AllowedOrigins, appLog)

	router := httptransport.NewRouter(cfg, &httptransport.RouterDeps{
		Sensors: httptransport.NewSensorHandler(source, sensorPoller, cfg.InstanceID, appLog),
		Static:  httptransport.NewStaticHandler(cfg.WebRoot, appLog),
		Live:    wsHandler.Serve,
	})
	srv := httptransport.NewServer(cfg.Address, router, appLog)

	sinks, closeSinks := openSinks(runtimeCtx, cfg, appLog)
	defer closeSinks()

	manager := workers.NewManager(appLog, workers.NewScheduler(appLog), &workers.ManagerServices{
		Source:     source,
		Sinks:      sinks,
		InstanceID: cfg.InstanceID,
		Hostname:   hostname,
		Interval:   cfg.PublishInterval,
	})

	g, gCtx := errgroup.WithContext(runtimeCtx)

	g.Go(func() error {
		return sensorPoller.Start(gCtx)
	})

	g.Go(func() error {
		return hub.Run(gCtx)
	})

	g.Go(func() error {
		return manager.Start(gCtx)
	})

	g.Go(func() error {
		return srv.Start(gCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("hwmonitor failed unexpectedly", "error", err)
		os.Exit(1)
	}

	appLog.Info("hwmonitor stopped gracefully.")
}

func openComputer(ctx context.Context, cfg *config.Config, log logger.Logger) (hardware.Computer, error) {
	if cfg.HardwareBackend == "demo" {
		return hardware.NewDemoComputer(uint64(os.Getpid())), nil
	}

	return hardware.Open(ctx, hardware.Options{
		SysRoot:       cfg.SysRoot,
		SystemSensors: cfg.SystemSensors,
		Log:           log,
	})
}

// openSinks connects the configured snapshot sinks. A sink that cannot
// connect is skipped so the HTTP surface still comes up.
func openSinks(ctx context.Context, cfg *config.Config, log logger.Logger) ([]workers.Sink, func()) {
	var sinks []workers.Sink
	var closers []func()

	if cfg.RedisEnabled() {
		client, err := redis.Init(ctx, &redis.ClientOptions{
			Address:  cfg.RedisAddress,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("failed to init redis", "error", err)
		} else {
			log.Info("redis connected", "stream", cfg.RedisStream)
			sinks = append(sinks, redis.NewStreamSink(redis.NewRegistry(client), cfg.RedisStream, cfg.RedisMaxLen))
			closers = append(closers, func() { client.Close() })
		}
	}

	if cfg.MQTTEnabled() {
		sink, client, err := mqtt.Connect(mqtt.Options{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
			Topic:    cfg.MQTTTopic,
		}, log)
		if err != nil {
			log.Error("failed to init mqtt", "error", err)
		} else {
			sinks = append(sinks, sink)
			closers = append(closers, func() { client.Disconnect(250) })
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
