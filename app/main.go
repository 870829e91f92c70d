package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryotel "github.com/getsentry/sentry-go/otel"
	_ "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"

	"github.com/osmosis-labs/poolrouter/domain"
	poolrouterlog "github.com/osmosis-labs/poolrouter/log"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and background loops.
const shutdownTimeout = 10 * time.Second

// @title           Osmosis Pool Router API
// @version         1.0
func main() {
	configPath := flag.String("config", "config.json", "config file location")

	hostName := flag.String("host", "poolrouter", "the name of the host")

	isDebug := flag.Bool("debug", false, "debug mode")

	// Parse the command-line arguments
	flag.Parse()

	if *isDebug {
		log.Println("Service RUN on DEBUG mode")
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config (%s): %v", *configPath, err)
	}

	if *isDebug {
		config.LoggerIsProduction = false
		config.LoggerLevel = "debug"
	}

	// Handle SIGINT and SIGTERM signals to initiate shutdown
	exitChan := make(chan os.Signal, 1)
	signal.Notify(exitChan, os.Interrupt, syscall.SIGTERM)

	if config.OTEL != nil && config.OTEL.DSN != "" {
		if err := initSentry(*config.OTEL, *hostName, *isDebug); err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)

		sentry.CaptureMessage("pool router started")
	}

	if config.OTEL != nil && (config.OTEL.Enabled || config.OTEL.DSN != "") {
		initOTELTracer(*hostName, config.OTEL.DSN != "")
	}

	// logger
	logger, err := poolrouterlog.NewLogger(config.LoggerIsProduction, config.LoggerFilename, config.LoggerLevel)
	if err != nil {
		panic(fmt.Errorf("error while creating logger: %s", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting pool router", zap.String("config", *configPath), zap.String("host", *hostName), zap.String("chain_id", config.ChainID))

	// Use context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := NewPoolRouterServer(ctx, config, logger)
	if err != nil {
		logger.Error("failed to create pool router server", zap.Error(err))
		os.Exit(1)
	}

	go func() {
		<-exitChan
		logger.Info("shutting down pool router")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down pool router", zap.Error(err))
		}
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Error("pool router server stopped", zap.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
}

func initSentry(otelConfig domain.OTELConfig, hostName string, isDebug bool) error {
	return sentry.Init(sentry.ClientOptions{
		ServerName:       hostName,
		Dsn:              otelConfig.DSN,
		EnableTracing:    otelConfig.TracesSampleRate > 0,
		TracesSampleRate: otelConfig.TracesSampleRate,
		Debug:            isDebug,
		Environment:      otelConfig.Environment,
	})
}

// initOTELTracer initializes the OTEL tracer with a stdout exporter
// and, if sentry is enabled, wires it up with the Sentry span processor.
func initOTELTracer(hostName string, withSentry bool) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("stdouttrace.New: %v", err)
	}

	resource, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(hostName),
		),
	)
	if err != nil {
		log.Fatalf("resource.New: %v", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource),
	}
	if withSentry {
		opts = append(opts, sdktrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()))
		otel.SetTextMapPropagator(sentryotel.NewSentryPropagator())
	}

	otel.SetTracerProvider(sdktrace.NewTracerProvider(opts...))
}
