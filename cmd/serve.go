// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/practice-service/internal/config"
	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring/prometheus"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/pkg/audit"
	"github.com/canonical/practice-service/pkg/authentication"
	"github.com/canonical/practice-service/pkg/pipeline"
	"github.com/canonical/practice-service/pkg/principal"
	"github.com/canonical/practice-service/pkg/quota"
	"github.com/canonical/practice-service/pkg/tenant"
	"github.com/canonical/practice-service/pkg/web"
)

const serviceName = "practice-service"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %w", err)
	}

	if err := specs.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	validator := tenant.NewValidator(s, tracer, monitor, logger)
	recorder := audit.NewRecorder(s, specs.AuditWriteTimeout, tracer, monitor, logger)

	tokens, err := authentication.NewTokenService(
		authentication.TokenConfig{
			SigningKey: []byte(specs.TokenSigningKey),
			Issuer:     specs.TokenIssuer,
			AccessTTL:  specs.AccessTokenTTL,
			RefreshTTL: specs.RefreshTokenTTL,
		},
		s,
		validator,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}

	authService := authentication.NewService(tokens, s, validator, recorder, tracer, monitor, logger)
	tenantService := tenant.NewService(s, recorder, tracer, monitor, logger)
	enforcer := quota.NewEnforcer(s, tracer, monitor, logger)
	principalService := principal.NewService(s, enforcer, recorder, specs.BcryptCost, tracer, monitor, logger)

	gate := pipeline.NewPipeline(
		pipeline.Config{
			AdminKey:       specs.AdminKey,
			RateLimitRPS:   specs.RateLimitRPS,
			RateLimitBurst: specs.RateLimitBurst,
		},
		tokens,
		validator,
		tracer,
		monitor,
		logger,
	)

	// Start the gRPC server.
	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(gate.GRPCInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	go func() {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("failed to serve gRPC: %v", err)
		}
	}()

	router := web.NewRouter(
		web.Dependencies{
			Pipeline:           gate,
			DB:                 dbClient,
			Auth:               authService,
			Tenants:            tenantService,
			Principals:         principalService,
			Quota:              enforcer,
			Recorder:           recorder,
			AuditLog:           s,
			CORSAllowedOrigins: specs.CORSAllowedOrigins,
		},
		nil,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	healthServer.Shutdown()

	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}
	grpcServer.GracefulStop()

	// In-flight audit writes are bounded by their own timeout.
	recorder.Wait()

	if err := tracer.Shutdown(ctx); err != nil {
		logger.Errorf("failed to flush traces: %v", err)
	}

	return serverError
}
