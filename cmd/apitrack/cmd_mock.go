package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/apitrack/internal/mock"
)

// envOTLPEndpoint enables request tracing for the mock backend.
const envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"

func mockCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("mock", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	portFlag := fs.Int("port", 8000, "Port to listen on")
	dbFlag := fs.String("db", filepath.Join(e.cfg.Dir(), "mock.db"), "sqlite database path (\":memory:\" for a throwaway one)")
	userFlag := fs.String("user", "admin", "Operator username")
	passFlag := fs.String("password", "admin", "Operator password")
	secretFlag := fs.String("secret", os.Getenv("APITRACK_MOCK_SECRET"), "Token signing secret (random when empty, so tokens end with the process)")
	ttlFlag := fs.Duration("token-ttl", 24*time.Hour, "Token lifetime")
	maxDurationFlag := fs.Duration("max-loadtest", 10*time.Minute, "Longest load test the server will run")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack mock [flags]\n\n")
		fmt.Fprintf(e.stderr, "Start the local reference backend: endpoint CRUD, hit API with call logs,\n")
		fmt.Fprintf(e.stderr, "load tests and login. Prometheus metrics are served at /metrics.\n")
		fmt.Fprintf(e.stderr, "Set %s to export traces over OTLP/gRPC.\n\n", envOTLPEndpoint)
		fs.PrintDefaults()
		fmt.Fprintf(e.stderr, "\nExamples:\n")
		fmt.Fprintf(e.stderr, "  apitrack mock\n")
		fmt.Fprintf(e.stderr, "  apitrack mock --port 9000 --db :memory:\n")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *portFlag < 0 || *portFlag > 65535 {
		fmt.Fprintln(e.stderr, "Error: port must be between 0 and 65535")
		return exitUsage
	}

	if *dbFlag != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(*dbFlag), 0o755); err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return exitFailed
		}
	}
	store, err := mock.NewStore(*dbFlag)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer store.Close()

	secret := *secretFlag
	if secret == "" {
		secret = uuid.NewString()
	}

	ctx, cancel := signalContext()
	defer cancel()

	if endpoint := os.Getenv(envOTLPEndpoint); endpoint != "" {
		shutdown, err := mock.InitTracer(ctx, endpoint, "apitrack-mock")
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return exitFailed
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			if err := shutdown(sctx); err != nil {
				e.logger.Warn("flushing traces", "error", err)
			}
		}()
		e.logger.Info("tracing enabled", "endpoint", endpoint)
	}

	srv, err := mock.New(store, mock.Config{
		Username:            *userFlag,
		Password:            *passFlag,
		Secret:              []byte(secret),
		TokenTTL:            *ttlFlag,
		MaxLoadTestDuration: *maxDurationFlag,
		Transport:           e.cfg.Transport(),
		Logger:              e.logger,
	})
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(":" + strconv.Itoa(*portFlag)) }()
	fmt.Fprintf(e.stderr, "Mock backend on http://localhost:%d (user %q)\n", *portFlag, *userFlag)

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return exitFailed
		}
		return exitOK
	case <-ctx.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}
