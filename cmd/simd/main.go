// Command simd serves evolution runs over gRPC and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/simd"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/utils"
	"google.golang.org/grpc"
)

type options struct {
	grpcAddr        string
	httpAddr        string
	logLevel        string
	logFormat       string
	callbackRetries int
	shutdownTimeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	flag.StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")
	flag.IntVar(&opts.callbackRetries, "callback-retries", 3, "retries for a failed completion callback")
	flag.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for servers and pending callbacks")
	flag.Parse()

	logger.SetDefault(newLogger(opts.logFormat, opts.logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, opts); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(format, level string, w io.Writer) *slog.Logger {
	if format == "json" {
		return logger.New(level, w)
	}
	return logger.NewText(level, w)
}

// serve runs both servers until ctx is done or one of them fails, then drains
// runs and callbacks within the shutdown timeout.
func serve(ctx context.Context, opts options) error {
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store)
	notifier := simd.NewNotifier().WithRetry(opts.callbackRetries,
		utils.NewExponentialBackoff(time.Second, 30*time.Second, 2.0, nil))
	executor.SetNotifier(notifier)

	// TODO: Configure gRPC server security (e.g., TLS, authentication, rate limiting)
	// before using this service in a production environment.
	grpcServer := grpc.NewServer()
	simd.RegisterEvolutionServer(grpcServer, simd.NewEvolutionGRPCServer(store, executor))

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           simd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", grpcLis.Addr().String())
		serveErr <- grpcServer.Serve(grpcLis)
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", opts.httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var failure error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case failure = <-serveErr:
		logger.Error("server error", "error", failure)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	executor.StopAll()
	if abandoned, err := executor.WaitContext(shutdownCtx); err != nil {
		logger.Warn("abandoned runs still executing at shutdown deadline", "runs", abandoned, "error", err)
	}
	if err := notifier.Shutdown(shutdownCtx); err != nil {
		logger.Warn("abandoned pending callbacks", "error", err)
	}
	return failure
}
