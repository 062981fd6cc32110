package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmorgan81/imagine/internal/inject"
	"github.com/dmorgan81/imagine/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
)

func main() {
	logger := log.New(os.Stderr, os.Getenv("LOG_LEVEL"))
	base := log.NewContext(context.Background(), logger)
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	injector := inject.Setup(ctx)
	defer func() { _ = injector.Shutdown() }()

	srv := &http.Server{
		Addr:              ":" + do.MustInvokeNamed[string](injector, "port"),
		Handler:           do.MustInvoke[*gin.Engine](injector),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
