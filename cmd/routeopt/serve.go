package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/spf13/cobra"

    "routeopt/internal/api"
    "routeopt/internal/buildinfo"
    "routeopt/internal/logger"
)

var serveCmd = &cobra.Command{
    Use:   "serve",
    Short: "Run the HTTP API",
    RunE:  serve,
}

func init() {
    rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    cfg, err := loadConfig()
    if err != nil {
        return err
    }
    log := logger.New("api")
    s, err := api.NewServer(ctx, cfg, log)
    if err != nil {
        return err
    }
    defer func() {
        if err := s.Close(); err != nil {
            log.Errorf("server close: %v", err)
        }
    }()

    srv := &http.Server{
        Addr:              cfg.Server.Addr,
        Handler:           s.Handler(),
        ReadHeaderTimeout: 5 * time.Second,
    }
    errCh := make(chan error, 1)
    go func() {
        log.Infof("API listening on %s (version %s, store %s)", cfg.Server.Addr, buildinfo.String(), cfg.Store.Driver)
        errCh <- srv.ListenAndServe()
    }()

    select {
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    case <-ctx.Done():
    }
    log.Infof("shutting down")
    sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    return srv.Shutdown(sctx)
}
