package main

import (
    "fmt"

    "github.com/spf13/cobra"

    "routeopt/internal/config"
    "routeopt/internal/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
    Use:           "routeopt",
    Short:         "Route optimization for cleaning crews",
    SilenceUsage:  true,
    SilenceErrors: true,
}

func init() {
    rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

func loadConfig() (*config.Config, error) {
    cfg, err := config.Load(cfgPath)
    if err != nil {
        return nil, fmt.Errorf("load config: %w", err)
    }
    logger.SetLevel(cfg.Logging.Level)
    return cfg, nil
}
