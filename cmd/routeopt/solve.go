package main

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"

    "github.com/spf13/cobra"

    "routeopt/internal/export"
    "routeopt/internal/logger"
    "routeopt/internal/model"
    "routeopt/internal/opt"
    "routeopt/internal/scenario"
)

var solveFlags struct {
    file      string
    format    string
    outDir    string
    algorithm string
    seed      int64
    restarts  int
}

var solveCmd = &cobra.Command{
    Use:   "solve",
    Short: "Optimize a scenario file and print the routes",
    RunE:  solve,
}

func init() {
    f := solveCmd.Flags()
    f.StringVarP(&solveFlags.file, "file", "f", "", "scenario file (yaml)")
    f.StringVar(&solveFlags.format, "format", "json", "output format: json, csv or gpx")
    f.StringVarP(&solveFlags.outDir, "out", "o", "", "write one file per route into this directory")
    f.StringVar(&solveFlags.algorithm, "algorithm", "", "override the scenario algorithm")
    f.Int64Var(&solveFlags.seed, "seed", 0, "override the scenario seed")
    f.IntVar(&solveFlags.restarts, "restarts", 0, "override the scenario restarts")
    _ = solveCmd.MarkFlagRequired("file")
    rootCmd.AddCommand(solveCmd)
}

func solve(cmd *cobra.Command, args []string) error {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    cfg, err := loadConfig()
    if err != nil {
        return err
    }
    format, err := export.ParseFormat(solveFlags.format)
    if err != nil {
        return err
    }
    sc, err := scenario.Load(solveFlags.file)
    if err != nil {
        return err
    }
    req, err := sc.ToModel()
    if err != nil {
        return err
    }
    if solveFlags.algorithm != "" {
        req.Options.Algorithm = model.Algorithm(solveFlags.algorithm)
    }
    if solveFlags.seed != 0 {
        req.Options.Seed = solveFlags.seed
    }
    if solveFlags.restarts != 0 {
        req.Options.Restarts = solveFlags.restarts
    }
    o := cfg.Optimizer.Apply(req.Options)

    log := logger.New("solve")
    res, err := opt.Optimize(ctx, req.Locations, req.Vehicles, o,
        opt.WithLogger(log), opt.WithTimeBudget(cfg.Optimizer.TimeBudget()))
    if err != nil && len(res.Routes) == 0 {
        return err
    }
    if err != nil {
        log.Warnf("optimization interrupted, writing best routes found: %v", err)
    }
    if !res.Acceptable() {
        log.Warnf("%d critical violations in result", res.Summary.CriticalCount)
    }
    return writeResult(cmd, format, res)
}

func writeResult(cmd *cobra.Command, format export.Format, res model.OptimizationResult) error {
    out := cmd.OutOrStdout()
    if format == export.FormatJSON && solveFlags.outDir == "" {
        b, err := json.MarshalIndent(res, "", "  ")
        if err != nil {
            return err
        }
        _, err = fmt.Fprintln(out, string(b))
        return err
    }
    if solveFlags.outDir != "" {
        if err := os.MkdirAll(solveFlags.outDir, 0o755); err != nil {
            return err
        }
    }
    for i, rt := range res.Routes {
        b, err := export.Render(format, rt)
        if err != nil {
            return err
        }
        if solveFlags.outDir == "" {
            if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
                return err
            }
            continue
        }
        name := filepath.Join(solveFlags.outDir, routeFileName(i, rt.Vehicle.ID, format))
        if err := os.WriteFile(name, b, 0o644); err != nil {
            return err
        }
    }
    return nil
}

// routeFileName is unique per route even when vehicle ids repeat, and never
// leaves the output directory.
func routeFileName(i int, vehicleID string, format export.Format) string {
    id := filepath.Base(filepath.Clean("/" + vehicleID))
    if id == "/" || id == "." {
        id = "route"
    }
    return fmt.Sprintf("%02d-%s.%s", i+1, id, format)
}
