package main

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/spf13/cobra"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "routeopt/internal/export"
    "routeopt/internal/model"
)

func TestRouteFileName(t *testing.T) {
    for _, tc := range []struct {
        i    int
        id   string
        want string
    }{
        {0, "crew-1", "01-crew-1.csv"},
        {1, "crew-1", "02-crew-1.csv"},
        {2, "../../etc/passwd", "03-passwd.csv"},
        {3, "a/b", "04-b.csv"},
        {4, "", "05-route.csv"},
        {5, "..", "06-route.csv"},
    } {
        assert.Equal(t, tc.want, routeFileName(tc.i, tc.id, export.FormatCSV), tc.id)
    }
}

func TestWriteResultKeepsRoutesWithSameVehicleID(t *testing.T) {
    dir := t.TempDir()
    solveFlags.outDir = dir
    t.Cleanup(func() { solveFlags.outDir = "" })

    v := model.Vehicle{ID: "van"}
    res := model.OptimizationResult{Routes: []model.RouteSolution{{Vehicle: v}, {Vehicle: v}}}
    require.NoError(t, writeResult(&cobra.Command{}, export.FormatGPX, res))

    entries, err := os.ReadDir(dir)
    require.NoError(t, err)
    require.Len(t, entries, 2)
    assert.Equal(t, "01-van.gpx", entries[0].Name())
    assert.Equal(t, "02-van.gpx", entries[1].Name())
    _, err = os.Stat(filepath.Join(dir, "02-van.gpx"))
    assert.NoError(t, err)
}
