// Command routeopt serves the route optimization API and solves scenario
// files from the command line.
package main

import (
    "os"

    "github.com/joho/godotenv"

    "routeopt/internal/logger"
)

func main() {
    // .env is optional; real environment variables win
    _ = godotenv.Load()
    if err := rootCmd.Execute(); err != nil {
        logger.New("main").Errorf("%v", err)
        os.Exit(1)
    }
}
