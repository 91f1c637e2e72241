package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"fsreport/cmd"
	"fsreport/internal/logger"
)

func main() {
	// Console logging until the config file is read
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		l := logger.WithComponent("main")
		l.Debug().Err(err).Msg("No .env file loaded")
	}

	os.Exit(cmd.Execute())
}
