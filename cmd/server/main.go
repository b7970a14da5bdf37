package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/bookview/internal/infrastructure/config"
	"github.com/GriffinCanCode/bookview/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "TOML config file layered over the environment")
	bookDir := flag.String("book", "", "Directory of the unpacked book")
	source := flag.String("source", "", "Path of the original e-book file")
	assetsDir := flag.String("assets", "", "Auxiliary asset directory")
	shellPath := flag.String("shell", "", "Shell HTML document")
	scriptPath := flag.String("script", "", "Viewer script injected into the shell")
	translations := flag.String("translations", "", "Translations JSON for the viewer script")
	port := flag.String("port", "", "Server port")
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	override(&cfg.Content.BookDir, *bookDir)
	override(&cfg.Content.BookSource, *source)
	override(&cfg.Content.AssetsDir, *assetsDir)
	override(&cfg.Content.ShellPath, *shellPath)
	override(&cfg.Content.ScriptPath, *scriptPath)
	override(&cfg.Content.TranslationsPath, *translations)
	override(&cfg.Server.Port, *port)
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
