package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/serene/internal/client"
	"github.com/MrSnakeDoc/serene/internal/logger"
	"github.com/MrSnakeDoc/serene/internal/tui"
	"github.com/MrSnakeDoc/serene/internal/version"
)

var CLI struct {
	Server  string           `help:"Serene API base URL." default:"http://localhost:8080" env:"SERENE_SERVER"`
	Timeout time.Duration    `help:"Timeout of one API request." default:"15s"`
	LogFile string           `help:"Write logs to this file (the terminal is busy)." default:"serene-tui.log" env:"SERENE_TUI_LOG"`
	Debug   bool             `help:"Log at debug level."`
	Version kong.VersionFlag `help:"Show version."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("serene-tui"),
		kong.Description("A calm journal and habit tracker for the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	level := "info"
	if CLI.Debug {
		level = "debug"
	}
	log := logger.NewWithOptions(logger.Options{Level: level, Pretty: true, File: CLI.LogFile})
	defer func() { _ = log.Sync() }()

	api := client.New(CLI.Server, &http.Client{Timeout: CLI.Timeout})
	log.Info("starting", logger.String("server", CLI.Server), logger.String("version", version.Version))

	p := tea.NewProgram(tui.New(api, log, tui.Options{Timeout: CLI.Timeout}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("tui stopped", logger.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
