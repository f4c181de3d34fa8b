package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavedj/internal/config"
	"github.com/llehouerou/wavedj/internal/logging"
)

var (
	logger    zerolog.Logger
	logCloser io.Closer
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "wavedj",
	Short:         "wavedj - crossfading terminal player for Subsonic servers",
	Long:          "wavedj streams a queue from a Subsonic-compatible server through two decks with true crossfades.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(playCmd, lastfmAuthCmd)
}

func main() {
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and logging (called by commands that need it).
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err = logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	return nil
}
