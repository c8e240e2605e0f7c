package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheEnigmaticT/twincli/pkg/agent"
	"github.com/TheEnigmaticT/twincli/pkg/config"
	"github.com/TheEnigmaticT/twincli/pkg/ui"
)

const version = "v0.2.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config", "--config":
			if err := config.RunSetup(os.Stdin, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
				os.Exit(1)
			}
			return
		case "version", "--version", "-v":
			fmt.Println("TwinCLI " + version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			fmt.Fprintln(os.Stderr, "TwinCLI is not configured yet. Run 'twincli config' to set up your API keys.")
		} else {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		}
		os.Exit(1)
	}

	closeLog := setupLogging()
	defer closeLog()

	u := ui.New()
	ag, err := agent.New(cfg, u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	u.DrawBanner(version, ag.Model().Name, ag.ToolCount())

	if err := ag.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends zerolog output to ~/.twincli/twincli.log so diagnostics
// never interleave with the chat display.
func setupLogging() func() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("TWINCLI_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	dir, err := config.Dir()
	if err != nil {
		log.Logger = zerolog.Nop()
		return func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Logger = zerolog.Nop()
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, "twincli.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Logger = zerolog.Nop()
		return func() {}
	}

	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }
}

func printHelp() {
	fmt.Println(`TwinCLI - A terminal assistant powered by Gemini

Usage:
  twincli            Start an interactive chat session
  twincli config     Set up your Gemini and Serper API keys
  twincli version    Print the current version
  twincli help       Show this help message

During a session:
  /          Open the command picker
  /help      List slash commands
  /tokens    Show token usage and cost
  /model     Switch Gemini model
  exit       Leave the session`)
}
