package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/romboooo/distr-is/internal/api"
	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/config"
	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/log"
	"github.com/romboooo/distr-is/internal/service"
	"github.com/romboooo/distr-is/internal/session"
	"github.com/romboooo/distr-is/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var setup bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&setup, "setup", false, "run the interactive setup again")
	flag.Parse()

	if showVersion {
		fmt.Printf("distr %s\n", Version)
		return
	}

	if err := run(setup); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(forceSetup bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting distr", "version", Version)

	if forceSetup || !cfg.HasSession() {
		if err := runSetupFlow(cfg, logger); err != nil {
			return err
		}
		// Reload so the TUI starts from the persisted state
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
	}

	tokens := config.NewTokenStore(cfg)
	client := api.NewClient(cfg.API.BaseURL, tokens, logger)

	store, err := cache.NewStore(config.GetCachePath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer store.Close()

	sess := session.NewManager(client, tokens, store, logger)
	client.SetUnauthorizedHandler(sess.HandleUnauthorized)

	svc := tui.Services{
		Session:    sess,
		Users:      service.NewUserService(client, store, logger),
		Artists:    service.NewArtistService(client, store, logger),
		Labels:     service.NewLabelService(client, store, logger),
		Releases:   service.NewReleaseService(client, store, logger),
		Moderation: service.NewModerationService(client, store, logger),
		Search:     service.NewSearchService(logger),
	}

	model := tui.NewModel(svc, cfg.UI.PageSize)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for the backend URL and an initial sign-in. The saved
// token lets the next start go straight to the dashboard.
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println()
	fmt.Println("Welcome to distr!")
	fmt.Println()

	fmt.Printf("Backend URL [%s]: ", cfg.API.BaseURL)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if url := strings.TrimSpace(input); url != "" {
		cfg.API.BaseURL = url
	}

	tokens := config.NewTokenStore(cfg)
	client := api.NewClient(cfg.API.BaseURL, tokens, logger)

	for {
		fmt.Print("Login: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		login := strings.TrimSpace(input)
		if login == "" {
			fmt.Println("Login cannot be empty. Please try again.")
			continue
		}

		fmt.Print("Password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		result, err := client.Login(ctx, domain.Credentials{
			Login:    login,
			Password: string(passwordBytes),
		})
		cancel()
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				fmt.Println("✗ Invalid login or password. Please try again.")
				continue
			}
			return fmt.Errorf("authentication failed: %w", err)
		}

		cfg.Auth.Token = result.Token
		cfg.Auth.Login = login
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()

	return nil
}
