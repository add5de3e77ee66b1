package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nimbuslabs/nimbus/internal/assistant"
	"github.com/nimbuslabs/nimbus/internal/config"
	"github.com/nimbuslabs/nimbus/internal/llm"
	"github.com/nimbuslabs/nimbus/internal/storage"
	"github.com/nimbuslabs/nimbus/internal/storage/sqlite"
	"github.com/nimbuslabs/nimbus/internal/weather"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive weather conversation",
	Long: `Start an interactive conversation with the weather assistant.
Ask about the weather in one or more cities; the assistant fetches
current conditions and answers conversationally.

Examples:
  nimbus chat
  nimbus chat --model gpt-4o-mini
  nimbus chat --profile terse`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Load assistant profile if specified
	var profile *assistant.Profile
	if profileFlag != "" {
		profilePath := filepath.Join(cfg.Agent.ProfilesDir, profileFlag+".yaml")
		profile, err = assistant.LoadProfile(profilePath)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
	}

	model := modelFlag
	if model == "" {
		if profile != nil && profile.Model != "" {
			model = profile.Model
		} else {
			model = cfg.Provider.Model
		}
	}

	maxTurns := cfg.Agent.MaxTurns
	if profile != nil && profile.MaxTurns > 0 {
		maxTurns = profile.MaxTurns
	}

	fmt.Printf("Nimbus - Weather Assistant\n")
	if profile != nil {
		fmt.Printf("Profile: %s\n", profile.Name)
	}
	fmt.Printf("Model: %s\n", model)
	fmt.Printf("Type /help for commands, /quit to exit\n\n")

	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	svc := weather.NewService(weatherClientConfig(cfg), cacheOrNil(cache))
	defer svc.Close()

	client := llm.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, model, cfg.Provider.RequestTimeout)
	a := assistant.New(client, svc, maxTurns)

	if profile != nil {
		a.SetSystemPrompt(profile.SystemPrompt)
	}

	// Wire up callbacks for display
	a.OnTextDelta = func(delta string) {
		fmt.Print(delta)
	}
	a.OnCityLookup = func(city string) {
		fmt.Printf("\n  \033[33m⚡ %s: %s\033[0m\n", assistant.WeatherToolName, city)
	}
	a.OnToolResult = func(name string, content string) {
		// Show first few lines of the tool result
		lines := strings.Split(strings.TrimSpace(content), "\n")
		preview := lines
		if len(preview) > 8 {
			preview = preview[:8]
		}
		for _, line := range preview {
			fmt.Printf("  \033[90m│ %s\033[0m\n", line)
		}
		if len(lines) > 8 {
			fmt.Printf("  \033[90m│ ... (%d more lines)\033[0m\n", len(lines)-8)
		}
		fmt.Println()
	}

	// Set up readline for input with history
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36myou>\033[0m ",
		HistoryFile:     "/tmp/nimbus_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Per-request cancellation: Ctrl+C cancels the active request, not
	// the whole app.
	var reqCancel context.CancelFunc
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for range sigCh {
			if reqCancel != nil {
				reqCancel()
			}
		}
	}()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Handle slash commands
		if strings.HasPrefix(input, "/") {
			if handleCommand(input, a) {
				continue
			}
		}

		reqCtx, cancel := context.WithCancel(context.Background())
		reqCancel = cancel

		fmt.Printf("\n\033[32massistant>\033[0m ")
		err = a.ProcessMessage(reqCtx, input)
		wasInterrupted := reqCtx.Err() != nil
		cancel()
		reqCancel = nil

		if err != nil {
			if wasInterrupted {
				fmt.Println("\n(interrupted)")
				continue
			}
			if llm.IsTimeout(err) {
				fmt.Printf("\n\033[31m[system] API request timed out: %s\033[0m\n\n", err)
				continue
			}
			fmt.Printf("\n\033[31merror: %s\033[0m\n\n", err)
			continue
		}

		fmt.Printf("\n\n")
	}
}

// openCache opens the geocoding cache, or returns nil when disabled or
// unavailable (a broken cache never blocks the chat).
func openCache(cfg *config.Config) storage.LocationStore {
	if !cfg.Cache.Enabled || cfg.Cache.DBPath == "" {
		return nil
	}
	cache, err := sqlite.Open(cfg.Cache.DBPath)
	if err != nil {
		fmt.Printf("Warning: geocoding cache unavailable: %v\n", err)
		return nil
	}
	return cache
}

// cacheOrNil narrows the store to what the weather service needs,
// avoiding a typed nil when the cache is disabled.
func cacheOrNil(cache storage.LocationStore) weather.LocationCache {
	if cache == nil {
		return nil
	}
	return cache
}

func weatherClientConfig(cfg *config.Config) weather.ClientConfig {
	wc := weather.DefaultClientConfig()
	wc.GeocodingURL = cfg.Weather.GeocodingURL
	wc.ForecastURL = cfg.Weather.ForecastURL
	if cfg.Weather.Timeout > 0 {
		wc.Timeout = cfg.Weather.Timeout
	}
	if cfg.Weather.ConnectTimeout > 0 {
		wc.ConnectTimeout = cfg.Weather.ConnectTimeout
	}
	if cfg.Weather.MaxConns > 0 {
		wc.MaxConns = cfg.Weather.MaxConns
	}
	if cfg.Weather.MaxIdleConns > 0 {
		wc.MaxIdleConns = cfg.Weather.MaxIdleConns
	}
	return wc
}

func handleCommand(input string, a *assistant.Assistant) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		fmt.Println("Goodbye!")
		os.Exit(0)
	case "/reset":
		a.Reset()
		fmt.Println("Conversation reset.")
		fmt.Println()
	case "/history":
		fmt.Println(a.Transcript().JSON())
		fmt.Println()
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help     - Show this help")
		fmt.Println("  /reset    - Clear conversation history")
		fmt.Println("  /history  - Show raw conversation history (JSON)")
		fmt.Println("  /quit     - Exit")
		fmt.Println()
	default:
		fmt.Printf("Unknown command: %s (try /help)\n\n", input)
	}
	return true
}
