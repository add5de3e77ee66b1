package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nimbuslabs/nimbus/internal/assistant"
	"github.com/nimbuslabs/nimbus/internal/config"
	"github.com/nimbuslabs/nimbus/internal/weather"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup CITY [CITY...]",
	Short: "Fetch current weather for cities without the model",
	Long: `Fetch current conditions for one or more cities directly from the
weather APIs, bypassing the LLM. Lookups run concurrently and results
print in the order the cities were given.

Examples:
  nimbus lookup Paris
  nimbus lookup Paris Tokyo "New York"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	svc := weather.NewService(weatherClientConfig(cfg), cacheOrNil(cache))
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := assistant.LookupAll(ctx, svc, args, nil)
	for i, r := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(r)
	}
	return nil
}
