package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	modelFlag   string
	profileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "Nimbus - conversational weather assistant",
	Long: `Nimbus is a command-line weather assistant.

It drives an OpenAI-compatible chat API with a weather lookup tool backed
by the Open-Meteo geocoding and forecast services. Ask about the weather
in any city, or look cities up directly without the model.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Model to use (overrides config)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Assistant profile to use")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
