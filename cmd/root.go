package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-matcher",
	Short: "Find a person across group photos using a hosted vision model",
	Long: `Photo Matcher takes one reference photo of a person and a set of group
photos, sends them to a vision model (OpenAI, Gemini, Ollama or llama.cpp)
and reports which group photos contain the same person.

Run "photo-matcher serve" for the browser UI or "photo-matcher match" for
one-off matching from the terminal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
