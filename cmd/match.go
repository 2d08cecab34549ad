package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/BlurryBat/photo-matcher/internal/ai"
	"github.com/BlurryBat/photo-matcher/internal/config"
	"github.com/BlurryBat/photo-matcher/internal/matcher"
)

var matchCmd = &cobra.Command{
	Use:   "match <reference> <photo>...",
	Short: "Find which group photos contain the person from the reference photo",
	Long: `Send one reference photo and a set of group photos to a vision model and
report which group photos contain the same person.

Examples:
  # Match against three group photos with the default provider
  photo-matcher match dad.jpg party1.jpg party2.jpg party3.jpg

  # Use a specific provider and credential
  photo-matcher match ref.jpg group/*.jpg --provider gemini --token $GEMINI_API_KEY

  # Output as JSON
  photo-matcher match ref.jpg group/*.jpg --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("provider", "", "AI provider: openai, gemini, ollama or llamacpp (defaults to AI_PROVIDER)")
	matchCmd.Flags().String("token", "", "API credential for the provider (defaults to the environment)")
	matchCmd.Flags().Bool("json", false, "Output as JSON")
}

// loadPhotos reads the reference and group photos from disk with a progress bar.
func loadPhotos(paths []string) ([]byte, [][]byte, error) {
	bar := progressbar.Default(int64(len(paths)), "loading photos")

	images := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		images = append(images, data)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return images[0], images[1:], nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	providerName := mustGetString(cmd, "provider")
	if providerName == "" {
		providerName = cfg.AI.Provider
	}

	ctx := context.Background()
	provider, err := ai.NewProvider(ctx, providerName, mustGetString(cmd, "token"), cfg)
	if err != nil {
		return err
	}

	reference, group, err := loadPhotos(args)
	if err != nil {
		return err
	}

	result, err := matcher.NewService(provider).Match(ctx, reference, group)
	if err != nil {
		return err
	}

	groupPaths := args[1:]

	if mustGetBool(cmd, "json") {
		return printMatchJSON(result, groupPaths, provider.GetUsage())
	}

	printMatchTable(result, groupPaths)
	printUsage(provider.GetUsage())
	return nil
}

// matchOutput is the JSON shape of a CLI match run.
type matchOutput struct {
	Provider   string    `json:"provider"`
	GroupCount int       `json:"group_count"`
	Matches    []int     `json:"matches"`
	Matched    []string  `json:"matched_files"`
	Usage      *ai.Usage `json:"usage,omitempty"`
}

func printMatchJSON(result *matcher.Result, groupPaths []string, usage *ai.Usage) error {
	matched := make([]string, 0, len(result.Matches))
	for _, idx := range result.Matches {
		matched = append(matched, groupPaths[idx-1])
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(matchOutput{
		Provider:   result.Provider,
		GroupCount: result.GroupCount,
		Matches:    result.Matches,
		Matched:    matched,
		Usage:      usage,
	})
}

func printMatchTable(result *matcher.Result, groupPaths []string) {
	matched := make(map[int]bool, len(result.Matches))
	for _, idx := range result.Matches {
		matched[idx] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPHOTO\tMATCH")
	for i, path := range groupPaths {
		marker := "-"
		if matched[i+1] {
			marker = "✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, filepath.Base(path), marker)
	}
	w.Flush()

	fmt.Printf("\n%d of %d photos matched (%s)\n", len(result.Matches), result.GroupCount, result.Provider)
}

func printUsage(usage *ai.Usage) {
	if usage == nil || (usage.InputTokens == 0 && usage.OutputTokens == 0) {
		return
	}
	fmt.Printf("Tokens: %d in / %d out", usage.InputTokens, usage.OutputTokens)
	if usage.TotalCost > 0 {
		fmt.Printf(", cost $%.4f", usage.TotalCost)
	}
	fmt.Println()
}
