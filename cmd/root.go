package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/session"
)

var filePath string

var rootCmd = &cobra.Command{
	Use:   "fta",
	Short: "Fault tree and event tree analysis",
	Long: `fta evaluates fault trees (bottom-up gate logic) and event trees
(top-down cumulative probability) stored as JSON documents, and renders or
exports the results.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Path to the analysis JSON document")
}

// DiscoverDocument finds the document path using priority: env > flag > walk-up.
func DiscoverDocument() (string, error) {
	if envPath := os.Getenv("FTA_FILE"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			return filePath, nil
		}
		return "", fmt.Errorf("document not found at --file path: %s", filePath)
	}

	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, "fta.json")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	return "", fmt.Errorf("no analysis document found (set FTA_FILE, use --file, or run from a directory containing fta.json)")
}

// OpenSession discovers, loads, and evaluates the current document.
func OpenSession() (*session.Core, string, error) {
	path, err := DiscoverDocument()
	if err != nil {
		return nil, "", err
	}
	core, err := session.Load(path)
	if err != nil {
		return nil, "", err
	}
	return core, path, nil
}
