package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/store"
)

var historyDB string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Archive and inspect document revisions",
}

// openArchive resolves the archive path: env > flag > default in CWD.
func openArchive() (*store.DB, error) {
	path := historyDB
	if envPath := os.Getenv("FTA_HISTORY_DB"); envPath != "" {
		path = envPath
	}
	if path == "" {
		path = ".fta-history.db"
	}
	return store.Open(path)
}

var historySaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Archive the current document as a new revision",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.Save(core.Document())
		if err != nil {
			return err
		}
		fmt.Printf("Saved revision %s\n", id)
		return nil
	},
}

var historyLimit int

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived revisions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		revisions, err := db.List(historyLimit)
		if err != nil {
			return err
		}
		if len(revisions) == 0 {
			fmt.Println("No revisions archived yet")
			return nil
		}
		for _, r := range revisions {
			saved := time.UnixMilli(r.SavedAt).Format("2006-01-02 15:04:05")
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Printf("%s  %s  %-4s %3d nodes  %s\n", id, saved, r.Mode, r.NodeCount, r.Title)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an archived revision's document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		rev, err := db.Get(args[0])
		if err != nil {
			return err
		}
		doc, err := rev.Document()
		if err != nil {
			return fmt.Errorf("decoding revision %s: %w", rev.ID, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "Path to the revision archive (default .fta-history.db)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Max revisions to list")
	historyCmd.AddCommand(historySaveCmd, historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
