package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/tree"
)

var (
	calcJSON bool
	calcMode string
	calcZero bool
	calcSave bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Recalculate probabilities for the whole tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, path, err := OpenSession()
		if err != nil {
			return err
		}

		if calcMode != "" {
			if err := core.SetMode(calcMode); err != nil {
				return err
			}
		}

		if calcSave {
			if err := core.Save(path); err != nil {
				return err
			}
		}

		doc := core.Document()
		if calcJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}

		if calcZero {
			for _, id := range core.ZeroIDs() {
				fmt.Println(id)
			}
			return nil
		}

		printTree(doc, core.ZeroIDs())
		return nil
	},
}

func init() {
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "Output the evaluated document as JSON")
	calcCmd.Flags().StringVar(&calcMode, "mode", "", "Override the document mode (FTA or ETA)")
	calcCmd.Flags().BoolVar(&calcZero, "zero", false, "Only list ids of zero-probability nodes")
	calcCmd.Flags().BoolVar(&calcSave, "save", false, "Write the evaluated document back to disk")
	rootCmd.AddCommand(calcCmd)
}

func printTree(doc *tree.Document, zeroIDs []string) {
	zeros := make(map[string]bool, len(zeroIDs))
	for _, id := range zeroIDs {
		zeros[id] = true
	}

	fmt.Printf("\n  %s  (%s, %s)\n\n", doc.Title, doc.Mode, doc.Date)

	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		calc := "n/a"
		if n.Calculated != nil {
			calc = fmt.Sprintf("%.6g", *n.Calculated)
		}
		gateLabel := ""
		if len(n.Children) > 0 {
			gateLabel = fmt.Sprintf(" [%s]", n.LogicGate)
		}
		marker := ""
		if zeros[n.ID] {
			marker = "  *zero*"
		}
		fmt.Printf("  %s%s%s  P=%g  P_calc=%s%s\n",
			strings.Repeat("    ", depth), n.Name, gateLabel, n.Probability, calc, marker)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(doc.Tree, 0)
	fmt.Println()
}
