package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/tree"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Inspect and mutate tree nodes",
}

var (
	addParent string
	addID     string
	addName   string
	addType   string
	addProb   float64
	addGate   string
	addNotes  string
	addLinks  []string
)

var nodeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a node under a parent and recalculate",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, path, err := OpenSession()
		if err != nil {
			return err
		}

		id := addID
		if id == "" {
			id, err = core.NextChildID(addParent)
			if err != nil {
				return err
			}
		} else if core.Document().Tree.Find(id) != nil {
			return fmt.Errorf("node id already in use: %s", id)
		}
		if core.Document().Tree.Find(addParent) == nil {
			return fmt.Errorf("parent node not found: %s", addParent)
		}

		links, err := parseLinkFlags(addLinks)
		if err != nil {
			return err
		}

		node := &tree.Node{
			ID:          id,
			Name:        addName,
			Type:        addType,
			Probability: addProb,
			LogicGate:   strings.ToUpper(addGate),
			Notes:       addNotes,
			Children:    []*tree.Node{},
			Links:       links,
		}
		if err := core.AddNode(addParent, node); err != nil {
			return err
		}
		if err := core.Save(path); err != nil {
			return err
		}
		fmt.Printf("Added %s under %s\n", id, addParent)
		return nil
	},
}

var (
	updName  string
	updType  string
	updProb  float64
	updGate  string
	updNotes string
	updLinks []string
)

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Merge fields into a node and recalculate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, path, err := OpenSession()
		if err != nil {
			return err
		}

		var upd tree.NodeUpdate
		if cmd.Flags().Changed("name") {
			upd.Name = &updName
		}
		if cmd.Flags().Changed("type") {
			upd.Type = &updType
		}
		if cmd.Flags().Changed("prob") {
			upd.Probability = &updProb
		}
		if cmd.Flags().Changed("gate") {
			upd.LogicGate = &updGate
		}
		if cmd.Flags().Changed("notes") {
			upd.Notes = &updNotes
		}
		if cmd.Flags().Changed("link") {
			links, err := parseLinkFlags(updLinks)
			if err != nil {
				return err
			}
			upd.Links = &links
		}

		ok, err := core.UpdateNode(args[0], upd)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("node not found: %s", args[0])
		}
		if err := core.Save(path); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a node and its subtree, then recalculate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, path, err := OpenSession()
		if err != nil {
			return err
		}
		core.DeleteNode(args[0])
		if err := core.Save(path); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var nodeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one node's fields and resolved links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}
		root := core.Document().Tree
		n := root.Find(args[0])
		if n == nil {
			return fmt.Errorf("node not found: %s", args[0])
		}

		calc := "n/a"
		if n.Calculated != nil {
			calc = fmt.Sprintf("%.6g", *n.Calculated)
		}
		fmt.Printf("id:          %s\n", n.ID)
		fmt.Printf("name:        %s\n", n.Name)
		fmt.Printf("type:        %s\n", n.Type)
		fmt.Printf("probability: %g\n", n.Probability)
		fmt.Printf("calculated:  %s\n", calc)
		fmt.Printf("gate:        %s\n", n.LogicGate)
		fmt.Printf("children:    %d\n", len(n.Children))
		if n.Notes != "" {
			fmt.Printf("notes:       %s\n", n.Notes)
		}
		for _, l := range n.Links {
			label := "(dangling)"
			if target := root.Find(l.TargetID); target != nil {
				label = target.Name
			}
			fmt.Printf("link:        %s -> %s %s\n", l.Relation, l.TargetID, label)
		}
		return nil
	},
}

var listJSON bool

var nodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all nodes as (id, name) pairs in pre-order",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}
		refs := core.Document().Tree.Flatten()
		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(refs)
		}
		for _, r := range refs {
			fmt.Printf("%-24s %s\n", r.ID, r.Name)
		}
		return nil
	},
}

// parseLinkFlags turns "AND:target_id" / "OR:target_id" flags into links.
func parseLinkFlags(specs []string) ([]tree.Link, error) {
	links := make([]tree.Link, 0, len(specs))
	for _, s := range specs {
		rel, target, ok := strings.Cut(s, ":")
		rel = strings.ToUpper(strings.TrimSpace(rel))
		if !ok || target == "" || (rel != "AND" && rel != "OR") {
			return nil, fmt.Errorf("invalid link %q (want AND:<id> or OR:<id>)", s)
		}
		links = append(links, tree.Link{TargetID: target, Relation: rel})
	}
	return links, nil
}

func init() {
	nodeAddCmd.Flags().StringVar(&addParent, "parent", "root", "Parent node id")
	nodeAddCmd.Flags().StringVar(&addID, "id", "", "Node id (default: next {parent}_{n})")
	nodeAddCmd.Flags().StringVar(&addName, "name", "", "Node name")
	nodeAddCmd.Flags().StringVar(&addType, "type", "Event", "Node type")
	nodeAddCmd.Flags().Float64Var(&addProb, "prob", 1.0, "Base probability [0,1]")
	nodeAddCmd.Flags().StringVar(&addGate, "gate", "OR", "Logic gate (AND or OR)")
	nodeAddCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	nodeAddCmd.Flags().StringArrayVar(&addLinks, "link", nil, "Link as REL:target_id, repeatable")

	nodeUpdateCmd.Flags().StringVar(&updName, "name", "", "New name")
	nodeUpdateCmd.Flags().StringVar(&updType, "type", "", "New type")
	nodeUpdateCmd.Flags().Float64Var(&updProb, "prob", 0, "New base probability [0,1]")
	nodeUpdateCmd.Flags().StringVar(&updGate, "gate", "", "New logic gate (AND or OR)")
	nodeUpdateCmd.Flags().StringVar(&updNotes, "notes", "", "New notes")
	nodeUpdateCmd.Flags().StringArrayVar(&updLinks, "link", nil, "Replace links with REL:target_id, repeatable")

	nodeListCmd.Flags().BoolVar(&listJSON, "json", false, "JSON output")

	nodeCmd.AddCommand(nodeAddCmd, nodeUpdateCmd, nodeDeleteCmd, nodeShowCmd, nodeListCmd)
	rootCmd.AddCommand(nodeCmd)
}
