package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/render"
)

var (
	renderOut      string
	renderDot      string
	renderNoRender bool
	renderHideZero bool
	renderHQ       bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the evaluated tree as a Graphviz diagram",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}

		dotText := render.BuildDOT(core.Document(), render.Options{HideZero: renderHideZero})

		if renderDot != "" {
			if err := os.WriteFile(renderDot, []byte(dotText), 0o644); err != nil {
				return fmt.Errorf("writing DOT file: %w", err)
			}
			fmt.Printf("Wrote DOT file: %s\n", renderDot)
		}

		if renderNoRender {
			if renderDot == "" {
				fmt.Print(dotText)
			}
			return nil
		}

		if err := render.RenderPNG(dotText, renderOut, renderHQ); err != nil {
			return err
		}
		fmt.Printf("Rendered image: %s\n", renderOut)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "fta_diagram.png", "Output PNG path")
	renderCmd.Flags().StringVar(&renderDot, "dot", "", "Also write DOT text to this path")
	renderCmd.Flags().BoolVar(&renderNoRender, "no-render", false, "Skip Graphviz; print or write DOT only")
	renderCmd.Flags().BoolVar(&renderHideZero, "hide-zero", false, "Hide nodes with zero calculated probability")
	renderCmd.Flags().BoolVar(&renderHQ, "high-quality", false, "Render at high DPI (slower)")
	rootCmd.AddCommand(renderCmd)
}
