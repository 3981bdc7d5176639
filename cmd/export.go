package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"faulttree/fta/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the evaluated tree for external tools",
}

var exportXMLCmd = &cobra.Command{
	Use:   "xml",
	Short: "Export as a FaultTree XML document",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = "fta_export.xml"
		}
		if err := export.XMLFile(core.Document(), out); err != nil {
			return err
		}
		fmt.Printf("Exported XML: %s\n", out)
		return nil
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export as an Excel workbook with hierarchical columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, _, err := OpenSession()
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = "fta_export.xlsx"
		}
		if err := export.Excel(core.Document(), out); err != nil {
			return err
		}
		fmt.Printf("Exported workbook: %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOut, "out", "o", "", "Output path")
	exportCmd.AddCommand(exportXMLCmd, exportXLSXCmd)
	rootCmd.AddCommand(exportCmd)
}
