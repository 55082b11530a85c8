package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/praetorian-inc/posjson/pkg/layout"
	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/spf13/cobra"
)

var (
	layoutsFormat string
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Inspect record layouts",
	Long:  "List and show the record layouts used to decode feed lines",
}

var layoutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available layouts",
	Args:  cobra.NoArgs,
	RunE:  runLayoutsList,
}

var layoutsShowCmd = &cobra.Command{
	Use:   "show <record-type>",
	Short: "Show the fields of one layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayoutsShow,
}

func init() {
	layoutsCmd.PersistentFlags().StringVar(&layoutsFormat, "format", "table", "Output format: table, json")
	layoutsCmd.AddCommand(layoutsListCmd)
	layoutsCmd.AddCommand(layoutsShowCmd)
}

func runLayoutsList(cmd *cobra.Command, args []string) error {
	set, err := loadLayouts(layoutsPath)
	if err != nil {
		return err
	}

	list := set.Layouts()
	switch layoutsFormat {
	case "json":
		return writeLayoutsJSON(cmd, list)
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tKIND\tFIELDS\tTITLE")
		for _, l := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.Discriminator, l.EffectiveKind(), len(l.Fields), l.Title)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d layouts\n", len(list))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", layoutsFormat)
	}
}

func runLayoutsShow(cmd *cobra.Command, args []string) error {
	set, err := loadLayouts(layoutsPath)
	if err != nil {
		return err
	}

	l := set.Lookup(args[0])
	if l == nil {
		return fmt.Errorf("no layout for record type %q", args[0])
	}

	switch layoutsFormat {
	case "json":
		return writeLayoutsJSON(cmd, l)
	case "table":
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Record type %s: %s (%s)\n\n", l.Discriminator, l.Title, l.EffectiveKind())

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tTYPE\tSTART\tEND\tWIDTH\tREQUIRED\tDESCRIPTION")
		for _, fd := range l.Fields {
			typ := fd.Type.String()
			if fd.Type == types.TypeDecimal {
				typ += "(" + strconv.Itoa(fd.Scale()) + ")"
			}
			required := ""
			if fd.Required {
				required = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				fd.Name, typ, offset(fd.StartOffset), offset(fd.EndOffset), fd.Width(), required, fd.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, pair := range layout.Overlaps(l) {
			fmt.Fprintf(out, "warning: %s overlaps %s\n", pair[0], pair[1])
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", layoutsFormat)
	}
}

func offset(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func writeLayoutsJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
