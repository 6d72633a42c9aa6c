package vrfctl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

var listHeaders = []string{"NAMESPACE", "NAME", "RD", "IMPORTS", "EXPORTS", "PREFIXES"}

// List prints the VRFs as a table.
func List(ctx context.Context, client *Client, namespace string, out io.Writer) error {
	vrfs, err := client.ListVRFs(ctx, namespace)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(vrfs))
	for _, v := range vrfs {
		rows = append(rows, []string{
			v.Namespace, v.Name, v.RD,
			joinOrDash(v.Imports), joinOrDash(v.Exports), joinOrDash(v.Prefixes),
		})
	}
	return renderTable(out, listHeaders, rows)
}

func renderTable(out io.Writer, headers []string, rows [][]string) error {
	cell := tw.CellConfig{
		Formatting: tw.CellFormatting{
			AutoWrap:  tw.WrapNone,
			Alignment: tw.AlignLeft,
		},
		Padding: tw.CellPadding{Global: tw.Padding{Right: "  "}},
	}
	rendition := tw.Rendition{
		Borders: tw.BorderNone,
		Settings: tw.Settings{
			Lines:      tw.LinesNone,
			Separators: tw.SeparatorsNone,
		},
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithRenderer(renderer.NewBlueprint(rendition)),
		tablewriter.WithConfig(tablewriter.Config{Row: cell, Header: cell}),
	)
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("add table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
