// Copyright 2023 nbiotcloud
// Licensed under the MIT license.

package ucdp

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Overview renders the instance tree of m as a table, one row per instance.
func Overview(m *Module) string {
	var sb strings.Builder
	tbl := tablewriter.NewWriter(&sb)
	tbl.SetHeader([]string{"Instance", "Module", "Ports", "Insts"})
	tbl.SetAutoWrapText(false)
	tbl.SetAutoFormatHeaders(false)
	var walk func(m *Module, indent int)
	walk = func(m *Module, indent int) {
		name := strings.Repeat("  ", indent) + m.Name()
		tbl.Append([]string{
			name,
			m.ModName(),
			fmt.Sprintf("%d", len(m.Ports())),
			fmt.Sprintf("%d", len(m.Insts())),
		})
		for _, c := range m.Insts() {
			walk(c, indent+1)
		}
	}
	walk(m, 0)
	tbl.Render()
	stats := m.Stats()
	fmt.Fprintf(&sb, "%d instances of %d modules\n", stats.Insts, stats.Mods)
	return sb.String()
}
