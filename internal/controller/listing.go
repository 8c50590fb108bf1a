package controller

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	m "github.com/mouse-blink/debugrun/model"
)

// ListUnits renders the registered tests as a table, one row per test,
// in the order a run would execute them.
func ListUnits(w io.Writer, groups []m.Group) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Group", "Test"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	total := 0

	for _, group := range groups {
		for _, name := range group.Units {
			table.Append([]string{group.Name, name})

			total++
		}
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", total)})
	table.Render()

	_, _ = fmt.Fprintf(w, "\n%s", tableBuffer.String())
}
