package internal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/models"
	"github.com/penwyp/UsagePivot/output"
	"github.com/penwyp/UsagePivot/provision"
	"github.com/penwyp/UsagePivot/ui"
)

// Result holds the tables of one run
type Result struct {
	Inputs Inputs
	// Output is the processed workbook path; empty when nothing was written
	Output string

	Usage     *fileio.UsageData
	Sheets    []models.Table
	Performer models.Table
	Tool      models.Table
	Provision models.Table

	Provisioning    provision.Summary
	PeakConcurrency int
	Duration        time.Duration
}

// Bundle returns the contents of the processed workbook
func (r *Result) Bundle() output.ReportBundle {
	return output.ReportBundle{
		Sheets:    r.Sheets,
		Performer: r.Performer,
		Tool:      r.Tool,
		Provision: r.Provision,
	}
}

// Table returns the report table for a view name: performer, tool or
// provision
func (r *Result) Table(view string) (models.Table, error) {
	switch view {
	case "", "performer":
		return r.Performer, nil
	case "tool":
		return r.Tool, nil
	case "provision":
		return r.Provision, nil
	}
	return models.Table{}, fmt.Errorf("unknown view: %s", view)
}

// Records returns the number of usage records read
func (r *Result) Records() int {
	if r.Usage == nil {
		return 0
	}
	return len(r.Usage.Records)
}

// UIData converts the result for the viewer
func (r *Result) UIData() ui.Data {
	tables := []models.Table{r.Performer, r.Tool, r.Provision}
	tabs := make([]ui.Tab, len(tables))
	for i, t := range tables {
		tabs[i] = ui.Tab{Title: t.Name, Table: t}
	}
	return ui.Data{
		Tabs: tabs,
		Summary: ui.Summary{
			PeakConcurrency: r.PeakConcurrency,
			Records:         r.Records(),
			Source:          filepath.Base(r.Inputs.Usage),
		},
	}
}
