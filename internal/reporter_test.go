package internal

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/models"
	"github.com/penwyp/UsagePivot/provision"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func writeXLSX(t *testing.T, path string, sheets ...sheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func row(cells ...interface{}) []interface{} {
	return cells
}

// writeInputs creates the four input workbooks of a small lab: alice and bob
// overlap on VCS for an hour, alice also runs Virtuoso once
func writeInputs(t *testing.T, dir string) Inputs {
	t.Helper()
	in := Inputs{
		Usage:        filepath.Join(dir, "usage.xlsx"),
		Features:     filepath.Join(dir, "features.xlsx"),
		Users:        filepath.Join(dir, "users.xlsx"),
		Provisioning: filepath.Join(dir, "provisioning.xlsx"),
	}

	writeXLSX(t, in.Features,
		sheet{name: "Cadence", rows: [][]interface{}{
			row("Product", "Feature"),
			row("Virtuoso", "Virtuoso_XL"),
		}},
		sheet{name: "Synopsys", rows: [][]interface{}{
			row("Product", "Feature"),
			row("VCS", "VCSRuntime_Net"),
		}},
	)

	writeXLSX(t, in.Users,
		sheet{name: "Admin-User List", rows: [][]interface{}{
			row("LAST NAME", "FIRST NAME", "PROJECT NAME", "ORGANIZATION", "microelectornics.us E-MAIL", "NOTES"),
			row("Smith", "Alice", "Apollo", "UCR", "alice@example.com", ""),
			row("Jones", "Bob", "Apollo", "UCR", "bob@example.com", ""),
		}},
	)

	writeXLSX(t, in.Usage,
		sheet{name: "Cover", rows: [][]interface{}{row("License usage export")}},
		sheet{name: "Usage", rows: [][]interface{}{
			row("User Name", "Email", "Product", "Feature", "Start Time", "End Time", "Total usage time (hours)"),
			row("alice", "alice@example.com", "VCS Runtime", "VCSRuntime_Net", "2024-03-01 09:00:00", "2024-03-01 11:00:00", 2),
			row("bob", "bob@example.com", "VCS Runtime", "VCSRuntime_Net", "2024-03-01 10:00:00", "2024-03-01 12:00:00", 2),
			row("alice", "alice@example.com", "Virtuoso XL", "Virtuoso_XL", "2024-03-01 13:00:00", "2024-03-01 14:00:00", 1),
		}},
	)

	writeXLSX(t, in.Provisioning,
		sheet{name: "Current Provisioning", rows: [][]interface{}{
			row("Project", "Performer", "Vendor", "Product Feature", "Current Provision"),
			row("Apollo", "UCR", "Synopsys", "VCS", 1),
			row("Apollo", "UCR", "Cadence", "Virtuoso", 3),
		}},
	)
	return in
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Report.OutputDir = t.TempDir()
	return cfg
}

func newTestReporter(t *testing.T, cfg *config.Config) *Reporter {
	t.Helper()
	r, err := NewReporter(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, r.Close()) })
	return r
}

func TestNewReporter_RequiresConfig(t *testing.T) {
	_, err := NewReporter(nil)
	assert.Error(t, err)
}

func TestReporter_Run(t *testing.T) {
	cfg := testConfig(t)
	in := writeInputs(t, t.TempDir())
	r := newTestReporter(t, cfg)

	result, err := r.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Report.OutputDir, "usage-processed.xlsx"), result.Output)
	assert.Equal(t, 2, result.PeakConcurrency)
	assert.Equal(t, 3, result.Records())
	assert.Equal(t, provision.Summary{Over: 1, Under: 1}, result.Provisioning)

	// performer view: Cadence sorts before Synopsys, users listed under each feature
	require.Len(t, result.Performer.Rows, 11)
	assert.Equal(t, []string{"Apollo", "", "", "", "", "", "5", "", ""}, result.Performer.Rows[0].Strings())
	assert.Equal(t, []string{"", "", "", "VCS", "", "", "4", "", "2"}, result.Performer.Rows[7].Strings())
	assert.Equal(t, []string{"", "", "", "", "VCS Runtime", "", "4", "2", "2"}, result.Performer.Rows[8].Strings())
	assert.Equal(t, models.ByTool.Columns(), result.Tool.Columns)

	info, err := os.Stat(result.Output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0666), info.Mode().Perm())

	f, err := excelize.OpenFile(result.Output)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Cover", "Usage", models.SheetPerformerSummary, models.SheetToolSummary, models.SheetActualUsage,
	}, f.GetSheetList())

	usage, err := f.GetRows("Usage")
	require.NoError(t, err)
	require.Len(t, usage, 4)
	assert.Equal(t, []string{"Vendor Name", "Product Name", "Organization", "Project Name"}, usage[0][7:])
	assert.Equal(t, []string{"Synopsys", "VCS", "UCR", "Apollo"}, usage[1][7:])

	prov, err := f.GetRows(models.SheetActualUsage)
	require.NoError(t, err)
	require.Len(t, prov, 3)
	assert.Equal(t, models.ProvisionColumns, prov[0])
	assert.Equal(t, []string{"Apollo", "UCR", "Cadence", "Virtuoso", "3", "1", "2", "", "", "1"}, prov[1])
	assert.Equal(t, []string{"Apollo", "UCR", "Synopsys", "VCS", "1", "2", "", "-1", "", "4"}, prov[2])
}

func TestReporter_BuildWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.IncludeUsers = false
	in := writeInputs(t, t.TempDir())
	r := newTestReporter(t, cfg)

	result, err := r.Build(context.Background(), in)
	require.NoError(t, err)

	assert.Empty(t, result.Output)
	assert.Len(t, result.Performer.Rows, 8)
	assert.NoFileExists(t, filepath.Join(cfg.Report.OutputDir, "usage-processed.xlsx"))

	require.Len(t, result.Sheets, 2)
	assert.Equal(t, "Cover", result.Sheets[0].Name)
	assert.Equal(t, []string{"License usage export"}, result.Sheets[0].Columns)
	assert.Equal(t, result.Usage.Table, result.Sheets[1])
}

func TestReporter_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		in := writeInputs(t, t.TempDir())
		in.Users = filepath.Join(t.TempDir(), "nope.xlsx")

		_, err := newTestReporter(t, testConfig(t)).Run(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDataMissing))
		assert.Contains(t, err.Error(), "users workbook not found")
	})

	t.Run("unknown user has no project", func(t *testing.T) {
		dir := t.TempDir()
		in := writeInputs(t, dir)
		writeXLSX(t, in.Users, sheet{name: "Admin-User List", rows: [][]interface{}{
			row("LAST NAME", "FIRST NAME", "PROJECT NAME", "ORGANIZATION", "microelectornics.us E-MAIL", "NOTES"),
			row("Smith", "Alice", "Apollo", "UCR", "alice@example.com", ""),
		}})

		_, err := newTestReporter(t, testConfig(t)).Run(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIdentity))
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.App.Timezone = "Mars/Olympus"

		_, err := newTestReporter(t, cfg).Build(context.Background(), writeInputs(t, t.TempDir()))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestReporter(t, testConfig(t)).Run(ctx, writeInputs(t, t.TempDir()))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReporter_SheetCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()
	in := writeInputs(t, t.TempDir())
	r := newTestReporter(t, cfg)
	require.NotNil(t, r.store)

	first, err := r.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Positive(t, r.store.Len())

	second, err := r.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.Performer, second.Performer)
	assert.Equal(t, first.Provision, second.Provision)
}

func TestResult_Views(t *testing.T) {
	r := newTestReporter(t, testConfig(t))
	result, err := r.Build(context.Background(), writeInputs(t, t.TempDir()))
	require.NoError(t, err)

	for view, name := range map[string]string{
		"":          models.SheetPerformerSummary,
		"performer": models.SheetPerformerSummary,
		"tool":      models.SheetToolSummary,
		"provision": models.SheetActualUsage,
	} {
		table, err := result.Table(view)
		require.NoError(t, err)
		assert.Equal(t, name, table.Name)
	}
	_, err = result.Table("sessions")
	assert.Error(t, err)

	data := result.UIData()
	require.Len(t, data.Tabs, 3)
	assert.Equal(t, models.SheetToolSummary, data.Tabs[1].Title)
	assert.Equal(t, 2, data.Summary.PeakConcurrency)
	assert.Equal(t, 3, data.Summary.Records)
	assert.Equal(t, "usage.xlsx", data.Summary.Source)

	bundle := result.Bundle()
	assert.Len(t, bundle.Sheets, 2)
	assert.Equal(t, result.Provision, bundle.Provision)
}

func TestReporter_Watch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Debounce = 10 * time.Millisecond
	in := writeInputs(t, t.TempDir())
	r := newTestReporter(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs, results int32
	run := func(ctx context.Context, in Inputs) (*Result, error) {
		atomic.AddInt32(&runs, 1)
		return &Result{Inputs: in}, nil
	}
	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, in, run, func(res *Result, err error) {
			assert.NoError(t, err)
			assert.Equal(t, in, res.Inputs)
			atomic.AddInt32(&results, 1)
		})
	}()

	// keep rewriting an input until the watcher is up and reports it
	features, err := os.ReadFile(in.Features)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		assert.NoError(t, os.WriteFile(in.Features, features, 0644))
		return atomic.LoadInt32(&results) > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Positive(t, atomic.LoadInt32(&runs))
}

func TestInputs_Validate(t *testing.T) {
	dir := t.TempDir()
	in := writeInputs(t, dir)
	assert.NoError(t, in.Validate())

	in.Provisioning = ""
	assert.ErrorContains(t, in.Validate(), "provisioning workbook is required")

	in.Provisioning = dir
	assert.ErrorContains(t, in.Validate(), "provisioning workbook is a directory")
}
