package cmd

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/internal"
	"github.com/penwyp/UsagePivot/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() { versionOutput = "default" })

	out, err := execute(t, "version", "-o", "short")
	require.NoError(t, err)
	assert.Equal(t, config.Version+"\n", out)

	out, err = execute(t, "version", "-o", "json")
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, sonic.UnmarshalString(out, &info))
	assert.Equal(t, config.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version", "-o", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:     "+config.Version)

	_, err = execute(t, "version", "-o", "yaml")
	assert.EqualError(t, err, "unsupported output format: yaml")
}

func TestReportCommand_RequiresFourInputs(t *testing.T) {
	_, err := execute(t, "report", "usage.xlsx", "features.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 4 arg(s)")
}

func TestPrintResult(t *testing.T) {
	result := &internal.Result{
		Tool: models.Table{
			Name:    models.SheetToolSummary,
			Columns: []string{"Project", "Vendor"},
			Rows:    []models.Row{{models.Text("Apollo"), models.Text("Synopsys")}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, config.ReportConfig{Print: "csv", View: "tool"}, result))
	assert.Equal(t, "Project,Vendor\nApollo,Synopsys\n", buf.String())

	buf.Reset()
	require.NoError(t, printResult(&buf, config.ReportConfig{Print: "none", View: "tool"}, result))
	assert.Empty(t, buf.String())

	assert.Error(t, printResult(&buf, config.ReportConfig{Print: "xml", View: "tool"}, result))
	assert.Error(t, printResult(&buf, config.ReportConfig{Print: "csv", View: "sessions"}, result))
}

func TestUIConfig(t *testing.T) {
	c := uiConfig(config.UIConfig{Theme: "light", TableHeight: 12, NoColor: true})
	assert.Equal(t, "light", c.Theme)
	assert.Equal(t, 12, c.TableHeight)
	assert.True(t, c.NoColor)
}

func TestInputsFromArgs(t *testing.T) {
	in := inputsFromArgs([]string{"u.xlsx", "f.xlsx", "users.xlsx", "p.xlsx"})
	assert.Equal(t, internal.Inputs{Usage: "u.xlsx", Features: "f.xlsx", Users: "users.xlsx", Provisioning: "p.xlsx"}, in)
}
