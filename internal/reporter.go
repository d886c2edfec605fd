// Package internal wires the input loaders, the aggregation trees and the
// report writers into the batch run behind the CLI.
package internal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/penwyp/UsagePivot/cache"
	"github.com/penwyp/UsagePivot/calculations"
	"github.com/penwyp/UsagePivot/config"
	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/models"
	"github.com/penwyp/UsagePivot/output"
	"github.com/penwyp/UsagePivot/provision"
)

// Inputs are the four workbooks of one run
type Inputs struct {
	Usage        string
	Features     string
	Users        string
	Provisioning string
}

// Files returns the input paths in argument order
func (in Inputs) Files() []string {
	return []string{in.Usage, in.Features, in.Users, in.Provisioning}
}

// Validate checks that every input names an existing file
func (in Inputs) Validate() error {
	names := []string{"usage", "features", "users", "provisioning"}
	for i, path := range in.Files() {
		if path == "" {
			return errors.Newf(errors.ErrorTypeDataMissing, "%s workbook is required", names[i])
		}
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrapf(errors.ErrorTypeDataMissing, err, "%s workbook not found", names[i]).
				WithContext("path", path)
		}
		if info.IsDir() {
			return errors.Newf(errors.ErrorTypeDataMissing, "%s workbook is a directory", names[i]).
				WithContext("path", path)
		}
	}
	return nil
}

// Reporter runs the report pipeline
type Reporter struct {
	config *config.Config
	store  *cache.SheetStore
	writer *output.WorkbookWriter
}

// NewReporter creates a reporter. When the sheet cache is enabled but cannot
// be opened the run continues without it.
func NewReporter(cfg *config.Config) (*Reporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	r := &Reporter{
		config: cfg,
		writer: output.NewWorkbookWriter(),
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.StoreConfig())
		if err != nil {
			logging.LogErrorf("Failed to open sheet cache: %v", err)
		} else {
			r.store = store
		}
	}
	return r, nil
}

// Close releases the sheet cache
func (r *Reporter) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

func (r *Reporter) open(path string) (fileio.Workbook, error) {
	if r.store == nil {
		return fileio.OpenWorkbook(path)
	}
	return fileio.OpenCachedWorkbook(path, r.store)
}

// Build runs the pipeline up to the reconciliation and keeps the results in
// memory
func (r *Reporter) Build(ctx context.Context, in Inputs) (*Result, error) {
	start := time.Now()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	estimator, err := calculations.NewEstimatorForTimezone(r.config.App.Timezone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "invalid timezone", err).
			WithContext("timezone", r.config.App.Timezone)
	}
	schema := r.config.Input

	logging.LogInfof("[1] Building feature directory from %s", in.Features)
	featureBook, err := r.open(in.Features)
	if err != nil {
		return nil, err
	}
	features, err := fileio.LoadFeatureDirectory(featureBook, schema)
	if err != nil {
		return nil, err
	}
	logging.LogDebugf("%d features in directory", len(features))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.LogInfof("[2] Building user directory from %s", in.Users)
	userBook, err := r.open(in.Users)
	if err != nil {
		return nil, err
	}
	users, err := fileio.LoadUserDirectory(userBook, schema)
	if err != nil {
		return nil, err
	}
	logging.LogDebugf("%d users in directory", len(users))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.LogInfof("[3] Loading usage from %s", in.Usage)
	usageBook, err := r.open(in.Usage)
	if err != nil {
		return nil, err
	}
	usage, err := fileio.LoadUsage(usageBook, features, users, schema)
	if err != nil {
		return nil, err
	}
	logging.LogInfof("Loaded %d usage records from sheet %q", len(usage.Records), usage.Sheet)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.LogInfof("[4] Aggregating usage by performer and by tool")
	opts := calculations.FlattenOptions{
		IncludeUsers: r.config.Report.IncludeUsers,
		Estimator:    estimator,
	}
	performerTree, performer, peak, err := summarize(usage.Records, models.ByPerformer, models.SheetPerformerSummary, opts)
	if err != nil {
		return nil, err
	}
	_, tool, _, err := summarize(usage.Records, models.ByTool, models.SheetToolSummary, opts)
	if err != nil {
		return nil, err
	}
	logging.LogDebugf("%d performer rows, %d tool rows, peak concurrency %d", len(performer.Rows), len(tool.Rows), peak)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.LogInfof("[5] Reconciling provisioning from %s", in.Provisioning)
	provBook, err := r.open(in.Provisioning)
	if err != nil {
		return nil, err
	}
	provTable, err := provision.LoadTable(provBook, r.config.Provision)
	if err != nil {
		return nil, err
	}
	reconciled := provision.Reconcile(provTable, performerTree, r.config.Provision.PerformerAliases)
	summary := reconciled.Summary()
	logging.LogInfof("Provisioning: %d adequate, %d over, %d under, %d appended",
		summary.Adequate, summary.Over, summary.Under, summary.Appended)

	sheets, err := originalSheets(usageBook, usage, schema)
	if err != nil {
		return nil, err
	}

	return &Result{
		Inputs:          in,
		Usage:           usage,
		Sheets:          sheets,
		Performer:       performer,
		Tool:            tool,
		Provision:       reconciled.ToTable(),
		Provisioning:    summary,
		PeakConcurrency: peak,
		Duration:        time.Since(start),
	}, nil
}

// Run builds the report and writes the processed workbook
func (r *Reporter) Run(ctx context.Context, in Inputs) (*Result, error) {
	start := time.Now()
	result, err := r.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := output.ProcessedPath(in.Usage, r.config.Report.OutputDir)
	bundle := result.Bundle()
	logging.LogInfof("[6] Writing %s (%s)", path, bundle.Describe())
	if err := r.writer.Write(path, bundle); err != nil {
		return nil, err
	}

	result.Output = path
	result.Duration = time.Since(start)
	logging.LogInfof("Report completed in %s", result.Duration.Round(time.Millisecond))
	return result, nil
}

// summarize builds one grouping of the records and flattens it to a table
func summarize(records []models.UsageRecord, order models.GroupingOrder, name string, opts calculations.FlattenOptions) (*calculations.Tree, models.Table, int, error) {
	tree, err := calculations.BuildTree(records, order)
	if err != nil {
		return nil, models.Table{}, 0, err
	}
	rows, peak := calculations.Flatten(tree, opts)
	return tree, models.Table{Name: name, Columns: tree.Columns(), Rows: rows}, peak, nil
}

// originalSheets returns the usage workbook's sheets in order with the usage
// sheet replaced by the enriched table
func originalSheets(wb fileio.Workbook, usage *fileio.UsageData, schema fileio.Schema) ([]models.Table, error) {
	names := wb.SheetNames()
	sheets := make([]models.Table, 0, len(names))
	for _, name := range names {
		if name == usage.Sheet {
			sheets = append(sheets, usage.Table)
			continue
		}
		rows, err := wb.Rows(name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, output.RawSheet(name, rows, fileio.DetectUsageHeader(rows, schema)))
	}
	return sheets, nil
}
