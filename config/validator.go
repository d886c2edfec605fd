package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/UsagePivot/fileio"
	"github.com/penwyp/UsagePivot/output"
	"github.com/penwyp/UsagePivot/provision"
)

// StandardValidator provides standard configuration validation
type StandardValidator struct{}

// NewStandardValidator creates a new standard validator
func NewStandardValidator() *StandardValidator {
	return &StandardValidator{}
}

// Validate validates the entire configuration
func (v *StandardValidator) Validate(cfg *Config) error {
	var errors []string

	check := func(section string, err error) {
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", section, err))
		}
	}

	check("app", v.validateApp(&cfg.App))
	check("input", v.validateInput(&cfg.Input))
	check("report", v.validateReport(&cfg.Report))
	check("provision", v.validateProvision(&cfg.Provision))
	check("cache", v.validateCache(&cfg.Cache))
	check("ui", v.validateUI(&cfg.UI))

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateApp validates application configuration
func (v *StandardValidator) validateApp(app *AppConfig) error {
	var errors []string

	if err := ValidateLogLevel(app.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("log_level: %v", err))
	}

	if app.LogFile != "" {
		dir := filepath.Dir(app.LogFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("log_file: directory does not exist: %s", dir))
			}
		}
	}

	if app.Timezone != "" && app.Timezone != "Local" {
		if _, err := time.LoadLocation(app.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("timezone: invalid timezone: %s", app.Timezone))
		}
	}

	return joinErrors(errors)
}

// validateInput requires every sheet and column name to be set
func (v *StandardValidator) validateInput(schema *fileio.Schema) error {
	var errors []string
	for key, value := range flattenKeys(schema) {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			errors = append(errors, fmt.Sprintf("%s: must not be empty", key))
		}
	}
	return joinErrors(errors)
}

// validateReport validates the report command settings
func (v *StandardValidator) validateReport(report *ReportConfig) error {
	var errors []string

	if _, err := output.ParseFormat(report.Print); err != nil {
		errors = append(errors, fmt.Sprintf("print: %v", err))
	}

	if err := ValidateView(report.View); err != nil {
		errors = append(errors, fmt.Sprintf("view: %v", err))
	}

	if report.OutputDir != "" {
		if info, err := os.Stat(report.OutputDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("output_dir: not a directory: %s", report.OutputDir))
		}
	}

	if report.Debounce < 10*time.Millisecond {
		errors = append(errors, "debounce: must be at least 10ms")
	}
	if report.Debounce > time.Minute {
		errors = append(errors, "debounce: must not exceed 1 minute")
	}

	return joinErrors(errors)
}

// validateProvision validates the provisioning sheet settings
func (v *StandardValidator) validateProvision(prov *provision.Config) error {
	var errors []string

	if strings.TrimSpace(prov.Sheet) == "" {
		errors = append(errors, "sheet: must not be empty")
	}
	if prov.HeaderSearchRows < 1 || prov.HeaderSearchRows > 100 {
		errors = append(errors, "header_search_rows: must be between 1 and 100")
	}
	for from := range prov.PerformerAliases {
		if strings.TrimSpace(from) == "" {
			errors = append(errors, "performer_aliases: empty performer name")
			break
		}
	}

	return joinErrors(errors)
}

// validateCache validates the sheet cache settings
func (v *StandardValidator) validateCache(c *CacheConfig) error {
	var errors []string

	if c.TTL < 0 {
		errors = append(errors, "ttl: must be non-negative")
	}
	if c.Dir != "" {
		if info, err := os.Stat(c.Dir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("dir: not a directory: %s", c.Dir))
		}
	}

	return joinErrors(errors)
}

// validateUI validates UI configuration
func (v *StandardValidator) validateUI(ui *UIConfig) error {
	var errors []string

	if err := ValidateTheme(ui.Theme); err != nil {
		errors = append(errors, fmt.Sprintf("theme: %v", err))
	}

	if ui.TableHeight < 5 {
		errors = append(errors, "table_height: must be at least 5")
	}
	if ui.TableHeight > 200 {
		errors = append(errors, "table_height: must not exceed 200")
	}

	return joinErrors(errors)
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// Built-in validation functions

// ValidateTheme validates UI theme
func ValidateTheme(theme string) error {
	validThemes := map[string]bool{
		"dark":          true,
		"light":         true,
		"high-contrast": true,
	}

	if !validThemes[theme] {
		return fmt.Errorf("invalid theme: %s (valid: dark, light, high-contrast)", theme)
	}
	return nil
}

// ValidateLogLevel validates log level
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
	}

	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", level)
	}
	return nil
}

// ValidateView validates the --view table name
func ValidateView(view string) error {
	switch view {
	case "performer", "tool", "provision":
		return nil
	}
	return fmt.Errorf("invalid view: %s (valid: performer, tool, provision)", view)
}
