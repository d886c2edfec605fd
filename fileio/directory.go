package fileio

import (
	"strings"

	"github.com/penwyp/UsagePivot/logging"
)

// FeatureInfo locates a licensed feature in the vendor catalog
type FeatureInfo struct {
	Vendor  string
	Product string
}

// FeatureDirectory maps feature names to their vendor and product
type FeatureDirectory map[string]FeatureInfo

// Lookup returns the entry for feature; misses yield empty strings
func (d FeatureDirectory) Lookup(feature string) FeatureInfo {
	return d[strings.TrimSpace(feature)]
}

// UserInfo is one active account of the user directory
type UserInfo struct {
	LastName     string
	FirstName    string
	Project      string
	Organization string
}

// UserDirectory maps account emails to user details
type UserDirectory map[string]UserInfo

// Lookup returns the entry for email; misses yield empty strings
func (d UserDirectory) Lookup(email string) (UserInfo, bool) {
	u, ok := d[strings.TrimSpace(email)]
	return u, ok
}

// LoadFeatureDirectory reads a catalog workbook in which every sheet is
// named after a vendor and lists that vendor's products and features.
// Sheets without a Product/Feature header are skipped. When a feature
// appears twice the later sheet wins.
func LoadFeatureDirectory(wb Workbook, schema Schema) (FeatureDirectory, error) {
	schema = schema.withDefaults()
	dir := make(FeatureDirectory)

	for _, sheet := range wb.SheetNames() {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, err
		}

		required := []string{schema.FeatureProduct, schema.FeatureName}
		h := FindHeaderRow(rows, required, 0, ExactMatch)
		if h < 0 {
			logging.LogDebugf("feature directory: sheet %q has no %v header", sheet, required)
			continue
		}

		productCol := ColumnIndex(rows[h], schema.FeatureProduct, ExactMatch)
		featureCol := ColumnIndex(rows[h], schema.FeatureName, ExactMatch)
		for _, row := range rows[h+1:] {
			feature := Cell(row, featureCol)
			if feature == "" {
				continue
			}
			dir[feature] = FeatureInfo{Vendor: sheet, Product: Cell(row, productCol)}
		}
	}

	logging.LogDebugf("feature directory: %d features from %s", len(dir), wb.Path())
	return dir, nil
}

// LoadUserDirectory reads the admin user list. Rows flagged for removal and
// rows without an organization are left out.
func LoadUserDirectory(wb Workbook, schema Schema) (UserDirectory, error) {
	schema = schema.withDefaults()
	dir := make(UserDirectory)

	found := false
	for _, sheet := range wb.SheetNames() {
		if sheet != schema.UserSheet {
			continue
		}
		found = true

		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, err
		}

		h := FindHeaderRow(rows, []string{schema.UserLastName, schema.UserOrg}, 0, ExactMatch)
		if h < 0 {
			logging.LogWarnf("%q/%q columns not found in sheet %q", schema.UserLastName, schema.UserOrg, sheet)
			continue
		}

		cols, _ := ResolveColumns(rows[h], []string{
			schema.UserLastName, schema.UserFirstName, schema.UserProject,
			schema.UserOrg, schema.UserEmail, schema.UserNotes,
		}, ExactMatch)
		col := func(name string) int {
			if i, ok := cols[name]; ok {
				return i
			}
			return -1
		}

		for _, row := range rows[h+1:] {
			if strings.EqualFold(Cell(row, col(schema.UserNotes)), schema.UserRemoved) {
				continue
			}
			email := Cell(row, col(schema.UserEmail))
			org := Cell(row, col(schema.UserOrg))
			if email == "" || org == "" {
				continue
			}
			dir[email] = UserInfo{
				LastName:     Cell(row, col(schema.UserLastName)),
				FirstName:    Cell(row, col(schema.UserFirstName)),
				Project:      Cell(row, col(schema.UserProject)),
				Organization: org,
			}
		}
	}

	if !found {
		logging.LogWarnf("user directory %s has no sheet %q", wb.Path(), schema.UserSheet)
	}
	logging.LogDebugf("user directory: %d accounts from %s", len(dir), wb.Path())
	return dir, nil
}
