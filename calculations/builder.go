package calculations

import (
	"strings"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/models"
)

// productDepth returns the depth of product nodes under order
func productDepth(order models.GroupingOrder) int {
	if order == models.ByTool {
		return 3
	}
	return 4
}

// BuildTree folds records into a tree grouped by order. A record without a
// project aborts the build and no tree is returned.
func BuildTree(records []models.UsageRecord, order models.GroupingOrder) (*Tree, error) {
	tree := newTree(order)

	for i := range records {
		rec := &records[i]
		if strings.TrimSpace(rec.Project) == "" {
			return nil, errors.New(errors.ErrorTypeIdentity, "no such user exists").
				WithContext("row", rec.Row).
				WithContext("user", rec.Username).
				WithContext("email", rec.Email)
		}
		if err := rec.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeDataFormat, rec.Describe(), err)
		}

		hours := rec.Hours()
		tracked := productDepth(order)
		path := groupPath(rec, order)

		node := tree.Root
		node.Total = node.Total.Add(hours)
		for _, key := range path[:len(path)-1] {
			node = node.Child(key)
			node.Total = node.Total.Add(hours)
			if node.Depth == tracked {
				node.Tracked = true
			}
		}

		leaf := node.Child(path[len(path)-1])
		leaf.AddLeafRecord(rec.Username, hours, rec.Interval())

		if order == models.ByTool {
			org := leaf.Child(rec.Organization)
			org.Total = org.Total.Add(hours)
		}
		tree.Records++
	}

	return tree, nil
}

// groupPath returns the grouping keys of rec down to its leaf
func groupPath(rec *models.UsageRecord, order models.GroupingOrder) []string {
	if order == models.ByTool {
		return []string{rec.Project, rec.Vendor, rec.Product, rec.Feature}
	}
	return []string{rec.Project, rec.Organization, rec.Vendor, rec.Product, rec.Feature}
}
