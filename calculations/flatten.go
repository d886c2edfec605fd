package calculations

import (
	"sort"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/models"
)

// FlattenOptions controls the row layout
type FlattenOptions struct {
	// IncludeUsers emits one row per user under each leaf
	IncludeUsers bool
	// Estimator orders interval boundaries; nil uses UTC parsing
	Estimator *Estimator
}

// DefaultFlattenOptions returns the options used by the report
func DefaultFlattenOptions() FlattenOptions {
	return FlattenOptions{IncludeUsers: true}
}

// Flatten estimates concurrency over the tree and renders it depth first as
// fixed-width rows. Each node contributes its total row followed by its
// children in key order; path cells already shown above are left blank.
// It returns the rows and the peak concurrency over the tree.
func Flatten(tree *Tree, opts FlattenOptions) ([]models.Row, int) {
	peak := tree.Estimate(opts.Estimator)
	width := len(tree.Columns())

	var rows []models.Row
	for _, key := range tree.Root.ChildKeys() {
		rows = append(rows, flattenNode(tree.Root.Children[key], []string{key}, width, opts)...)
	}

	for i, row := range rows {
		if len(row) != width {
			errors.Invariant("flattened row %d has %d cells, want %d", i, len(row), width)
		}
	}
	return rows, peak
}

func flattenNode(n *Node, path []string, width int, opts FlattenOptions) []models.Row {
	depth := len(path)
	totalCol := width - 3
	if depth > totalCol {
		errors.Invariant("group path %v does not fit a %d column report", path, width)
	}

	total := pathRow(path, width)
	total[totalCol] = models.Number(n.Total)
	if n.Leaf && n.NumUsers > 0 {
		total[width-2] = models.Int(n.NumUsers)
	}
	if n.Leaf || n.Tracked {
		total[width-1] = models.Int(n.Concurrency)
	}
	rows := []models.Row{total}

	for _, key := range entryKeys(n, opts.IncludeUsers) {
		var chunk []models.Row
		if child, ok := n.Children[key]; ok {
			chunk = flattenNode(child, append(path[:depth:depth], key), width, opts)
		}
		if hours, ok := n.Users[key]; ok && opts.IncludeUsers {
			if depth > totalCol-1 {
				errors.Invariant("user row under %v does not fit a %d column report", path, width)
			}
			row := pathRow(path, width)
			row[totalCol-1] = models.Text(key)
			row[totalCol] = models.Number(hours)
			chunk = append(chunk, row)
		}

		for _, r := range chunk {
			for j := 0; j < depth; j++ {
				r[j] = models.Blank()
			}
		}
		rows = append(rows, chunk...)
	}
	return rows
}

// entryKeys merges child keys and, optionally, usernames into one sorted list
func entryKeys(n *Node, withUsers bool) []string {
	keys := make([]string, 0, len(n.Children)+len(n.Users))
	for k := range n.Children {
		keys = append(keys, k)
	}
	if withUsers {
		for u := range n.Users {
			if _, dup := n.Children[u]; !dup {
				keys = append(keys, u)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func pathRow(path []string, width int) models.Row {
	row := models.NewRow(width)
	for i, k := range path {
		row[i] = models.Text(k)
	}
	return row
}
