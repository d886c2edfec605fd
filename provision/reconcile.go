package provision

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/penwyp/UsagePivot/calculations"
	"github.com/penwyp/UsagePivot/models"
)

// Status classifies a provisioning row
type Status int

const (
	// StatusUnclassified marks rows without a project
	StatusUnclassified Status = iota
	StatusAdequate
	StatusOver
	StatusUnder
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusAdequate:
		return "adequate"
	case StatusOver:
		return "over"
	case StatusUnder:
		return "under"
	default:
		return "unclassified"
	}
}

// Entry is one provisioning row
type Entry struct {
	Project     string
	Performer   string
	Vendor      string
	Product     string
	Current     decimal.Decimal
	CurrentText string // non-numeric provision cell, kept for display
	Concurrent  int
	UsageHours  decimal.Decimal
	Status      Status
	Diff        decimal.Decimal // Current minus Concurrent
	Appended    bool            // product seen in usage but not provisioned
}

// Table is the reconciled provisioning sheet
type Table struct {
	Entries []*Entry
}

// Summary counts entries per status
type Summary struct {
	Adequate int
	Over     int
	Under    int
	Appended int
}

// Reconcile fills observed concurrency and usage into the provisioning rows.
// Rows are sorted by project, performer, vendor and product (blanks last),
// then performer aliases (matched case-insensitively) are applied to the
// sheet and the tree alike. Each product of the performer tree updates every
// matching row, or is appended with a provision of 0. Finally each row is
// classified.
func Reconcile(table *Table, tree *calculations.Tree, aliases map[string]string) *Table {
	out := &Table{Entries: make([]*Entry, 0, len(table.Entries))}
	for _, e := range table.Entries {
		c := *e
		c.Concurrent = 0
		c.UsageHours = decimal.Zero
		out.Entries = append(out.Entries, &c)
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		return lessKey(out.Entries[i].key(), out.Entries[j].key())
	})

	alias := newAliasMap(aliases)
	for _, e := range out.Entries {
		e.Performer = alias.translate(e.Performer)
	}

	index := make(map[[4]string][]*Entry, len(out.Entries))
	for _, e := range out.Entries {
		index[e.key()] = append(index[e.key()], e)
	}

	tree.WalkProducts(func(path calculations.ProductPath, concurrency int, total decimal.Decimal) {
		path.Performer = alias.translate(path.Performer)
		key := [4]string{path.Project, path.Performer, path.Vendor, path.Product}
		matches := index[key]
		if len(matches) == 0 {
			e := &Entry{
				Project:   path.Project,
				Performer: path.Performer,
				Vendor:    path.Vendor,
				Product:   path.Product,
				Current:   decimal.Zero,
				Appended:  true,
			}
			out.Entries = append(out.Entries, e)
			index[key] = []*Entry{e}
			matches = index[key]
		}
		for _, e := range matches {
			e.Concurrent = concurrency
			e.UsageHours = total
		}
	})

	for _, e := range out.Entries {
		e.classify()
	}
	return out
}

// aliasMap translates performer names; keys are lower-cased since config
// loaders do not preserve map key case
type aliasMap map[string]string

func newAliasMap(aliases map[string]string) aliasMap {
	m := make(aliasMap, len(aliases))
	for from, to := range aliases {
		m[strings.ToLower(strings.TrimSpace(from))] = to
	}
	return m
}

func (m aliasMap) translate(performer string) string {
	if to, ok := m[strings.ToLower(strings.TrimSpace(performer))]; ok {
		return to
	}
	return performer
}

func (e *Entry) key() [4]string {
	return [4]string{e.Project, e.Performer, e.Vendor, e.Product}
}

func (e *Entry) classify() {
	if e.Project == "" {
		e.Status = StatusUnclassified
		e.Diff = decimal.Zero
		return
	}

	e.Diff = e.Current.Sub(decimal.NewFromInt(int64(e.Concurrent)))
	switch e.Diff.Sign() {
	case 0:
		e.Status = StatusAdequate
	case 1:
		e.Status = StatusOver
	default:
		e.Status = StatusUnder
	}
}

// lessKey orders keys field by field with empty fields after all others
func lessKey(a, b [4]string) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if a[i] == "" {
			return false
		}
		if b[i] == "" {
			return true
		}
		return a[i] < b[i]
	}
	return false
}

// Summary counts the classified entries
func (t *Table) Summary() Summary {
	var s Summary
	for _, e := range t.Entries {
		switch e.Status {
		case StatusAdequate:
			s.Adequate++
		case StatusOver:
			s.Over++
		case StatusUnder:
			s.Under++
		}
		if e.Appended {
			s.Appended++
		}
	}
	return s
}

// ToTable renders the reconciliation for the report writers
func (t *Table) ToTable() models.Table {
	out := models.Table{
		Name:    models.SheetActualUsage,
		Columns: append([]string(nil), models.ProvisionColumns...),
	}

	for _, e := range t.Entries {
		row := models.NewRow(out.Width())
		row[0] = textOrBlank(e.Project)
		row[1] = textOrBlank(e.Performer)
		row[2] = textOrBlank(e.Vendor)
		row[3] = textOrBlank(e.Product)
		if e.CurrentText != "" {
			row[4] = models.Text(e.CurrentText)
		} else {
			row[4] = models.Number(e.Current)
		}
		row[5] = models.Int(e.Concurrent)

		switch e.Status {
		case StatusOver:
			row[6] = models.Number(e.Diff)
		case StatusUnder:
			row[7] = models.Number(e.Diff)
		case StatusAdequate:
			row[8] = models.Text("Yes")
		}
		row[9] = models.Number(e.UsageHours)
		out.Rows = append(out.Rows, row)
	}
	return out
}

func textOrBlank(s string) models.Cell {
	if s == "" {
		return models.Blank()
	}
	return models.Text(s)
}
