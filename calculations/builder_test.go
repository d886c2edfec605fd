package calculations

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/models"
)

func record(user string, hours float64, start, end string) models.UsageRecord {
	return models.UsageRecord{
		Project:       "P",
		Organization:  "O",
		Vendor:        "V",
		Product:       "X",
		Feature:       "F",
		Username:      user,
		DurationHours: hours,
		StartTime:     start,
		EndTime:       end,
	}
}

func leafOf(t *testing.T, tree *Tree, keys ...string) *Node {
	t.Helper()
	n := tree.Root
	for _, k := range keys {
		require.Contains(t, n.Children, k)
		n = n.Children[k]
	}
	return n
}

func TestBuildTree_AliceAndBob(t *testing.T) {
	records := []models.UsageRecord{
		record("alice", 2.0, "09:00", "11:00"),
		record("bob", 2.0, "10:00", "12:00"),
	}

	tree, err := BuildTree(records, models.ByPerformer)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Records)

	leaf := leafOf(t, tree, "P", "O", "V", "X", "F")
	assert.True(t, leaf.Leaf)
	assert.True(t, leaf.Total.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 2, leaf.NumUsers)
	assert.Len(t, leaf.Instances, 2)

	peak := tree.Estimate(nil)
	assert.Equal(t, 2, peak)
	assert.Equal(t, 2, leaf.Concurrency)
	assert.Nil(t, leaf.Instances)

	product := leafOf(t, tree, "P", "O", "V", "X")
	assert.True(t, product.Tracked)
	assert.Equal(t, 2, product.Concurrency)
}

func TestBuildTree_RootTotalIsSumOfDurations(t *testing.T) {
	records := []models.UsageRecord{
		{Project: "P1", Organization: "A", Vendor: "V1", Product: "X", Feature: "f1", Username: "u1", DurationHours: 0.1},
		{Project: "P1", Organization: "B", Vendor: "V1", Product: "X", Feature: "f1", Username: "u2", DurationHours: 0.2},
		{Project: "P2", Organization: "A", Vendor: "V2", Product: "Y", Feature: "f2", Username: "u1", DurationHours: 0.3},
		{Project: "P2", Organization: "", Vendor: "", Product: "", Feature: "f3", Username: "u3", DurationHours: 1.75},
	}

	for _, order := range []models.GroupingOrder{models.ByPerformer, models.ByTool} {
		t.Run(order.String(), func(t *testing.T) {
			tree, err := BuildTree(records, order)
			require.NoError(t, err)

			assert.Equal(t, "2.35", tree.Root.Total.String())
			assertTotalsConsistent(t, tree.Root)
		})
	}
}

// assertTotalsConsistent checks that every internal node's total is the sum
// of its children's totals
func assertTotalsConsistent(t *testing.T, n *Node) {
	t.Helper()
	if len(n.Children) == 0 {
		return
	}
	sum := decimal.Zero
	for _, c := range n.Children {
		sum = sum.Add(c.Total)
		assertTotalsConsistent(t, c)
	}
	assert.True(t, sum.Equal(n.Total), "node %q total %s != children sum %s", n.Key, n.Total, sum)
}

func TestBuildTree_UserCountedOnFirstPositiveRecord(t *testing.T) {
	records := []models.UsageRecord{
		record("carol", 0, "09:00", "09:30"),
		record("carol", 0, "09:30", "10:00"),
		record("carol", 3.0, "10:00", "13:00"),
		record("carol", 0, "13:00", "13:10"),
		record("dave", 0, "09:00", "10:00"),
		record("dave", 0, "11:00", "12:00"),
	}

	tree, err := BuildTree(records[:2], models.ByPerformer)
	require.NoError(t, err)
	assert.Equal(t, 0, leafOf(t, tree, "P", "O", "V", "X", "F").NumUsers)

	tree, err = BuildTree(records[:3], models.ByPerformer)
	require.NoError(t, err)
	assert.Equal(t, 1, leafOf(t, tree, "P", "O", "V", "X", "F").NumUsers)

	tree, err = BuildTree(records, models.ByPerformer)
	require.NoError(t, err)
	leaf := leafOf(t, tree, "P", "O", "V", "X", "F")
	assert.Equal(t, 1, leaf.NumUsers)
	assert.Len(t, leaf.Instances, 1)
	assert.Contains(t, leaf.Users, "dave")
	assert.True(t, leaf.Users["dave"].IsZero())
	assert.Equal(t, "3", leaf.Users["carol"].String())
}

func TestBuildTree_ZeroDurationLeafStillReportsConcurrency(t *testing.T) {
	tree, err := BuildTree([]models.UsageRecord{record("erin", 0, "09:00", "10:00")}, models.ByPerformer)
	require.NoError(t, err)

	assert.Equal(t, 1, tree.Estimate(nil))
	assert.Equal(t, 1, leafOf(t, tree, "P", "O", "V", "X", "F").Concurrency)
}

func TestBuildTree_ByToolOrganizationChildren(t *testing.T) {
	records := []models.UsageRecord{
		{Project: "P", Organization: "Lab A", Vendor: "V", Product: "X", Feature: "F", Username: "u1", DurationHours: 1.5},
		{Project: "P", Organization: "Lab B", Vendor: "V", Product: "X", Feature: "F", Username: "u2", DurationHours: 2},
		{Project: "P", Organization: "Lab A", Vendor: "V", Product: "X", Feature: "F", Username: "u3", DurationHours: 0.5},
	}

	tree, err := BuildTree(records, models.ByTool)
	require.NoError(t, err)

	leaf := leafOf(t, tree, "P", "V", "X", "F")
	assert.True(t, leaf.Leaf)
	assert.Equal(t, 3, leaf.NumUsers)
	require.Len(t, leaf.Children, 2)
	assert.Equal(t, "2", leaf.Children["Lab A"].Total.String())
	assert.Equal(t, "2", leaf.Children["Lab B"].Total.String())
	assert.True(t, leaf.Children["Lab A"].Total.Add(leaf.Children["Lab B"].Total).Equal(leaf.Total))

	assert.True(t, leafOf(t, tree, "P", "V", "X").Tracked)
}

func TestBuildTree_MissingProjectIsFatal(t *testing.T) {
	records := []models.UsageRecord{
		record("alice", 1, "09:00", "10:00"),
		{Row: 7, Username: "ghost", Email: "ghost@example.com", Feature: "F", DurationHours: 1},
	}

	tree, err := BuildTree(records, models.ByPerformer)
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIdentity))
	assert.Contains(t, err.Error(), "ghost@example.com")
	assert.Contains(t, err.Error(), "row=7")
}

func TestBuildTree_NegativeDurationRejected(t *testing.T) {
	_, err := BuildTree([]models.UsageRecord{record("alice", -1, "09:00", "10:00")}, models.ByPerformer)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDataFormat))
}

func TestWalkProducts(t *testing.T) {
	records := []models.UsageRecord{
		{Project: "P", Organization: "UCR", Vendor: "Cadence", Product: "Virtuoso", Feature: "f1", Username: "a", DurationHours: 1, StartTime: "09:00", EndTime: "10:00"},
		{Project: "P", Organization: "UCR", Vendor: "Cadence", Product: "Virtuoso", Feature: "f2", Username: "b", DurationHours: 1, StartTime: "09:00", EndTime: "10:00"},
		{Project: "P", Organization: "UCR", Vendor: "Cadence", Product: "Virtuoso", Feature: "f2", Username: "c", DurationHours: 1, StartTime: "09:30", EndTime: "10:30"},
		{Project: "P", Organization: "ASU", Vendor: "Synopsys", Product: "VCS", Feature: "f3", Username: "d", DurationHours: 4, StartTime: "09:00", EndTime: "13:00"},
	}

	tree, err := BuildTree(records, models.ByPerformer)
	require.NoError(t, err)
	tree.Estimate(nil)

	type visit struct {
		path        ProductPath
		concurrency int
		total       string
	}
	var visits []visit
	tree.WalkProducts(func(path ProductPath, concurrency int, total decimal.Decimal) {
		visits = append(visits, visit{path, concurrency, total.String()})
	})

	assert.Equal(t, []visit{
		{ProductPath{"P", "ASU", "Synopsys", "VCS"}, 1, "4"},
		{ProductPath{"P", "UCR", "Cadence", "Virtuoso"}, 2, "3"},
	}, visits)
}
