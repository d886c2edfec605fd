package calculations

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/penwyp/UsagePivot/models"
)

// Node is one group of an aggregation tree
type Node struct {
	Key         string
	Depth       int
	Total       decimal.Decimal
	Children    map[string]*Node
	Users       map[string]decimal.Decimal
	NumUsers    int
	Concurrency int
	Instances   []models.Interval
	Leaf        bool
	Tracked     bool

	estimated bool
}

func newNode(key string, depth int) *Node {
	return &Node{Key: key, Depth: depth, Total: decimal.Zero}
}

// Child returns the child with key, creating it if needed
func (n *Node) Child(key string) *Node {
	if n.Children == nil {
		n.Children = make(map[string]*Node)
	}
	c, ok := n.Children[key]
	if !ok {
		c = newNode(key, n.Depth+1)
		n.Children[key] = c
	}
	return c
}

// ChildKeys returns the child keys in lexicographic order
func (n *Node) ChildKeys() []string {
	keys := make([]string, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UserNames returns the usernames seen at a leaf in lexicographic order
func (n *Node) UserNames() []string {
	names := make([]string, 0, len(n.Users))
	for u := range n.Users {
		names = append(names, u)
	}
	sort.Strings(names)
	return names
}

// AddLeafRecord folds one record into a leaf. Ancestor totals are the
// caller's responsibility.
func (n *Node) AddLeafRecord(username string, hours decimal.Decimal, session models.Interval) {
	n.Leaf = true
	if n.Users == nil {
		n.Users = make(map[string]decimal.Decimal)
	}

	prior := n.Users[username]
	positive := hours.IsPositive()
	if positive && !prior.IsPositive() {
		n.NumUsers++
	}

	n.Users[username] = prior.Add(hours)
	n.Total = n.Total.Add(hours)

	if positive {
		n.Instances = append(n.Instances, session)
	}
	if n.Concurrency < 1 {
		n.Concurrency = 1
	}
}

// Tree is the result of one build
type Tree struct {
	Root    *Node
	Order   models.GroupingOrder
	Records int
}

func newTree(order models.GroupingOrder) *Tree {
	return &Tree{Root: newNode("", 0), Order: order}
}

// Columns returns the report header matching the tree's grouping order
func (t *Tree) Columns() []string {
	return t.Order.Columns()
}

// Estimate resolves every leaf's concurrency once and propagates the maxima
// upward. Instances are released after estimation, so repeated calls are
// no-ops. It returns the peak concurrency over the tree.
func (t *Tree) Estimate(est *Estimator) int {
	if est == nil {
		est = defaultEstimator
	}
	return estimateNode(t.Root, est)
}

func estimateNode(n *Node, est *Estimator) int {
	if n.Leaf && !n.estimated {
		if len(n.Instances) > 0 {
			n.Concurrency = est.Estimate(n.Instances)
		}
		n.Instances = nil
		n.estimated = true
	}

	peak := n.Concurrency
	for _, c := range n.Children {
		if v := estimateNode(c, est); v > peak {
			peak = v
		}
	}
	if !n.Leaf {
		n.Concurrency = peak
	}
	return peak
}

// ProductPath addresses a product group of a performer tree
type ProductPath struct {
	Project   string
	Performer string
	Vendor    string
	Product   string
}

// WalkProducts visits every tracked product node at depth 4 of a performer
// tree in sorted order. Concurrency is only final after Estimate.
func (t *Tree) WalkProducts(fn func(path ProductPath, concurrency int, total decimal.Decimal)) {
	var walk func(n *Node, keys []string)
	walk = func(n *Node, keys []string) {
		if n.Tracked && len(keys) == 4 {
			fn(ProductPath{Project: keys[0], Performer: keys[1], Vendor: keys[2], Product: keys[3]}, n.Concurrency, n.Total)
			return
		}
		for _, k := range n.ChildKeys() {
			walk(n.Children[k], append(keys, k))
		}
	}
	for _, k := range t.Root.ChildKeys() {
		walk(t.Root.Children[k], []string{k})
	}
}
