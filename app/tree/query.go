// Package tree provides read-only queries over extracted archive trees.
// Every operation returns a new tree; the input tree is never touched, so
// callers can keep the full unfiltered view alongside any filtered one.
package tree

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"crateview/app/archive"
)

// SortKey selects the ordering applied within each folder.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByCreated SortKey = "createdAt"
)

// Search returns a new tree containing only files whose name contains the
// query, case-insensitively. A folder survives only when it has at least one
// surviving descendant; empty branches are pruned, never returned as empty
// folders. An empty query returns a full copy of the tree.
func Search(root *archive.Node, query string) *archive.Node {
	if root == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return copyTree(root)
	}
	return searchNode(root, q)
}

func searchNode(n *archive.Node, q string) *archive.Node {
	if !n.IsDir {
		if strings.Contains(strings.ToLower(n.Name), q) {
			return n.ShallowCopy()
		}
		return nil
	}

	var surviving []*archive.Node
	for _, child := range n.Children {
		if kept := searchNode(child, q); kept != nil {
			surviving = append(surviving, kept)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	folder := n.ShallowCopy()
	folder.Children = surviving
	return folder
}

// Sort returns a new tree with each folder's children ordered folders first,
// then files, both groups internally ordered by the sort key.
func Sort(root *archive.Node, key SortKey) *archive.Node {
	if root == nil {
		return nil
	}

	out := root.ShallowCopy()
	out.Children = make([]*archive.Node, 0, len(root.Children))
	for _, child := range root.Children {
		out.Children = append(out.Children, Sort(child, key))
	}

	sort.SliceStable(out.Children, func(i, j int) bool {
		a, b := out.Children[i], out.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if key == SortByCreated {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})

	return out
}

// MatchGlob returns a new tree containing only files whose slash-delimited
// path relative to the root matches the doublestar pattern (for example
// "**/*.csv" or "reports/*/summary.pdf"). Folders survive only when they
// retain matching descendants. Returns doublestar.ErrBadPattern for an
// invalid pattern.
func MatchGlob(root *archive.Node, pattern string) (*archive.Node, error) {
	if root == nil {
		return nil, nil
	}
	// Validate the pattern once up front
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	matched, err := globNode(root, "", pattern)
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// globNode recurses with each node's slash path relative to the root, which
// itself has the empty path.
func globNode(n *archive.Node, nodePath, pattern string) (*archive.Node, error) {
	if !n.IsDir {
		ok, err := doublestar.Match(pattern, nodePath)
		if err != nil {
			return nil, err
		}
		if ok {
			return n.ShallowCopy(), nil
		}
		return nil, nil
	}

	var surviving []*archive.Node
	for _, child := range n.Children {
		childPath := child.Name
		if nodePath != "" {
			childPath = nodePath + "/" + child.Name
		}
		kept, err := globNode(child, childPath, pattern)
		if err != nil {
			return nil, err
		}
		if kept != nil {
			surviving = append(surviving, kept)
		}
	}
	if len(surviving) == 0 {
		return nil, nil
	}

	folder := n.ShallowCopy()
	folder.Children = surviving
	return folder, nil
}

func copyTree(n *archive.Node) *archive.Node {
	out := n.ShallowCopy()
	out.Children = make([]*archive.Node, 0, len(n.Children))
	for _, child := range n.Children {
		out.Children = append(out.Children, copyTree(child))
	}
	return out
}
