package app

import (
	"fmt"

	"crateview/app/archive"
	"crateview/app/tree"
)

// Tree returns the full extracted tree for an upload.
func (a *App) Tree(uploadID string) (*archive.Node, error) {
	up, err := a.GetUpload(uploadID)
	if err != nil {
		return nil, err
	}
	return up.Root, nil
}

// SearchTree returns the upload's tree filtered to files whose names contain
// the query. A nil result means nothing matched.
func (a *App) SearchTree(uploadID, q string) (*archive.Node, error) {
	up, err := a.GetUpload(uploadID)
	if err != nil {
		return nil, err
	}
	return tree.Search(up.Root, q), nil
}

// SortTree returns a copy of the upload's tree with every folder's children
// reordered, folders before files.
func (a *App) SortTree(uploadID string, key string) (*archive.Node, error) {
	up, err := a.GetUpload(uploadID)
	if err != nil {
		return nil, err
	}
	sortKey := tree.SortKey(key)
	switch sortKey {
	case tree.SortByName, tree.SortByCreated:
	default:
		return nil, fmt.Errorf("unknown sort key %q", key)
	}
	return tree.Sort(up.Root, sortKey), nil
}

// GlobTree returns the upload's tree filtered to files whose paths match a
// glob pattern such as "reports/**/*.csv".
func (a *App) GlobTree(uploadID, pattern string) (*archive.Node, error) {
	up, err := a.GetUpload(uploadID)
	if err != nil {
		return nil, err
	}
	return tree.MatchGlob(up.Root, pattern)
}
