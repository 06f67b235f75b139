package archive

import (
	"path"
	"strings"
	"time"
)

// WalkResult carries the extracted tree plus bookkeeping about the walk.
type WalkResult struct {
	Root    *Node
	Entries int // members the decoder yielded
	Skipped int // members skipped because their parent folder was not yet known
	Dropped int // files dropped for having an unsupported extension
}

// Walk decodes raw archive bytes into a rooted folder tree. The root folder
// takes the archive's own name minus its container extension, and every node
// is attributed to the caller-supplied label.
//
// Members are processed in the order the decoder yields them. Archive formats
// do not guarantee parent-before-child ordering, so a member whose parent
// folder has not been registered yet is skipped silently rather than retried;
// tree completeness therefore depends on decoder iteration order. This is a
// documented limitation of the single-pass walk, surfaced in WalkResult.Skipped.
//
// Files whose extension is outside the supported payload set are dropped
// entirely. A file node's creation time comes from the member's modification
// time, falling back to the wall clock when the archive carries none.
func Walk(name string, data []byte, modifiedBy string) (*WalkResult, error) {
	format := DetectContainer(name, data)
	if format == ContainerUnknown {
		return nil, ErrUnsupportedFile
	}

	entries, err := decodeEntries(format, data)
	if err != nil {
		return nil, err
	}

	root := NewFolder(StripContainerExt(path.Base(name)), time.Now(), modifiedBy)
	index := map[string]*Node{"": root}
	result := &WalkResult{Root: root, Entries: len(entries)}

	for _, e := range entries {
		p := normalizeEntryPath(e.path)
		if p == "" {
			continue
		}

		parentPath, base := splitEntryPath(p)
		parent, ok := index[parentPath]
		if !ok {
			// Parent folder not seen yet: out-of-order member, skip
			result.Skipped++
			continue
		}

		created := e.modTime
		if created.IsZero() {
			created = time.Now()
		}

		if e.isDir {
			if _, exists := index[p]; exists {
				continue
			}
			folder := NewFolder(base, created, modifiedBy)
			parent.Children = append(parent.Children, folder)
			index[p] = folder
			continue
		}

		ft, ok := PayloadType(base)
		if !ok {
			result.Dropped++
			continue
		}
		parent.Children = append(parent.Children, NewFile(base, ft, e.data, created, modifiedBy))
	}

	return result, nil
}

// normalizeEntryPath strips leading "./" and surrounding slashes from an
// archive member path.
func normalizeEntryPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.Trim(p, "/")
}

// splitEntryPath splits a normalized path into its parent path and base name.
// Top-level members have an empty parent path, matching the root index key.
func splitEntryPath(p string) (parent, base string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}
