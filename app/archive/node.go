package archive

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileType identifies the payload type of a file node.
type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypePDF FileType = "pdf"
)

// payloadTypes is the supported payload extension set. Entries with any other
// extension are dropped from the tree during walking.
var payloadTypes = map[string]FileType{
	"csv": FileTypeCSV,
	"pdf": FileTypePDF,
}

// PayloadType resolves a file name's extension (lower-cased, last dot-delimited
// segment) to a supported payload type.
func PayloadType(name string) (FileType, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "", false
	}
	ft, ok := payloadTypes[strings.ToLower(name[idx+1:])]
	return ft, ok
}

// Node is one entry in an extracted archive tree. Folders carry Children in
// discovery order; files are always leaves and own their payload bytes.
// Trees are built once during walking and never mutated afterwards: tree
// queries return new trees and leave the original intact.
type Node struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedBy string    `json:"modifiedBy"`
	IsDir      bool      `json:"isDir"`
	FileType   FileType  `json:"fileType,omitempty"`
	Payload    []byte    `json:"-"`
	Children   []*Node   `json:"children,omitempty"`
}

// NewFolder creates an empty folder node.
func NewFolder(name string, created time.Time, modifiedBy string) *Node {
	return &Node{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  created,
		ModifiedBy: modifiedBy,
		IsDir:      true,
	}
}

// NewFile creates a leaf file node owning its payload.
func NewFile(name string, ft FileType, payload []byte, created time.Time, modifiedBy string) *Node {
	return &Node{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  created,
		ModifiedBy: modifiedBy,
		FileType:   ft,
		Payload:    payload,
	}
}

// ShallowCopy duplicates the node with a fresh children slice. Payload bytes
// are shared, never copied.
func (n *Node) ShallowCopy() *Node {
	c := *n
	c.Children = nil
	return &c
}

// Find resolves a slash-delimited path relative to this node. The empty path
// returns the node itself.
func (n *Node) Find(path string) *Node {
	path = strings.Trim(path, "/")
	if path == "" {
		return n
	}
	current := n
	for _, part := range strings.Split(path, "/") {
		var next *Node
		for _, child := range current.Children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// CountNodes counts this node and all descendants.
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += CountNodes(child)
	}
	return count
}
