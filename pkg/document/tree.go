// File: pkg/document/tree.go
package document

import (
	"fmt"
	"sort"
	"strings"
)

// treeNode is one directory or file in the rendered listing.
type treeNode struct {
	name     string
	isDir    bool
	children map[string]*treeNode
}

func newDirNode(name string) *treeNode {
	return &treeNode{name: name, isDir: true, children: map[string]*treeNode{}}
}

// RenderTree renders the included paths and their ancestor directories under rootName.
// Directories come first, then files, each group in case-insensitive name order.
func RenderTree(rootName string, paths []string) string {
	root := newDirNode(rootName)
	for _, p := range paths {
		insertPath(root, p)
	}

	var tree strings.Builder
	tree.WriteString(fmt.Sprintf("%s/\n", rootName))
	renderChildren(&tree, root, "")
	return tree.String()
}

func insertPath(root *treeNode, path string) {
	parts := strings.Split(path, "/")
	node := root
	for i, part := range parts {
		if part == "" {
			continue
		}
		last := i == len(parts)-1
		child, ok := node.children[part]
		if !ok {
			if last {
				child = &treeNode{name: part}
			} else {
				child = newDirNode(part)
			}
			node.children[part] = child
		}
		node = child
	}
}

// renderChildren writes the subtree of node with box-drawing connectors.
func renderChildren(tree *strings.Builder, node *treeNode, prefix string) {
	entries := make([]*treeNode, 0, len(node.children))
	for _, c := range node.children {
		entries = append(entries, c)
	}

	// Sort entries: directories first, then files, alphabetically
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		li, lj := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if li != lj {
			return li < lj
		}
		return entries[i].name < entries[j].name
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}

		if entry.isDir {
			tree.WriteString(fmt.Sprintf("%s%s%s/\n", prefix, connector, entry.name))
			renderChildren(tree, entry, prefix+extension)
			continue
		}
		tree.WriteString(fmt.Sprintf("%s%s%s\n", prefix, connector, entry.name))
	}
}
