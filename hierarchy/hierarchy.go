// Package hierarchy builds a navigable directory view over a vault's flat,
// slash-separated index keys. The tree is an arena of nodes addressed by
// index: parent-to-child links are index lists, so no node ever holds a
// pointer back into the structure that owns it.
package hierarchy

import (
	"sort"
	"strings"
)

// Kind distinguishes a directory node from a file (leaf) node.
type Kind int

const (
	Directory Kind = iota
	File
)

// Node is a single entry in the arena. Children holds the indices, within
// the owning Tree's Nodes slice, of this node's direct children, in sorted
// order.
type Node struct {
	Name     string
	Kind     Kind
	Children []int
}

// Tree is an arena of Nodes; index 0 is always the root directory ("/").
type Tree struct {
	Nodes []Node
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return &t.Nodes[0]
}

// Build constructs a Tree over every index key, optionally restricted to
// those starting with prefix+"/". It returns false if no key matches.
func Build(index map[string]string, prefix *string) (*Tree, bool) {
	var paths []string
	for path := range index {
		if prefix != nil && !strings.HasPrefix(path, *prefix+"/") {
			continue
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, false
	}
	sort.Strings(paths)

	tree := &Tree{Nodes: []Node{{Name: "/", Kind: Directory}}}
	dirs := map[string]int{"": 0}

	for _, path := range paths {
		components := strings.Split(path, "/")
		parent := 0
		var upToPath []string

		for idx, component := range components {
			upToPath = append(upToPath, component)
			key := strings.Join(upToPath, "/")

			if idx < len(components)-1 {
				dirIdx, ok := dirs[key]
				if !ok {
					dirIdx = len(tree.Nodes)
					tree.Nodes = append(tree.Nodes, Node{Name: component, Kind: Directory})
					tree.Nodes[parent].Children = append(tree.Nodes[parent].Children, dirIdx)
					dirs[key] = dirIdx
				}
				parent = dirIdx
			} else {
				fileIdx := len(tree.Nodes)
				tree.Nodes = append(tree.Nodes, Node{Name: component, Kind: File})
				tree.Nodes[parent].Children = append(tree.Nodes[parent].Children, fileIdx)
			}
		}
	}

	for i := range tree.Nodes {
		children := tree.Nodes[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			return tree.Nodes[children[a]].Name < tree.Nodes[children[b]].Name
		})
	}

	return tree, true
}

// Search returns every index key containing term as a substring.
func Search(index map[string]string, term string) []string {
	var matches []string
	for path := range index {
		if strings.Contains(path, term) {
			matches = append(matches, path)
		}
	}
	sort.Strings(matches)
	return matches
}

// Lines renders the tree as indented "/ name" / "» name" lines, in the
// style of the original's colored terminal printer, minus the color.
func (t *Tree) Lines() []string {
	var lines []string
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		node := t.Nodes[idx]
		switch node.Kind {
		case Directory:
			if node.Name != "/" {
				lines = append(lines, strings.Repeat("  ", depth)+"/ "+node.Name)
			}
			for _, child := range node.Children {
				childDepth := depth
				if node.Name != "/" {
					childDepth++
				}
				walk(child, childDepth)
			}
		case File:
			lines = append(lines, strings.Repeat("  ", depth)+"» "+node.Name)
		}
	}
	walk(0, 0)
	return lines
}
