package workspace

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

type EnvTreeNode struct {
	Name     string
	Children []*EnvTreeNode
	File     string // Empty if directory, contains relative path if file
}

func BuildEnvTree(paths []string) *EnvTreeNode {
	root := &EnvTreeNode{Name: ".", Children: nil}

	for _, p := range paths {
		parts := strings.Split(filepath.ToSlash(p), "/")
		cur := root
		for i, part := range parts {
			if i == len(parts)-1 {
				cur.Children = append(cur.Children, &EnvTreeNode{Name: part, File: p})
				break
			}
			var next *EnvTreeNode
			for _, ch := range cur.Children {
				if ch.Name == part && ch.File == "" {
					next = ch
					break
				}
			}
			if next == nil {
				next = &EnvTreeNode{Name: part, Children: nil}
				cur.Children = append(cur.Children, next)
			}
			cur = next
		}
	}

	SortEnvTree(root)
	return root
}

func SortEnvTree(node *EnvTreeNode) {
	if len(node.Children) == 0 {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		ci, cj := node.Children[i], node.Children[j]
		fileI := ci.File != ""
		fileJ := cj.File != ""
		if fileI != fileJ {
			return fileI
		}
		return ci.Name < cj.Name
	})

	for _, ch := range node.Children {
		SortEnvTree(ch)
	}
}

// PrintEnvTree writes the tree below node. label, when set, renders the
// text shown for a file node (for example a key count).
func PrintEnvTree(w io.Writer, node *EnvTreeNode, label func(*EnvTreeNode) string) {
	printEnvTree(w, node, "", true, label)
}

func printEnvTree(w io.Writer, node *EnvTreeNode, prefix string, last bool, label func(*EnvTreeNode) string) {
	if node.Name != "." {
		conn := "├─ "
		if last {
			conn = "└─ "
		}
		text := node.Name
		if node.File != "" && label != nil {
			text = label(node)
		}
		fmt.Fprintln(w, prefix+conn+text)
	}

	childPrefix := prefix
	if node.Name != "." {
		if last {
			childPrefix += "   "
		} else {
			childPrefix += "│  "
		}
	}

	for i, ch := range node.Children {
		printEnvTree(w, ch, childPrefix, i == len(node.Children)-1, label)
	}
}

// IsEnvFilename accepts ".env" and ".env.<suffix>". Templates such as
// .env.example and edit lock files are left out.
func IsEnvFilename(name string) bool {
	if name == ".env" {
		return true
	}
	switch name {
	case ".env.example", ".env.sample", ".env.template", ".env.dist":
		return false
	}
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	return strings.HasPrefix(name, ".env.") && len(name) > 5
}
