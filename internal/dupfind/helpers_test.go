package dupfind

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeFile creates root/rel with the given content, creating parents.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", rel, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", rel, err)
	}

	return path
}

// relPaths converts absolute paths below root into sorted slash paths.
func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()

	rel := make([]string, 0, len(paths))

	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("relativizing %s: %v", p, err)
		}

		rel = append(rel, filepath.ToSlash(r))
	}

	slices.Sort(rel)

	return rel
}

// groupSets returns the relative member paths of every group.
func groupSets(t *testing.T, result *Result) [][]string {
	t.Helper()

	sets := make([][]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		sets = append(sets, relPaths(t, result.Root, g.Files))
	}

	return sets
}

// scenarioTree builds the tree
//
//	a.txt      "X"
//	b.txt      "X"
//	c.txt      "Y"
//	sub/d.txt  "X"
func scenarioTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "X")
	writeFile(t, root, "b.txt", "X")
	writeFile(t, root, "c.txt", "Y")
	writeFile(t, root, "sub/d.txt", "X")

	return root
}

// depthTree builds one identical file per level:
//
//	f0, l1/f1, l1/l2/f2, l1/l2/l3/f3
func depthTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "f0", "D")
	writeFile(t, root, "l1/f1", "D")
	writeFile(t, root, "l1/l2/f2", "D")
	writeFile(t, root, "l1/l2/l3/f3", "D")

	return root
}

// skipIfRoot skips tests relying on permission checks.
func skipIfRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed when running as root")
	}
}
