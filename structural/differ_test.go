package structural

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/syntax"
)

func fileOf(children ...*syntax.Node) *syntax.Node {
	f := sn(syntax.File, "", "")
	for _, c := range children {
		f.Child(c)
	}
	fillContainerText(f)
	return f
}

func childByName(t *testing.T, n *changes.Node, name string) *changes.Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no child named %q", name)
	return nil
}

func TestDiffIdenticalTreesAreUnchanged(t *testing.T) {
	mk := func() *syntax.Node {
		return fileOf(
			sn(syntax.Class, "A", "public class A",
				sn(syntax.Method, "M", "public void M() { return; }"),
				sn(syntax.Field, "x", "int x"),
			),
		)
	}
	root := Diff(mk(), mk())
	root.Walk(func(n *changes.Node) bool {
		assert.Equal(t, changes.Unchanged, n.Type, "%s %s", n.Kind, n.Name)
		return true
	})
	assert.Equal(t, 0, changes.Count([]*changes.Node{root}).Total())
}

func TestDiffAddedAndRemovedMembers(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "Keep", "void Keep() {}"),
		sn(syntax.Method, "Gone", "void Gone() {}"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "Keep", "void Keep() {}"),
		sn(syntax.Method, "Fresh", "void Fresh() {}"),
	))
	root := Diff(old, new)
	require.Equal(t, changes.Modified, root.Type)
	a := childByName(t, root, "A")
	assert.Equal(t, changes.Unchanged, childByName(t, a, "Keep").Type)
	assert.Equal(t, changes.Added, childByName(t, a, "Fresh").Type)
	assert.Equal(t, changes.Removed, childByName(t, a, "Gone").Type)
}

func TestDiffRemovedContainerMarksDescendants(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M() {}"),
	))
	root := Diff(old, fileOf())
	a := childByName(t, root, "A")
	require.Equal(t, changes.Removed, a.Type)
	require.Len(t, a.Children, 1)
	assert.Equal(t, changes.Removed, a.Children[0].Type)
	assert.Equal(t, "M", a.Children[0].Name)
}

func TestDiffModifiedMethodRecursesIntoStatements(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M()",
			sn(syntax.Statement, "", "var x = 1;"),
			sn(syntax.Statement, "", "return x;"),
		),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M()",
			sn(syntax.Statement, "", "var x = 2;"),
			sn(syntax.Statement, "", "return x;"),
		),
	))
	root := Diff(old, new)
	m := childByName(t, childByName(t, root, "A"), "M")
	require.Equal(t, changes.Modified, m.Type)
	var modified, unchanged int
	for _, s := range m.Children {
		switch s.Type {
		case changes.Modified:
			modified++
			assert.Equal(t, "var x = 1;", s.OldContent)
			assert.Equal(t, "var x = 2;", s.NewContent)
		case changes.Unchanged:
			unchanged++
		}
	}
	assert.Equal(t, 1, modified)
	assert.Equal(t, 1, unchanged)
}

func TestDiffRenamePreferredOverRemoveAdd(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "OldName", "public void OldName() { work(); }"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "NewName", "public void NewName() { work(); }"),
	))
	root := Diff(old, new)
	a := childByName(t, root, "A")
	require.Len(t, a.Children, 1)
	n := a.Children[0]
	assert.Equal(t, changes.Renamed, n.Type)
	assert.Equal(t, "NewName", n.Name)
	assert.Contains(t, n.OldContent, "OldName")
	assert.Contains(t, n.NewContent, "NewName")
}

func TestDiffRenameNotClaimedWhenBodyDiffers(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "OldName", "void OldName() { one(); }"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "NewName", "void NewName() { two(); }"),
	))
	a := childByName(t, Diff(old, new), "A")
	types := map[changes.Type]int{}
	for _, c := range a.Children {
		types[c.Type]++
	}
	assert.Equal(t, 1, types[changes.Added])
	assert.Equal(t, 1, types[changes.Removed])
	assert.Equal(t, 0, types[changes.Renamed])
}

func TestDiffMovedMember(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "First", "void First() {}"),
		sn(syntax.Method, "Second", "void Second() {}"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "Second", "void Second() {}"),
		sn(syntax.Method, "First", "void First() {}"),
	))
	a := childByName(t, Diff(old, new), "A")
	assert.Equal(t, changes.Moved, childByName(t, a, "First").Type)
	assert.Equal(t, changes.Moved, childByName(t, a, "Second").Type)
}

func TestDiffFormattingOnlyChangeIsUnchangedStructurally(t *testing.T) {
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void  M()  {  work();  }"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M() { work(); }"),
	))
	a := childByName(t, Diff(old, new), "A")
	assert.Equal(t, changes.Unchanged, childByName(t, a, "M").Type)
}

func TestDiffSameNamedSiblingsPairInOrder(t *testing.T) {
	// Method overloads share a name; the ordinal keeps them apart.
	old := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M() {}"),
		sn(syntax.Method, "M", "void M(int x) {}"),
	))
	new := fileOf(sn(syntax.Class, "A", "class A",
		sn(syntax.Method, "M", "void M() {}"),
		sn(syntax.Method, "M", "void M(int x, int y) {}"),
	))
	a := childByName(t, Diff(old, new), "A")
	require.Len(t, a.Children, 2)
	assert.Equal(t, changes.Unchanged, a.Children[0].Type)
	assert.Equal(t, changes.Modified, a.Children[1].Type)
}

func TestDiffNilSides(t *testing.T) {
	tree := fileOf(sn(syntax.Class, "A", "class A"))
	assert.Equal(t, changes.Added, Diff(nil, tree).Type)
	assert.Equal(t, changes.Removed, Diff(tree, nil).Type)
	assert.Equal(t, changes.Unchanged, Diff(nil, nil).Type)
}
