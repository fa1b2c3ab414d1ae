package serializer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// node is a tiny in-memory graph: parents point at children and children
// point back, like users and jobs do.
type node struct {
	kind     string
	id       int
	parent   *node
	children []*node
	loads    *int
}

func (n *node) Key() string { return fmt.Sprintf("%s:%d", n.kind, n.id) }

func (n *node) Columns() map[string]any {
	return map[string]any{"id": n.id, "secret": "s3cr3t"}
}

func (n *node) Relations() map[string]Relation {
	rels := map[string]Relation{}
	if n.parent != nil {
		rels["parent"] = One(func(*gorm.DB) (Entity, error) {
			*n.loads++
			return n.parent, nil
		})
	}
	if n.children != nil {
		rels["children"] = Many(func(*gorm.DB) ([]Entity, error) {
			*n.loads++
			out := make([]Entity, len(n.children))
			for i, c := range n.children {
				out[i] = c
			}
			return out, nil
		})
	}
	return rels
}

func graph() (*node, *node, *int) {
	loads := 0
	parent := &node{kind: "users", id: 1, loads: &loads}
	child := &node{kind: "jobs", id: 9, parent: parent, loads: &loads}
	parent.children = []*node{child}
	return parent, child, &loads
}

func TestDenyRuleCutsCycle(t *testing.T) {
	_, child, loads := graph()

	out, err := Serialize(nil, child, "-parent.children", "-parent.secret")
	require.NoError(t, err)

	parent := out["parent"].(map[string]any)
	assert.Equal(t, 1, parent["id"])
	assert.NotContains(t, parent, "children")
	assert.NotContains(t, parent, "secret")
	assert.Equal(t, "s3cr3t", out["secret"])
	assert.Equal(t, 1, *loads)
}

func TestUncutCycleFails(t *testing.T) {
	_, child, _ := graph()

	_, err := Serialize(nil, child)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestManyRelation(t *testing.T) {
	parent, _, _ := graph()

	out, err := Serialize(nil, parent, "-children.parent")
	require.NoError(t, err)

	children := out["children"].([]map[string]any)
	require.Len(t, children, 1)
	assert.Equal(t, 9, children[0]["id"])
	assert.NotContains(t, children[0], "parent")
}

func TestSerializeAll(t *testing.T) {
	parent, child, _ := graph()
	other := &node{kind: "jobs", id: 10, parent: parent, loads: child.loads}

	out, err := SerializeAll(nil, []*node{child, other}, "-parent")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotContains(t, out[1], "parent")
}

func TestParseRules(t *testing.T) {
	_, err := ParseRules("parent")
	assert.Error(t, err)

	rules, err := ParseRules(" -a.b ", "-c")
	require.NoError(t, err)
	assert.True(t, rules.Denies("a.b"))
	assert.False(t, rules.Denies("a"))
}
