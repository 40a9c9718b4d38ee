package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vigil/pkg/detector"
	"github.com/aretw0/vigil/pkg/diff"
	"github.com/aretw0/vigil/pkg/domain"
)

type person struct {
	Name string
	Age  int
}

func handlers(head *domain.ChangeRecord) []any {
	var out []any
	for c := head; c != nil; c = c.Next {
		out = append(out, c.Handler)
	}
	return out
}

func TestDetector_NoMutationReportsNothing(t *testing.T) {
	det := detector.New()
	root := det.Root()

	p := &person{Name: "alice", Age: 30}
	seq := []any{"a", "b"}
	m := map[string]int{"x": 1}

	_, err := root.Watch(p, domain.Field("Name"), "name")
	require.NoError(t, err)
	_, err = root.Watch(seq, domain.Items(), "seq")
	require.NoError(t, err)
	_, err = root.Watch(m, domain.Entries(), "map")
	require.NoError(t, err)

	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	assert.Nil(t, head, "digest with no intervening mutation must report nothing")
}

func TestDetector_FieldChangeByIdentity(t *testing.T) {
	det := detector.New()
	p := &person{Name: "alice"}

	rec, err := det.Root().Watch(p, domain.Field("Name"), "h")
	require.NoError(t, err)

	p.Name = "bob"
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, 1, head.Count())
	assert.Equal(t, "bob", head.CurrentValue)
	assert.Equal(t, "alice", head.PreviousValue)
	assert.Equal(t, "h", head.Handler)
	assert.Equal(t, "bob", rec.CurrentValue())

	// Settled: next digest is silent.
	head, err = det.CollectChanges(nil)
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestDetector_RegistrationOrderAcrossNestedGroups(t *testing.T) {
	det := detector.New()
	root := det.Root()

	p := &person{}
	watch := func(g *detector.WatchGroup, handler string) {
		t.Helper()
		_, err := g.Watch(p, domain.Field("Age"), handler)
		require.NoError(t, err)
	}

	watch(root, "root-1")

	childA, err := root.NewGroup()
	require.NoError(t, err)
	watch(childA, "a-1")

	grandchild, err := childA.NewGroup()
	require.NoError(t, err)
	watch(grandchild, "a-sub-1")

	childB, err := root.NewGroup()
	require.NoError(t, err)
	watch(childB, "b-1")

	// Registered on earlier groups after later groups exist: traversal order
	// still puts a group's own records before every child subtree.
	watch(root, "root-2")
	watch(childA, "a-2")

	p.Age = 1
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)

	want := []any{"root-1", "root-2", "a-1", "a-2", "a-sub-1", "b-1"}
	assert.Equal(t, want, handlers(head))
}

func TestDetector_GroupRemoveDetachesSubtree(t *testing.T) {
	det := detector.New()
	root := det.Root()
	p := &person{}

	_, err := root.Watch(p, domain.Field("Age"), "keep")
	require.NoError(t, err)

	child, err := root.NewGroup()
	require.NoError(t, err)
	_, err = child.Watch(p, domain.Field("Age"), "drop")
	require.NoError(t, err)

	grandchild, err := child.NewGroup()
	require.NoError(t, err)
	_, err = grandchild.Watch(p, domain.Field("Age"), "drop-deep")
	require.NoError(t, err)

	sibling, err := root.NewGroup()
	require.NoError(t, err)
	_, err = sibling.Watch(p, domain.Field("Age"), "keep-sibling")
	require.NoError(t, err)

	require.Equal(t, 4, det.Size())
	require.NoError(t, child.Remove())
	require.Equal(t, 2, det.Size())

	// Idempotent.
	require.NoError(t, child.Remove())

	p.Age = 7
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"keep", "keep-sibling"}, handlers(head))

	// A removed group rejects new registrations, as do its descendants.
	_, err = child.Watch(p, domain.Field("Age"), "x")
	assert.ErrorIs(t, err, domain.ErrGroupRemoved)
	_, err = grandchild.NewGroup()
	assert.ErrorIs(t, err, domain.ErrGroupRemoved)
}

func TestDetector_RootGroupCannotBeRemoved(t *testing.T) {
	det := detector.New()
	assert.ErrorIs(t, det.Root().Remove(), domain.ErrRootGroup)
}

func TestDetector_RecordRemove(t *testing.T) {
	det := detector.New()
	p := &person{}

	first, err := det.Root().Watch(p, domain.Field("Age"), "first")
	require.NoError(t, err)
	_, err = det.Root().Watch(p, domain.Field("Name"), "second")
	require.NoError(t, err)

	require.NoError(t, first.Remove())
	require.NoError(t, first.Remove(), "second remove is a no-op")
	require.Equal(t, 1, det.Size())

	p.Age = 1
	p.Name = "x"
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"second"}, handlers(head))
}

func TestDetector_ItemsWatchDelegatesToDiffer(t *testing.T) {
	det := detector.New()

	var cell any = []any{"a", "b", "c"}
	rec, err := det.Root().Watch(&cell, domain.Items(), "list")
	require.NoError(t, err)

	cell = []any{"a", "b", "c", "d"}
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head)

	change, ok := head.CurrentValue.(*diff.CollectionChange)
	require.True(t, ok, "items watch must expose the differ's change record")
	require.Len(t, change.Additions(), 1)
	assert.Equal(t, "d", change.Additions()[0].Item)
	assert.Empty(t, change.Moves())
	assert.Empty(t, change.Removals())
	assert.Same(t, change, rec.CurrentValue())
}

func TestDetector_EntriesWatchDelegatesToDiffer(t *testing.T) {
	det := detector.New()

	m := map[string]any{"a": 1}
	_, err := det.Root().Watch(m, domain.Entries(), "map")
	require.NoError(t, err)

	m["b"] = 2
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head)

	change, ok := head.CurrentValue.(*diff.MapChange)
	require.True(t, ok)
	require.Len(t, change.Additions(), 1)
	assert.Equal(t, "b", change.Additions()[0].Key)

	// Unrelated keys stay silent.
	head, err = det.CollectChanges(nil)
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestDetector_IdentityWatch(t *testing.T) {
	det := detector.New()

	first := &person{Name: "same"}
	second := &person{Name: "same"} // deeply equal, different identity

	rec, err := det.Root().Watch(first, domain.Identity(), "id")
	require.NoError(t, err)

	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	require.Nil(t, head)

	require.NoError(t, rec.SetObject(second))
	head, err = det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head, "identity watch fires on reference swap even for deeply equal values")
	assert.Same(t, second, head.CurrentValue)
	assert.Same(t, first, head.PreviousValue)
}

func TestDetector_InvalidSelectorFailsAtWatchTime(t *testing.T) {
	det := detector.New()
	root := det.Root()

	tests := []struct {
		name     string
		object   any
		selector domain.Selector
	}{
		{"Items On Scalar", 42, domain.Items()},
		{"Entries On Slice", []int{1}, domain.Entries()},
		{"Field On Scalar", 42, domain.Field("X")},
		{"Missing Field", &person{}, domain.Field("Nope")},
		{"Empty Field Name", &person{}, domain.Field("")},
		{"Field On Int-Keyed Map", map[int]string{1: "a"}, domain.Field("k")},
		{"Nil Object", nil, domain.Items()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := root.Watch(tt.object, tt.selector, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidSelector)
			assert.Zero(t, det.Size(), "failed registration must not leave a record behind")
		})
	}
}

func TestDetector_HandlerIsolatesFailingRecord(t *testing.T) {
	det := detector.New()
	p := &person{}

	_, err := det.Root().Watch(p, domain.Field("Age"), "before")
	require.NoError(t, err)

	// Valid at registration, diverges afterwards through the interface cell.
	var cell any = []any{"a"}
	_, err = det.Root().Watch(&cell, domain.Items(), "broken")
	require.NoError(t, err)

	_, err = det.Root().Watch(p, domain.Field("Name"), "after")
	require.NoError(t, err)

	cell = 42 // no longer a sequence
	p.Age = 1
	p.Name = "x"

	var failed []any
	handler := func(err error, rec *detector.WatchRecord) {
		failed = append(failed, rec.Handler())
	}

	head, err := det.CollectChanges(handler)
	require.NoError(t, err)
	assert.Equal(t, []any{"before", "after"}, handlers(head), "pass continues past the failing record")
	assert.Equal(t, []any{"broken"}, failed)
}

func TestDetector_FatalFailureAbortsAndDiscardsPartialResults(t *testing.T) {
	det := detector.New()
	p := &person{}

	_, err := det.Root().Watch(p, domain.Field("Age"), "before")
	require.NoError(t, err)

	var cell any = []any{"a"}
	_, err = det.Root().Watch(&cell, domain.Items(), "broken")
	require.NoError(t, err)

	cell = 42
	p.Age = 1

	head, err := det.CollectChanges(nil)
	require.Error(t, err)
	assert.Nil(t, head, "aborted pass discards the partial change list")
}

func TestDetector_MutationDuringDigestFails(t *testing.T) {
	det := detector.New()
	root := det.Root()
	p := &person{}

	rec, err := root.Watch(p, domain.Field("Age"), "ok")
	require.NoError(t, err)

	var cell any = []any{"a"}
	_, err = root.Watch(&cell, domain.Items(), "broken")
	require.NoError(t, err)
	cell = 42

	handler := func(error, *detector.WatchRecord) {
		_, werr := root.Watch(p, domain.Field("Name"), "reentrant")
		assert.ErrorIs(t, werr, domain.ErrDigestInProgress)

		_, gerr := root.NewGroup()
		assert.ErrorIs(t, gerr, domain.ErrDigestInProgress)

		assert.ErrorIs(t, rec.Remove(), domain.ErrDigestInProgress)

		_, cerr := det.CollectChanges(nil)
		assert.ErrorIs(t, cerr, domain.ErrDigestInProgress)
	}

	_, err = det.CollectChanges(handler)
	require.NoError(t, err)

	// The tree is mutable again once the pass returns.
	_, err = root.Watch(p, domain.Field("Name"), "later")
	require.NoError(t, err)
}

func TestDetector_MapFieldWatch(t *testing.T) {
	det := detector.New()
	doc := map[string]any{"title": "draft"}

	_, err := det.Root().Watch(doc, domain.Field("title"), "title")
	require.NoError(t, err)

	doc["title"] = "final"
	head, err := det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, "final", head.CurrentValue)

	// Deleting the entry reads as nil.
	delete(doc, "title")
	head, err = det.CollectChanges(nil)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Nil(t, head.CurrentValue)
	assert.Equal(t, "final", head.PreviousValue)
}
