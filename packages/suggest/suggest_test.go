package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepvault/stepvault/packages/refs"
	"github.com/stepvault/stepvault/packages/resolve"
	"github.com/stepvault/stepvault/packages/store"
)

func newFixture(t *testing.T) (*Service, *store.VarStore) {
	t.Helper()
	backend := store.NewMemory()
	s, err := store.New("exec-1", backend)
	require.NoError(t, err)
	r := resolve.New(s, refs.NewTracker("exec-1", backend))
	return New(s, r), s
}

func TestListSuggestions_TemporalVisibility(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("early", 1, 2, "m", nil))
	require.NoError(t, s.Store("late", 2, 5, "m", nil))

	names := func(sgs []*Suggestion) []string {
		var out []string
		for _, sg := range sgs {
			out = append(out, sg.Name)
		}
		return out
	}

	sgs, err := svc.ListSuggestions(3, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"early"}, names(sgs), "step 3 must not see a step-5 variable")

	sgs, err = svc.ListSuggestions(6, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, names(sgs))

	sgs, err = svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	assert.Len(t, sgs, 2)

	sgs, err = svc.ListSuggestions(2, false, 0)
	require.NoError(t, err)
	assert.Empty(t, names(sgs), "visibility is strictly earlier, not same-step")
}

func TestListSuggestions_Previews(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("text", "a perfectly ordinary string value that keeps going and going", 0, "m", nil))
	require.NoError(t, s.Store("num", 42, 0, "m", nil))
	require.NoError(t, s.Store("obj", map[string]any{"a": 1, "b": 2, "c": 3, "d": 4}, 0, "m", nil))
	require.NoError(t, s.Store("arr", []any{1, 2, 3}, 0, "m", nil))

	sgs, err := svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)

	byName := map[string]*Suggestion{}
	for _, sg := range sgs {
		byName[sg.Name] = sg
	}
	assert.Equal(t, "a perfectly ordinary string value that keeps going...", byName["text"].Preview)
	assert.Equal(t, "42", byName["num"].Preview)
	assert.Equal(t, "{a, b, c, ...}", byName["obj"].Preview)
	assert.Equal(t, "[3 items]", byName["arr"].Preview)
}

func TestListSuggestions_ShallowProperties(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("user", map[string]any{
		"name":    "Zhang",
		"address": map[string]any{"city": "Beijing"},
	}, 0, "m", nil))

	sgs, err := svc.ListSuggestions(AllSteps, true, 0)
	require.NoError(t, err)
	require.Len(t, sgs, 1)
	props := sgs[0].Properties
	require.Len(t, props, 2)
	assert.Equal(t, "address", props[0].Name)
	assert.Equal(t, "object", props[0].Type)
	assert.Equal(t, "name", props[1].Name)
	assert.Equal(t, "string", props[1].Type)
}

func TestExplore(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("order", map[string]any{
		"id": "o-1",
		"items": []any{
			map[string]any{"sku": "A", "qty": 2},
		},
	}, 0, "m", nil))

	nodes, err := svc.Explore("order", 3)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "id", nodes[0].Name)
	assert.Equal(t, "order.id", nodes[0].Path)
	assert.Empty(t, nodes[0].Properties)

	items := nodes[1]
	assert.Equal(t, "items", items.Name)
	require.Len(t, items.Properties, 1, "arrays are explored through an exemplar element")
	exemplar := items.Properties[0]
	assert.Equal(t, "[0]", exemplar.Name)
	assert.Equal(t, "order.items[0]", exemplar.Path)
	require.Len(t, exemplar.Properties, 2)
	assert.Equal(t, "order.items[0].qty", exemplar.Properties[0].Path)
}

func TestExploreDepthLimit(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("deep", map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}},
	}, 0, "m", nil))

	nodes, err := svc.Explore("deep", 1)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Properties, "depth 1 stops at the first level")
}

func TestExploreUnknownVariable(t *testing.T) {
	svc, _ := newFixture(t)
	_, err := svc.Explore("missing", 2)
	require.Error(t, err)
}

func TestSearchRanking(t *testing.T) {
	svc, s := newFixture(t)
	for _, name := range []string{"product", "price", "description"} {
		require.NoError(t, s.Store(name, name, 0, "m", nil))
	}

	matches, err := svc.Search("pr", 10, AllSteps)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	rank := map[string]int{}
	for i, m := range matches {
		rank[m.Name] = i
	}
	if descRank, ok := rank["description"]; ok {
		assert.Greater(t, descRank, rank["product"], "prefix match must outrank substring match")
		assert.Greater(t, descRank, rank["price"])
	}
}

func TestSearchExactBeatsPrefix(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("user", 1, 0, "m", nil))
	require.NoError(t, s.Store("username", 1, 0, "m", nil))

	matches, err := svc.Search("user", 10, AllSteps)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "user", matches[0].Name)
}

func TestSearchTokenBonus(t *testing.T) {
	score1 := scoreName("user_email", "email")
	score2 := scoreName("useremail1", "email")
	assert.Greater(t, score1, score2, "underscore token prefix should boost")
}

func TestSearchFloor(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("zzzzzzzzzzzz", 1, 0, "m", nil))

	matches, err := svc.Search("pr", 10, AllSteps)
	require.NoError(t, err)
	assert.Empty(t, matches, "matches below the floor are discarded")
}

func TestSearchHighlight(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("product_id", 1, 0, "m", nil))

	matches, err := svc.Search("prod", 10, AllSteps)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "<mark>prod</mark>uct_id", matches[0].Highlighted)
}

func TestSearchLimit(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("item_a", 1, 0, "m", nil))
	require.NoError(t, s.Store("item_b", 1, 0, "m", nil))
	require.NoError(t, s.Store("item_c", 1, 0, "m", nil))

	matches, err := svc.Search("item", 2, AllSteps)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestSearchTemporalVisibility(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("future_var", 1, 9, "m", nil))

	matches, err := svc.Search("future", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCacheInvalidatedByStore(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("a", 1, 0, "m", nil))

	sgs, err := svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	assert.Len(t, sgs, 1)

	// A write must be visible immediately, not after the TTL.
	require.NoError(t, s.Store("b", 2, 1, "m", nil))
	sgs, err = svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	assert.Len(t, sgs, 2)
}

func TestCacheServesRepeatQueries(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("a", 1, 0, "m", nil))

	first, err := svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	again, err := svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestValidate(t *testing.T) {
	svc, s := newFixture(t)
	require.NoError(t, s.Store("user", map[string]any{
		"name": "Zhang",
		"pets": []any{"cat"},
	}, 0, "m", nil))

	results := svc.Validate([]string{
		"${user.name}",
		"${user.nope}",
		"${user.pets[3]}",
		"${missing}",
		"not an expression",
	}, 4)
	require.Len(t, results, 5, "one result per input, valid or not")

	assert.True(t, results[0].IsValid)
	assert.Equal(t, "Zhang", results[0].ResolvedValue)
	assert.Equal(t, "string", results[0].DataType)

	assert.False(t, results[1].IsValid)
	assert.Contains(t, results[1].Suggestion, "name")
	assert.Contains(t, results[1].Suggestion, "pets")

	assert.False(t, results[2].IsValid)
	assert.Contains(t, results[2].Suggestion, "0..0")

	assert.False(t, results[3].IsValid)
	assert.Contains(t, results[3].Error, "undefined variable")

	assert.False(t, results[4].IsValid)
}

func TestValidateDoesNotRecordReferences(t *testing.T) {
	backend := store.NewMemory()
	s, err := store.New("exec-1", backend)
	require.NoError(t, err)
	tracker := refs.NewTracker("exec-1", backend)
	svc := New(s, resolve.New(s, tracker))

	require.NoError(t, s.Store("x", 1, 0, "m", nil))
	svc.Validate([]string{"${x}", "${y}"}, 1)

	recorded, err := tracker.List()
	require.NoError(t, err)
	assert.Empty(t, recorded, "validation is read-only with respect to the audit log")
}

func TestTTLExpiry(t *testing.T) {
	backend := store.NewMemory()
	s, err := store.New("exec-1", backend)
	require.NoError(t, err)
	svc := New(s, resolve.New(s, nil), WithTTL(10*time.Millisecond))

	require.NoError(t, s.Store("a", 1, 0, "m", nil))
	_, err = svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	sgs, err := svc.ListSuggestions(AllSteps, false, 0)
	require.NoError(t, err)
	assert.Len(t, sgs, 1)
}
