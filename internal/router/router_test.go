package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/cmdgrid/internal/command"
)

func noop(context.Context, *command.Invocation) error { return nil }

func testTree() []*command.Node {
	return []*command.Node{
		{
			Name:        "db",
			Description: "Database operations",
			Children: []*command.Node{
				{Name: "migrate", Description: "Run migrations", Handler: noop},
				{Name: "seed", Description: "Seed fixtures", Handler: noop},
			},
		},
		{Name: "deploy", Aliases: []string{"d", "ship"}, Description: "Deploy the app", Handler: noop},
		{Name: "status", Description: "Show status", Handler: noop},
		{Name: "debugdump", Hidden: true, Handler: noop},
	}
}

func TestRoute_EmptyTokens(t *testing.T) {
	res := Route(nil, testTree())
	assert.Nil(t, res.Node)
	assert.Empty(t, res.Suggestions)
}

func TestRoute_ExactMatch(t *testing.T) {
	res := Route([]string{"status"}, testTree())
	require.NotNil(t, res.Node)
	assert.Equal(t, "status", res.Node.Name)
	assert.Empty(t, res.Rest)
}

func TestRoute_AliasesResolveToSameCommand(t *testing.T) {
	tree := testTree()
	canonical := Route([]string{"deploy"}, tree)
	require.NotNil(t, canonical.Node)

	for _, alias := range []string{"d", "ship"} {
		res := Route([]string{alias}, tree)
		require.NotNil(t, res.Node, "alias %q", alias)
		assert.Same(t, canonical.Node, res.Node, "alias %q", alias)
	}
}

func TestRoute_NestedDispatch(t *testing.T) {
	res := Route([]string{"db", "migrate", "up"}, testTree())
	require.NotNil(t, res.Node)
	assert.Equal(t, "migrate", res.Node.Name)
	assert.Equal(t, []string{"up"}, res.Rest)
}

func TestRoute_ParentKeepsResidualsWhenChildMissesWithoutSuggestions(t *testing.T) {
	tree := []*command.Node{
		{
			Name:     "db",
			Children: []*command.Node{{Name: "migrate", Handler: noop}},
			Handler:  noop,
		},
	}

	// "zzzzzz" is nowhere near "migrate", so the nested lookup yields no
	// suggestions and the parent becomes the final match.
	res := Route([]string{"db", "zzzzzz"}, tree)
	require.NotNil(t, res.Node)
	assert.Equal(t, "db", res.Node.Name)
	assert.Equal(t, []string{"zzzzzz"}, res.Rest)
}

func TestRoute_FlagShapedResidualStaysWithParent(t *testing.T) {
	res := Route([]string{"db", "--verbose"}, testTree())
	require.NotNil(t, res.Node)
	assert.Equal(t, "db", res.Node.Name)
	assert.Equal(t, []string{"--verbose"}, res.Rest)
}

func TestRoute_BubblesNestedSuggestionsWithPath(t *testing.T) {
	res := Route([]string{"db", "migrat"}, testTree())
	assert.Nil(t, res.Node)
	assert.Equal(t, []string{"db"}, res.Path)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "migrate", res.Suggestions[0].Name)
}

func TestRoute_ThreeLevelBubbling(t *testing.T) {
	tree := []*command.Node{
		{
			Name: "cloud",
			Children: []*command.Node{
				{
					Name: "db",
					Children: []*command.Node{
						{Name: "migrate", Handler: noop},
					},
				},
			},
		},
	}

	res := Route([]string{"cloud", "db", "migrat"}, tree)
	assert.Nil(t, res.Node)
	assert.Equal(t, []string{"cloud", "db"}, res.Path)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "migrate", res.Suggestions[0].Name)
}

func TestRoute_NoMatchSuggestions(t *testing.T) {
	res := Route([]string{"stats"}, testTree())
	assert.Nil(t, res.Node)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "status", res.Suggestions[0].Name)
}

func TestRoute_HiddenReachableByExactMatchOnly(t *testing.T) {
	tree := testTree()

	res := Route([]string{"debugdump"}, tree)
	require.NotNil(t, res.Node)
	assert.Equal(t, "debugdump", res.Node.Name)

	res = Route([]string{"debugdum"}, tree)
	assert.Nil(t, res.Node)
	for _, s := range res.Suggestions {
		assert.NotEqual(t, "debugdump", s.Name)
	}
}

func TestSuggestionsFor_PrefixShortCircuitsToZero(t *testing.T) {
	nodes := []*command.Node{
		{Name: "generate"},
	}

	// "gen" is literally 5 edits from "generate", but the prefix relation
	// forces distance zero.
	suggs := SuggestionsFor("gen", nodes)
	require.Len(t, suggs, 1)
	assert.Equal(t, 0, suggs[0].Distance)

	suggs = SuggestionsFor("GEN", nodes)
	require.Len(t, suggs, 1)
	assert.Equal(t, 0, suggs[0].Distance)
}

func TestSuggestionsFor_SortedAscendingStableOnTies(t *testing.T) {
	nodes := []*command.Node{
		{Name: "bat"},  // distance 2 from "cct"
		{Name: "cat"},  // distance 1
		{Name: "cut"},  // distance 1
		{Name: "coat"}, // distance 2
	}

	suggs := SuggestionsFor("cct", nodes)
	require.Len(t, suggs, 4)
	assert.Equal(t, "cat", suggs[0].Name)
	assert.Equal(t, "cut", suggs[1].Name)
	assert.Equal(t, "bat", suggs[2].Name)
	assert.Equal(t, "coat", suggs[3].Name)
}

func TestSuggestionsFor_DistanceCutoff(t *testing.T) {
	nodes := []*command.Node{
		{Name: "completelyunrelated"},
	}
	assert.Empty(t, SuggestionsFor("db", nodes))
}

func TestSuggestionsFor_AliasDistanceCounts(t *testing.T) {
	nodes := []*command.Node{
		{Name: "kubernetes", Aliases: []string{"k8s"}},
	}

	suggs := SuggestionsFor("k8", nodes)
	require.Len(t, suggs, 1)
	assert.Equal(t, "kubernetes", suggs[0].Name)
	assert.Equal(t, 0, suggs[0].Distance) // prefix of the alias
}
