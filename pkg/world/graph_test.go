package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *Graph {
	return &Graph{
		Name: "Avalonia",
		Locations: []*Location{
			{
				Name:        "Market",
				Description: "A busy market square.",
				Paths:       map[string]string{"north": "Old Town"},
				Containers: []*Container{
					{Name: "Chest", Contains: Inventory{{Name: "Key", Quantity: 1}}},
				},
				Sublocations: []*Location{
					{
						Name: "Bazaar",
						Rooms: []*Location{
							{Name: "Vault", Containers: []*Container{{Name: "Strongbox", IsOpen: true}}},
						},
					},
				},
			},
			{Name: "Old Town", MainEntry: true, Paths: map[string]string{"south": "Market"}},
		},
	}
}

func TestGraph_FindLocation(t *testing.T) {
	g := testGraph()

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "top level", query: "market", expected: "Market"},
		{name: "top level with article", query: "the Old  Town", expected: "Old Town"},
		{name: "sublocation", query: "BAZAAR", expected: "Bazaar"},
		{name: "room", query: "vault", expected: "Vault"},
		{name: "unknown", query: "castle", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := g.FindLocation(tt.query)
			if tt.expected == "" {
				assert.Nil(t, loc)
				return
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.expected, loc.Name)
		})
	}
}

func TestGraph_FindLocation_NilGraph(t *testing.T) {
	var g *Graph
	assert.Nil(t, g.FindLocation("market"))
}

func TestGraph_PathTo(t *testing.T) {
	g := testGraph()

	tests := []struct {
		query    string
		expected LocationPath
	}{
		{query: "market", expected: NewPath("Avalonia", "Market")},
		{query: "bazaar", expected: NewPath("Avalonia", "Market", "Bazaar")},
		{query: "the vault", expected: NewPath("Avalonia", "Market", "Bazaar", "Vault")},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, loc, ok := g.PathTo(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.expected, p)
			assert.Same(t, g.Resolve(p), loc)
		})
	}

	_, _, ok := g.PathTo("castle")
	assert.False(t, ok)
}

func TestGraph_Resolve(t *testing.T) {
	g := testGraph()

	loc := g.Resolve(NewPath("Avalonia", "Market", "Bazaar", "Vault"))
	require.NotNil(t, loc)
	assert.Equal(t, "Vault", loc.Name)

	assert.Nil(t, g.Resolve(NewPath("Avalonia", "Old Town", "Vault")), "vault is not under old town")
	assert.Nil(t, g.Resolve(LocationPath{}))
}

func TestGraph_CloseAllContainers(t *testing.T) {
	g := testGraph()
	g.FindLocation("market").Container("chest").IsOpen = true

	g.CloseAllContainers()

	assert.False(t, g.FindLocation("market").Container("chest").IsOpen)
	vault := g.FindLocation("vault")
	assert.False(t, vault.Container("strongbox").IsOpen)
	assert.Equal(t, uint(1), g.FindLocation("market").Container("chest").Contains.Count("key"), "closing keeps contents")
}

func TestGraph_ApplyUpdates(t *testing.T) {
	g := testGraph()
	desc := "An empty square."
	items := Inventory{{Name: "Apple", Quantity: 3}}

	err := g.ApplyUpdates(NewPath("Avalonia", "Market"), LocationPatch{Description: &desc, Items: &items})
	require.NoError(t, err)

	market := g.FindLocation("market")
	assert.Equal(t, desc, market.Description)
	assert.Equal(t, uint(3), market.Items.Count("apple"))
	assert.Equal(t, "Old Town", market.Paths["north"], "unpatched fields are untouched")
	assert.Len(t, market.Containers, 1)

	err = g.ApplyUpdates(NewPath("Avalonia", "Nowhere"), LocationPatch{Description: &desc})
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGraph_MainEntry(t *testing.T) {
	g := testGraph()
	loc, p, ok := g.MainEntry()
	require.True(t, ok)
	assert.Equal(t, "Old Town", loc.Name)
	assert.Equal(t, "Avalonia", p.World)
	assert.Equal(t, "Old Town", p.String())

	g.FindLocation("old town").MainEntry = false
	_, _, ok = g.MainEntry()
	assert.False(t, ok)
}

func TestGraph_Clone(t *testing.T) {
	g := testGraph()
	c := g.Clone()

	c.FindLocation("market").Container("chest").IsOpen = true
	_, err := c.FindLocation("market").Container("chest").Contains.Remove("key", 1)
	require.NoError(t, err)
	c.FindLocation("market").Paths["east"] = "Docks"

	orig := g.FindLocation("market")
	assert.False(t, orig.Container("chest").IsOpen)
	assert.Equal(t, uint(1), orig.Container("chest").Contains.Count("key"))
	_, ok := orig.Paths["east"]
	assert.False(t, ok)
}

func TestGraph_Validate(t *testing.T) {
	g := testGraph()
	assert.Empty(t, g.Validate())

	market := g.FindLocation("market")
	market.Paths["loop"] = "the market"
	market.Paths["west"] = "Atlantis"
	market.Sublocations = append(market.Sublocations, &Location{Name: "bazaar"})
	g.FindLocation("old town").MainEntry = false

	problems := g.Validate()
	assert.Len(t, problems, 4)
	assert.Contains(t, problems, `Market: path "loop" points back to itself`)
	assert.Contains(t, problems, `Market: path "west" leads to unknown location "Atlantis"`)
}

func TestLocation_ChildPrefersSublocations(t *testing.T) {
	loc := &Location{
		Name:         "Hall",
		Sublocations: []*Location{{Name: "Annex", Description: "sub"}},
		Rooms:        []*Location{{Name: "Annex", Description: "room"}},
	}
	require.NotNil(t, loc.Child("annex"))
	assert.Equal(t, "sub", loc.Child("annex").Description)
	assert.Nil(t, loc.Child("cellar"))
}

func TestNPC_Offers(t *testing.T) {
	npc := &NPC{
		Name: "Athena",
		Interactions: []Interaction{
			{Type: InteractTalk},
			{Type: InteractQuest, Quest: "Find the Oracle"},
		},
	}
	assert.True(t, npc.Offers(InteractTalk))
	assert.True(t, npc.Offers(InteractGive, InteractTalk))
	assert.False(t, npc.Offers(InteractGive))
	assert.Equal(t, []string{"Find the Oracle"}, npc.QuestOffers())
}

func TestLocationPath_JSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LocationPath
	}{
		{
			name:     "structured",
			input:    `{"world":"OdysseyVR","location":"Lobby/Reception"}`,
			expected: NewPath("OdysseyVR", "Lobby", "Reception"),
		},
		{
			name:     "legacy key",
			input:    `{"world":"OdysseyVR","location/sublocation":"Lobby"}`,
			expected: NewPath("OdysseyVR", "Lobby"),
		},
		{
			name:     "bare string has no world",
			input:    `"Lobby"`,
			expected: NewPath("", "Lobby"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p LocationPath
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.True(t, tt.expected.Equal(p), "got %+v", p)
		})
	}

	data, err := json.Marshal(NewPath("OdysseyVR", "Lobby", "Reception"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"world":"OdysseyVR","location":"Lobby/Reception"}`, string(data))

	var bad LocationPath
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestLocationPath_ParentAndChild(t *testing.T) {
	p := NewPath("W", "Market")
	child := p.Child("Bazaar")
	assert.Equal(t, "Market/Bazaar", child.String())
	assert.Equal(t, "Bazaar", child.Leaf())
	assert.Equal(t, "Market", p.String(), "Child does not alias the parent")

	parent, ok := child.Parent()
	require.True(t, ok)
	assert.True(t, parent.Equal(p))

	_, ok = p.Parent()
	assert.False(t, ok)
}
