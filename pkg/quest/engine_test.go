package quest

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeState implements StateView and RewardSink for testing
type fakeState struct {
	emails    map[string]bool
	inventory world.Inventory
	lastNPC   string
	defeated  map[string]bool
	resources map[string]int

	tokens     uint
	experience uint
	rewardAdds int
}

func newFakeState() *fakeState {
	return &fakeState{
		emails:    map[string]bool{},
		defeated:  map[string]bool{},
		resources: map[string]int{},
	}
}

func (f *fakeState) EmailRead(name string) bool {
	for k, read := range f.emails {
		if names.Equal(k, name) {
			return read
		}
	}
	return false
}

func (f *fakeState) AllEmailsRead() bool {
	for _, read := range f.emails {
		if !read {
			return false
		}
	}
	return true
}

func (f *fakeState) ItemCount(name string) uint     { return f.inventory.Count(name) }
func (f *fakeState) LastSpokenNPC() string          { return f.lastNPC }
func (f *fakeState) EnemyDefeated(name string) bool { return f.defeated[names.Normalize(name)] }
func (f *fakeState) ResourceCount(name string) int  { return f.resources[names.Normalize(name)] }
func (f *fakeState) AddItem(item world.Item)        { f.inventory.Add(item); f.rewardAdds++ }
func (f *fakeState) AddTokens(n uint)               { f.tokens += n }
func (f *fakeState) AddExperience(n uint)           { f.experience += n }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewCatalog([]Definition{
		{
			Name:       "Read Email",
			Slug:       "initialQuest",
			Objectives: []Objective{{Kind: KindReadEmail, Target: Targets{AllUnread}}},
			Rewards: Rewards{
				Items:      world.Inventory{{Name: "Health Potion", Quantity: 2}},
				Tokens:     10,
				Experience: 50,
			},
		},
		{
			Name: "Meet Athena",
			Slug: "meetAthena",
			Objectives: []Objective{
				{Kind: KindSpeakToCharacter, Target: Targets{"Athena"}},
				{Kind: KindCollect, Target: Targets{"Key"}, TargetType: TargetItem},
			},
		},
		{
			Name:       "Broken",
			Slug:       "broken",
			Objectives: []Objective{{Kind: "teleport", Target: Targets{"moon"}}},
		},
	})
	require.NoError(t, err)
	return cat
}

func TestEngine_Activate(t *testing.T) {
	e := NewEngine(testCatalog(t), testLogger())
	var log Log

	inst, err := e.Activate(&log, "read email")
	require.NoError(t, err)
	assert.True(t, inst.Active)
	assert.False(t, inst.Completed)
	require.Len(t, log.Instances, 1)

	// by slug, already active: same instance, no duplicate
	again, err := e.Activate(&log, "initialQuest")
	require.NoError(t, err)
	assert.Same(t, inst, again)
	assert.Len(t, log.Instances, 1)

	_, err = e.Activate(&log, "Slay the Dragon")
	assert.ErrorIs(t, err, ErrUnknownQuest)
	assert.True(t, world.IsContentError(err))
}

func TestEngine_ActivateCopiesDefinition(t *testing.T) {
	cat := testCatalog(t)
	e := NewEngine(cat, testLogger())
	var log Log

	inst, err := e.Activate(&log, "Read Email")
	require.NoError(t, err)
	inst.Objectives[0].Target[0] = "mutated"
	inst.Rewards.Items[0].Quantity = 99

	def, ok := cat.Get("Read Email")
	require.True(t, ok)
	assert.Equal(t, AllUnread, def.Objectives[0].Target[0])
	assert.Equal(t, uint(2), def.Rewards.Items[0].Quantity)
}

func TestEngine_ReadEmailScenario(t *testing.T) {
	e := NewEngine(testCatalog(t), testLogger())
	state := newFakeState()
	state.emails["Welcome to Odyssey"] = false
	state.emails["Patch Notes"] = false

	var log Log
	_, err := e.Activate(&log, "Read Email")
	require.NoError(t, err)

	done, err := e.CheckAll(&log, state, state)
	require.NoError(t, err)
	assert.Empty(t, done)
	assert.True(t, log.Instances[0].Active)
	assert.False(t, log.Instances[0].Completed)

	state.emails["Welcome to Odyssey"] = true
	done, _ = e.CheckAll(&log, state, state)
	assert.Empty(t, done, "one unread email left")

	state.emails["Patch Notes"] = true
	done, err = e.CheckAll(&log, state, state)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, log.Instances[0].Completed)
	assert.Equal(t, uint(2), state.inventory.Count("health potion"))
	assert.Equal(t, uint(10), state.tokens)
	assert.Equal(t, uint(50), state.experience)

	// terminal: repeated checks never re-grant
	for i := 0; i < 3; i++ {
		done, err = e.CheckAll(&log, state, state)
		require.NoError(t, err)
		assert.Empty(t, done)
	}
	assert.Equal(t, 1, state.rewardAdds)
	assert.Equal(t, uint(10), state.tokens)

	_, err = e.Activate(&log, "Read Email")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestEngine_AllObjectivesRequired(t *testing.T) {
	e := NewEngine(testCatalog(t), testLogger())
	state := newFakeState()
	var log Log
	_, err := e.Activate(&log, "Meet Athena")
	require.NoError(t, err)

	state.lastNPC = "the athena"
	done, _ := e.CheckAll(&log, state, state)
	assert.Empty(t, done)
	d, total := log.Instances[0].Progress()
	assert.Equal(t, 1, d)
	assert.Equal(t, 2, total)
	assert.Equal(t, "In Progress", log.Instances[0].Status())

	state.inventory.Add(world.Item{Name: "Key", Quantity: 1})
	done, _ = e.CheckAll(&log, state, state)
	require.Len(t, done, 1)
	assert.Equal(t, "Completed", log.Instances[0].Status())
}

func TestEngine_UnknownObjectiveIsContentError(t *testing.T) {
	e := NewEngine(testCatalog(t), testLogger())
	state := newFakeState()
	var log Log
	_, err := e.Activate(&log, "Broken")
	require.NoError(t, err)

	done, err := e.CheckAll(&log, state, state)
	assert.Empty(t, done)
	assert.ErrorIs(t, err, ErrNoPredicate)
	assert.True(t, world.IsContentError(err))
	assert.True(t, log.Instances[0].Active, "instance stays active")

	assert.Contains(t, e.Problems(), `quest "Broken" objective 0: unknown type "teleport"`)

	e.Register("teleport", func(Objective, StateView) (bool, error) { return true, nil })
	done, err = e.CheckAll(&log, state, state)
	require.NoError(t, err)
	assert.Len(t, done, 1)
}

func TestPredicates(t *testing.T) {
	state := newFakeState()
	state.emails["A"] = true
	state.emails["B"] = false
	state.inventory.Add(world.Item{Name: "Ore", Quantity: 2})
	state.defeated["goblin"] = true
	state.resources["wood"] = 7
	state.lastNPC = "Athena"

	tests := []struct {
		name     string
		obj      Objective
		expected bool
		wantErr  bool
	}{
		{name: "single email read", obj: Objective{Kind: KindReadEmail, Target: Targets{"a"}}, expected: true},
		{name: "list with unread", obj: Objective{Kind: KindReadEmail, Target: Targets{"A", "B"}}},
		{name: "all unread sentinel", obj: Objective{Kind: KindReadEmail, Target: Targets{AllUnread}}},
		{name: "missing email", obj: Objective{Kind: KindReadEmail, Target: Targets{"C"}}},
		{name: "speak match", obj: Objective{Kind: KindSpeakToCharacter, Target: Targets{"ATHENA"}}, expected: true},
		{name: "speak other", obj: Objective{Kind: KindSpeakToCharacter, Target: Targets{"Hermes"}}},
		{name: "defeated", obj: Objective{Kind: KindDefeatEnemy, Target: Targets{"Goblin"}}, expected: true},
		{name: "not defeated", obj: Objective{Kind: KindDefeatEnemy, Target: Targets{"Troll"}}},
		{name: "collect item", obj: Objective{Kind: KindCollect, Target: Targets{"ore"}, TargetType: TargetItem}, expected: true},
		{name: "collect item amount", obj: Objective{Kind: KindCollect, Target: Targets{"ore"}, TargetType: TargetItem, Amount: 3}},
		{name: "collect resource", obj: Objective{Kind: KindCollect, Target: Targets{"wood"}, TargetType: TargetResource, Amount: 5}, expected: true},
		{name: "collect resource short", obj: Objective{Kind: KindCollect, Target: Targets{"wood"}, TargetType: TargetResource, Amount: 8}},
		{name: "fetch alias", obj: Objective{Kind: KindFetch, Target: Targets{"Ore"}}, expected: true},
		{name: "bad target type", obj: Objective{Kind: KindCollect, Target: Targets{"x"}, TargetType: "vibes"}, wantErr: true},
		{name: "no target", obj: Objective{Kind: KindDefeatEnemy}, wantErr: true},
	}

	e := NewEngine(nil, testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := e.predicates[tt.obj.Kind]
			require.NotNil(t, pred)
			got, err := pred(tt.obj, state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadObjective)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTargets_JSON(t *testing.T) {
	var obj Objective
	require.NoError(t, json.Unmarshal([]byte(`{"type":"readEmail","target":"all-unread"}`), &obj))
	assert.Equal(t, Targets{AllUnread}, obj.Target)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"readEmail","target":["A","B"]}`), &obj))
	assert.Equal(t, Targets{"A", "B"}, obj.Target)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"readEmail","target":5}`), &obj))

	data, err := json.Marshal(Targets{"solo"})
	require.NoError(t, err)
	assert.Equal(t, `"solo"`, string(data))
}

func TestNewCatalog_Duplicates(t *testing.T) {
	_, err := NewCatalog([]Definition{{Name: "A", Slug: "a1"}, {Name: "the a", Slug: "a2"}})
	assert.Error(t, err)

	_, err = NewCatalog([]Definition{{Slug: "nameless"}})
	assert.Error(t, err)
}

func TestLog_CloneIsDeep(t *testing.T) {
	e := NewEngine(testCatalog(t), testLogger())
	var log Log
	_, err := e.Activate(&log, "Read Email")
	require.NoError(t, err)

	c := log.Clone()
	c.Instances[0].Completed = true
	c.Instances[0].Objectives[0].Completed = true

	assert.False(t, log.Instances[0].Completed)
	assert.False(t, log.Instances[0].Objectives[0].Completed)
}
