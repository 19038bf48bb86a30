package command

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/odyssey-engine/pkg/interact"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testWorld() *world.Graph {
	return &world.Graph{
		Name: "Avalonia",
		Locations: []*world.Location{
			{
				Name:        "Market",
				Description: "A bustling market.",
				Paths:       map[string]string{"north": "Old Town"},
				Items:       world.Inventory{{Name: "Coin", Quantity: 5}},
				Containers: []*world.Container{
					{Name: "Chest", Contains: world.Inventory{{Name: "Key", Quantity: 1}}},
				},
				NPCs: []*world.NPC{
					{
						Name:   "Athena",
						Dialog: []string{"Greetings."},
						Interactions: []world.Interaction{
							{Type: world.InteractQuest, Quest: "Meet Athena"},
							{Type: world.InteractQuest, Quest: "Lost Quest"},
						},
					},
				},
			},
			{Name: "Old Town", Description: "Cobbled streets.", MainEntry: true},
		},
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *player.State) {
	t.Helper()
	cat, err := quest.NewCatalog([]quest.Definition{
		{
			Name:       "Read Email",
			Objectives: []quest.Objective{{Kind: quest.KindReadEmail, Target: quest.Targets{quest.AllUnread}}},
			Rewards:    quest.Rewards{Items: world.Inventory{{Name: "Health Potion", Quantity: 1}}, Tokens: 10},
		},
		{
			Name:       "Meet Athena",
			Objectives: []quest.Objective{{Kind: quest.KindSpeakToCharacter, Target: quest.Targets{"Athena"}}},
			Rewards:    quest.Rewards{Experience: 5},
		},
		{
			Name:       "Find the Key",
			Objectives: []quest.Objective{{Kind: quest.KindCollect, Target: quest.Targets{"Key"}, TargetType: quest.TargetItem}},
		},
	})
	require.NoError(t, err)

	p := player.New("tester")
	p.Location = world.NewPath("Avalonia", "Market")
	p.AddEmail(player.Email{Name: "Welcome to Odyssey", Sender: "Odyssey Admin", Description: "Hello!"})
	p.AddEmail(player.Email{Name: "Patch Notes", Sender: "Odyssey Admin"})

	qe := quest.NewEngine(cat, testLogger())
	_, err = qe.Activate(&p.Quests, "Read Email")
	require.NoError(t, err)

	engine := interact.NewEngine(testWorld(), p, nil, testLogger())
	return NewDispatcher(engine, qe, testLogger()), p
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
	}{
		{input: "  Fast   Travel to OdysseyVR ", expected: Command{Action: ActFastTravel, Target: "odysseyvr"}},
		{input: "talk to Athena", expected: Command{Action: ActTalk, Target: "athena"}},
		{input: "speak to the merchant", expected: Command{Action: ActTalk, Target: "the merchant"}},
		{input: "move to Old Town", expected: Command{Action: ActMove, Target: "old town"}},
		{input: "go to bazaar", expected: Command{Action: ActMove, Target: "bazaar"}},
		{input: "move vault", expected: Command{Action: ActMove, Target: "vault"}},
		{input: "take key", expected: Command{Action: ActTake, Item: "key", Quantity: 1}},
		{input: "take 3 coin", expected: Command{Action: ActTake, Item: "coin", Quantity: 3}},
		{input: "take 2 apple from the merchant", expected: Command{Action: ActTake, Item: "apple", Target: "the merchant", Quantity: 2}},
		{input: "give 2 health potion to chest", expected: Command{Action: ActGive, Item: "health potion", Target: "chest", Quantity: 2}},
		{input: "give sword", expected: Command{Action: ActGive, Item: "sword", Quantity: 1}},
		{input: "examine old key", expected: Command{Action: ActExamine, Item: "old key"}},
		{input: "open chest", expected: Command{Action: ActOpen, Target: "chest"}},
		{input: "close", expected: Command{Action: ActClose}},
		{input: "close chest", expected: Command{Action: ActClose, Target: "chest"}},
		{input: "look", expected: Command{Action: ActLook}},
		{input: "Look Around", expected: Command{Action: ActLook}},
		{input: "where am i", expected: Command{Action: ActWhereAmI}},
		{input: "whereami", expected: Command{Action: ActWhereAmI}},
		{input: "help", expected: Command{Action: ActHelp}},
		{input: "i", expected: Command{Action: ActInventory}},
		{input: "quests", expected: Command{Action: ActQuests}},
		{input: "read welcome to odyssey", expected: Command{Action: ActRead, Target: "welcome to odyssey"}},
		{input: "notes", expected: Command{Action: ActNotes}},
		{input: "Fast Travel", expected: Command{Action: ActTravelList}},
		{input: "travel", expected: Command{Action: ActTravelList}},
		{input: "dance wildly", expected: Command{}},
		{input: "take", expected: Command{}},
		{input: "   ", expected: Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestDispatch_Unrecognized(t *testing.T) {
	d, _ := newTestDispatcher(t)
	res := d.Dispatch(context.Background(), "dance wildly")
	assert.Equal(t, "Unrecognized command.", res.Text)
	assert.False(t, res.Handled)
	assert.False(t, res.Mutated)
	assert.NoError(t, res.Err)
}

func TestDispatch_OpenContainerRestriction(t *testing.T) {
	d, p := newTestDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, "open chest")
	require.NoError(t, res.Err)

	for _, input := range []string{"look", "move to old town", "where am i", "talk to athena", "inventory", "quests"} {
		res = d.Dispatch(ctx, input)
		assert.Equal(t, restrictedText, res.Text, input)
		assert.False(t, res.Mutated, input)
	}
	assert.Equal(t, "Market", p.Location.Leaf())

	for _, input := range []string{"examine key", "help", "take key from chest", "give key to chest", "open chest"} {
		res = d.Dispatch(ctx, input)
		assert.NotEqual(t, restrictedText, res.Text, input)
		assert.NoError(t, res.Err, input)
	}

	res = d.Dispatch(ctx, "close")
	require.NoError(t, res.Err)
	res = d.Dispatch(ctx, "move to old town")
	require.NoError(t, res.Err)
	assert.Equal(t, "Old Town", p.Location.Leaf())
}

func TestDispatch_ReadEmailQuest(t *testing.T) {
	d, p := newTestDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, "read welcome to odyssey")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Text, "From: Odyssey Admin")
	assert.NotContains(t, res.Text, "Quest completed")
	assert.True(t, res.Mutated)

	res = d.Dispatch(ctx, "read patch notes")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Text, "Quest completed: Read Email! Rewards: Health Potion (x1), 10 tokens.")
	assert.Equal(t, player.DefaultTokens+10, p.Tokens)

	// reading again does not grant again
	res = d.Dispatch(ctx, "read patch notes")
	assert.NotContains(t, res.Text, "Quest completed")
	assert.Equal(t, player.DefaultTokens+10, p.Tokens)
	assert.Equal(t, uint(1), p.ItemCount("health potion"))

	res = d.Dispatch(ctx, "read spam")
	assert.ErrorIs(t, res.Err, player.ErrEmailNotFound)
	assert.False(t, res.Mutated)

	assert.Equal(t, "Read Email: Completed", d.Dispatch(ctx, "quests").Text)
}

func TestDispatch_TalkActivatesOfferedQuests(t *testing.T) {
	d, p := newTestDispatcher(t)

	res := d.Dispatch(context.Background(), "talk to athena")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Text, "Athena: Greetings.")
	assert.Contains(t, res.Text, "New quest: Meet Athena")
	assert.Contains(t, res.Text, "Quest completed: Meet Athena! Rewards: 5 experience.")
	assert.Equal(t, uint(5), p.Experience)

	inst := p.Quests.Find("meet athena")
	require.NotNil(t, inst)
	assert.True(t, inst.Completed)
	assert.Nil(t, p.Quests.Find("lost quest"), "unknown offered quest is skipped")

	res = d.Dispatch(context.Background(), "talk to athena")
	assert.NotContains(t, res.Text, "New quest")
	assert.Equal(t, uint(5), p.Experience)
}

func TestDispatch_ReadOnlyQueriesSkipQuestCheck(t *testing.T) {
	d, p := newTestDispatcher(t)
	ctx := context.Background()
	_, err := d.quests.Activate(&p.Quests, "Find the Key")
	require.NoError(t, err)

	p.AddItem(world.Item{Name: "Key", Quantity: 1})
	for _, input := range []string{"look", "inventory", "where am i", "help", "quests", "examine key"} {
		res := d.Dispatch(ctx, input)
		assert.False(t, res.Mutated, input)
		assert.NotContains(t, res.Text, "Quest completed", input)
	}
	assert.False(t, p.Quests.Find("Find the Key").Completed)

	res := d.Dispatch(ctx, "take 2 coin")
	require.NoError(t, res.Err)
	assert.True(t, res.Mutated)
	assert.Contains(t, res.Text, "Quest completed: Find the Key!")
}

func TestDispatch_FailedMutationSkipsQuestCheck(t *testing.T) {
	d, p := newTestDispatcher(t)
	_, err := d.quests.Activate(&p.Quests, "Find the Key")
	require.NoError(t, err)
	p.AddItem(world.Item{Name: "Key", Quantity: 1})

	res := d.Dispatch(context.Background(), "take key from chest")
	assert.ErrorIs(t, res.Err, interact.ErrNotOpen)
	assert.False(t, res.Mutated)
	assert.NotContains(t, res.Text, "Quest completed")
}

func TestExecute_StructuredCommand(t *testing.T) {
	d, p := newTestDispatcher(t)
	res := d.Execute(context.Background(), Command{Action: ActTake, Item: "Coin", Quantity: 4})
	require.NoError(t, res.Err)
	assert.Equal(t, uint(4), p.ItemCount("coin"))

	res = d.Execute(context.Background(), Command{Action: ActMove, Target: "north"})
	assert.ErrorIs(t, res.Err, interact.ErrNoSuchPath)
	assert.True(t, res.Handled)
}

func TestDispatch_NotesAndTravelList(t *testing.T) {
	d, p := newTestDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, "notes")
	assert.Equal(t, "You have no notes.", res.Text)
	res = d.Dispatch(ctx, "fast travel")
	assert.Equal(t, "You don't know any fast travel destinations.", res.Text)

	p.AddNote(player.Note{Name: "Enchanted Cave", Description: "Remember to check the enchanted cave."})
	p.AddFastTravel(player.FastTravelLocation{Location: player.Destination{Name: "Lobby"}, WorldName: "OdysseyVR"})

	res = d.Dispatch(ctx, "notes")
	require.NoError(t, res.Err)
	assert.Equal(t, ActNotes, res.Action)
	assert.False(t, res.Mutated)
	assert.Contains(t, res.Text, "Enchanted Cave: Remember to check the enchanted cave.")

	res = d.Dispatch(ctx, "fast travel")
	require.NoError(t, res.Err)
	assert.False(t, res.Mutated)
	assert.Equal(t, "Fast travel destinations:\nOdysseyVR\n- Lobby", res.Text)
}

func TestDispatch_QuestLogStatus(t *testing.T) {
	d, p := newTestDispatcher(t)
	ctx := context.Background()
	_, err := d.quests.Activate(&p.Quests, "Find the Key")
	require.NoError(t, err)

	assert.Equal(t, "Read Email: In Progress\nFind the Key: In Progress", d.Dispatch(ctx, "quests").Text)

	p.Quests.Instances[0].Active = false
	assert.Equal(t, "Read Email: Inactive\nFind the Key: In Progress", d.Dispatch(ctx, "quests").Text)
}
