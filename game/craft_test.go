package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestCraftLegalMoves(t *testing.T) {
	t.Run("initial state only allows gathering", func(t *testing.T) {
		rules := NewCraftRules(CraftSetting{MaxTurns: 10})
		state := rules.Initial(rand.New(rand.NewSource(1)))

		moves := state.LegalMoves()

		require.ElementsMatch(t, []Move{GatherWood, GatherStone, GatherFiber}, moves,
			"No crafting or selling should be possible without resources")
	})

	t.Run("crafting unlocks once resources suffice", func(t *testing.T) {
		state := &craftState{rules: NewCraftRules(CraftSetting{MaxTurns: 10}), wood: 2, stone: 1, fiber: 2, goods: 1}

		moves := state.LegalMoves()

		require.Contains(t, moves, CraftTool)
		require.Contains(t, moves, CraftGood)
		require.Contains(t, moves, Sell)
	})

	t.Run("terminated state has no moves", func(t *testing.T) {
		state := &craftState{rules: NewCraftRules(CraftSetting{MaxTurns: 3}), turn: 3}

		require.True(t, state.Terminated())
		require.Empty(t, state.LegalMoves())
	})
}

func TestCraftPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("play does not mutate the receiver", func(t *testing.T) {
		rules := NewCraftRules(CraftSetting{MaxTurns: 10})
		state := rules.Initial(rng)

		next := state.Play(GatherWood, rng)

		require.Equal(t, 0, state.Turn(), "Original state should be unchanged")
		require.Equal(t, 1, next.Turn())
	})

	t.Run("selling pays the tool bonus", func(t *testing.T) {
		state := &craftState{rules: NewCraftRules(CraftSetting{MaxTurns: 10}), goods: 1, tools: 2}

		next := state.Play(Sell, rng).(*craftState)

		require.Equal(t, basePrice+2, next.score)
		require.Equal(t, 0, next.goods)
	})

	t.Run("gathering yields one or two units", func(t *testing.T) {
		rules := NewCraftRules(CraftSetting{MaxTurns: 10})
		state := rules.Initial(rng)

		for i := 0; i < 100; i++ {
			next := state.Play(GatherStone, rng).(*craftState)
			require.Contains(t, []int{1, 2}, next.stone)
		}
	})
}

func TestCraftReward(t *testing.T) {
	t.Run("reward is the normalized score", func(t *testing.T) {
		state := &craftState{rules: NewCraftRules(CraftSetting{MaxTurns: 10}), score: 5, turn: 10}

		require.InDelta(t, 0.5, state.Reward(), 1e-6)
	})

	t.Run("reward is clamped to one", func(t *testing.T) {
		state := &craftState{rules: NewCraftRules(CraftSetting{MaxTurns: 10}), score: 99, turn: 10}

		require.Equal(t, float32(1), state.Reward())
	})
}

func TestCraftFeatures(t *testing.T) {
	rules := NewCraftRules(CraftSetting{MaxTurns: 10})
	state := rules.Initial(rand.New(rand.NewSource(7)))

	features := state.Features()

	require.Len(t, features, rules.FeatureSize())
	require.Equal(t, float32(1), features[len(features)-1], "Last feature is a constant bias plane")
}
