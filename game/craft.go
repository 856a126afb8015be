package game

import "golang.org/x/exp/rand"

// Craft is a single-player resource game used as the reference rule set.
// Each turn the player gathers one of three raw materials, crafts them into
// tools or trade goods, or sells goods for score. Gathering is stochastic:
// a lucky gather yields a double haul. The game ends after MaxTurns moves
// and the reward is the normalized final score.
const (
	GatherWood Move = iota
	GatherStone
	GatherFiber
	CraftTool
	CraftGood
	Sell

	craftActions = 6
)

const (
	luckyChance  = 0.3 // probability a gather yields two units
	basePrice    = 3   // score per good sold, before the tool bonus
	craftFeature = 8
)

// CraftSetting holds the tunable parameters of the craft rule set.
type CraftSetting struct {
	MaxTurns int `yaml:"max_turns"`
}

type CraftRules struct {
	setting CraftSetting
}

func NewCraftRules(setting CraftSetting) *CraftRules {
	if setting.MaxTurns <= 0 {
		setting.MaxTurns = 50
	}
	return &CraftRules{setting: setting}
}

func (r *CraftRules) Initial(rng *rand.Rand) State {
	return &craftState{rules: r}
}

func (r *CraftRules) ActionSpace() int { return craftActions }

func (r *CraftRules) FeatureSize() int { return craftFeature }

type craftState struct {
	rules *CraftRules
	wood  int
	stone int
	fiber int
	tools int
	goods int
	score int
	turn  int
}

func (s *craftState) LegalMoves() []Move {
	if s.Terminated() {
		return nil
	}
	moves := []Move{GatherWood, GatherStone, GatherFiber}
	if s.wood >= 2 && s.stone >= 1 {
		moves = append(moves, CraftTool)
	}
	if s.wood >= 1 && s.fiber >= 2 {
		moves = append(moves, CraftGood)
	}
	if s.goods >= 1 {
		moves = append(moves, Sell)
	}
	return moves
}

func (s *craftState) Play(m Move, rng *rand.Rand) State {
	next := *s
	haul := 1
	if rng.Float64() < luckyChance {
		haul = 2
	}
	switch m {
	case GatherWood:
		next.wood += haul
	case GatherStone:
		next.stone += haul
	case GatherFiber:
		next.fiber += haul
	case CraftTool:
		next.wood -= 2
		next.stone--
		next.tools++
	case CraftGood:
		next.wood--
		next.fiber -= 2
		next.goods++
	case Sell:
		next.goods--
		next.score += basePrice + next.tools
	default:
		panic("craft: unknown move")
	}
	next.turn++
	return &next
}

func (s *craftState) Terminated() bool {
	return s.turn >= s.rules.setting.MaxTurns
}

func (s *craftState) Turn() int { return s.turn }

func (s *craftState) Features() []float32 {
	maxTurns := float32(s.rules.setting.MaxTurns)
	return []float32{
		float32(s.wood) / 10,
		float32(s.stone) / 10,
		float32(s.fiber) / 10,
		float32(s.tools) / 10,
		float32(s.goods) / 10,
		float32(s.score) / maxTurns,
		float32(s.turn) / maxTurns,
		1,
	}
}

// Reward normalizes the score by the turn count: one point per turn is
// already an unrealistically strong game.
func (s *craftState) Reward() float32 {
	reward := float32(s.score) / float32(s.rules.setting.MaxTurns)
	if reward > 1 {
		reward = 1
	}
	return reward
}
