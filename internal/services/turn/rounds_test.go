package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmahjong/lounge-go/internal/model"
)

func TestRoundForTurn(t *testing.T) {
	cases := map[int]int{
		1:  1,
		4:  1,
		5:  2,
		8:  2,
		9:  3,
		13: 4,
		16: 4,
		17: 5,
	}
	for turn, round := range cases {
		assert.Equal(t, round, RoundForTurn(turn), "turn %d", turn)
	}
	assert.Equal(t, 1, RoundForTurn(0))
	assert.Equal(t, 1, RoundForTurn(-3))
}

func TestWindForRound(t *testing.T) {
	assert.Equal(t, model.WindEast, WindForRound(1))
	assert.Equal(t, model.WindSouth, WindForRound(2))
	assert.Equal(t, model.WindWest, WindForRound(3))
	assert.Equal(t, model.WindNorth, WindForRound(4))
	// Cycles past a full game
	assert.Equal(t, model.WindEast, WindForRound(5))
	assert.Equal(t, model.WindEast, WindForRound(0))
}
