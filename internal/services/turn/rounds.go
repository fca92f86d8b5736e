package turn

import "github.com/openmahjong/lounge-go/internal/model"

// Dead-reckoning turn math, centralized so the start and advance paths
// can never disagree about it.

// RoundForTurn derives the round number from a 1-based turn number:
// four turns per round.
func RoundForTurn(turnNumber int) int {
	if turnNumber < 1 {
		return 1
	}
	return (turnNumber-1)/len(model.WindOrder) + 1
}

// WindForRound derives the round wind, cycling from east
func WindForRound(round int) model.Wind {
	if round < 1 {
		round = 1
	}
	return model.WindOrder[(round-1)%len(model.WindOrder)]
}
