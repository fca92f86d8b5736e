package model

// CharlestonPhase is a sub-phase of the charleston tile-exchange ritual
type CharlestonPhase string

const (
	CharlestonRight    CharlestonPhase = "right"
	CharlestonAcross   CharlestonPhase = "across"
	CharlestonLeft     CharlestonPhase = "left"
	CharlestonOptional CharlestonPhase = "optional"
	CharlestonComplete CharlestonPhase = "complete"
)

// CharlestonPassSize is the exact number of tiles passed per sub-phase
const CharlestonPassSize = 3

// CharlestonOrder returns the sub-phase sequence for the given seated
// player count. Three-player games skip "across": a 3-seat rotation has
// no well-defined across position.
func CharlestonOrder(playerCount int) []CharlestonPhase {
	if playerCount == 3 {
		return []CharlestonPhase{CharlestonRight, CharlestonLeft, CharlestonOptional, CharlestonComplete}
	}
	return []CharlestonPhase{CharlestonRight, CharlestonAcross, CharlestonLeft, CharlestonOptional, CharlestonComplete}
}

// NextCharlestonPhase returns the sub-phase following current for the
// given player count, or CharlestonComplete when the order is exhausted.
func NextCharlestonPhase(current CharlestonPhase, playerCount int) CharlestonPhase {
	order := CharlestonOrder(playerCount)
	for i, p := range order {
		if p == current && i+1 < len(order) {
			return order[i+1]
		}
	}
	return CharlestonComplete
}
