package scoring

import (
	"testing"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/stretchr/testify/suite"
)

type EvaluatorSuite struct {
	suite.Suite
	evaluator *NMJLEvaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.evaluator = NewNMJLEvaluator(nil)
}

func tiles(ts ...string) []model.Tile {
	out := make([]model.Tile, len(ts))
	for i, t := range ts {
		out[i] = model.Tile(t)
	}
	return out
}

func (s *EvaluatorSuite) TestUnknownPattern() {
	_, _, err := s.evaluator.EvaluateHand(tiles("1D", "2D", "3D"), "NO SUCH-9")
	s.ErrorIs(err, model.ErrPatternNotFound)
}

func (s *EvaluatorSuite) TestFullConsecutiveRunMatch() {
	hand := tiles(
		"1D", "2D", "3D", "4D", "5D",
		"6D", "6D", "6D",
		"7D", "7D", "7D",
		"8D", "8D",
	)

	valid, points, err := s.evaluator.EvaluateHand(hand, "CONSECUTIVE RUN-1")
	s.Require().NoError(err)
	s.True(valid)
	s.Equal(13, points)
}

func (s *EvaluatorSuite) TestPartialMatchIsNotValid() {
	// Run and one pung present, second pung and pair missing
	hand := tiles(
		"1D", "2D", "3D", "4D", "5D",
		"6D", "6D", "6D",
		"1B", "1B", "9C", "9B", "2C",
	)

	valid, points, err := s.evaluator.EvaluateHand(hand, "CONSECUTIVE RUN-1")
	s.Require().NoError(err)
	s.False(valid)
	s.Equal(8, points)
}

func (s *EvaluatorSuite) TestTilesAreNotCountedTwice() {
	// Exactly three 5D: one pung claims them, leaving nothing for a kong
	hand := tiles("5D", "5D", "5D")

	_, points, err := s.evaluator.EvaluateHand(hand, "ANY LIKE NUMBERS-1")
	s.Require().NoError(err)
	s.Equal(3, points)
}

func (s *EvaluatorSuite) TestLikeNumbersAcrossSuits() {
	hand := tiles(
		"5D", "5D", "5D", "5D",
		"5C", "5C", "5C", "5C",
		"5B", "5B", "5B",
	)

	_, points, err := s.evaluator.EvaluateHand(hand, "ANY LIKE NUMBERS-1")
	s.Require().NoError(err)
	s.Equal(11, points)
}

func (s *EvaluatorSuite) TestAllPairsIgnoresValues() {
	hand := tiles(
		"1D", "1D", "3C", "3C", "7B", "7B",
		"9D", "9D", "2C", "2C", "4B", "4B",
		"6D", "6D",
	)

	valid, points, err := s.evaluator.EvaluateHand(hand, "ALL PAIRS-1")
	s.Require().NoError(err)
	s.True(valid)
	s.Equal(14, points)
}

func (s *EvaluatorSuite) TestAllPairsOddTileLeftOver() {
	hand := tiles("1D", "1D", "3C", "3C", "7B")

	valid, points, err := s.evaluator.EvaluateHand(hand, "ALL PAIRS-1")
	s.Require().NoError(err)
	s.False(valid)
	s.Equal(4, points)
}

func (s *EvaluatorSuite) TestEmptyHandIsNotValid() {
	valid, points, err := s.evaluator.EvaluateHand(nil, "ALL PAIRS-1")
	s.Require().NoError(err)
	s.False(valid)
	s.Equal(0, points)
}

func (s *EvaluatorSuite) TestUnparseableTilesDoNotMatch() {
	hand := tiles("FL", "north", "JOKER", "5D", "5D")

	_, points, err := s.evaluator.EvaluateHand(hand, "ALL PAIRS-1")
	s.Require().NoError(err)
	s.Equal(2, points)
}

func (s *EvaluatorSuite) TestBestPatternsPrefersHighestScore() {
	hand := tiles(
		"1D", "2D", "3D", "4D", "5D",
		"6D", "6D", "6D",
		"7D", "7D", "7D",
		"8D", "8D",
	)

	names, score := s.evaluator.BestPatterns(hand)
	s.Equal(13, score)
	s.Contains(names, "CONSECUTIVE RUN-1")
}

func (s *EvaluatorSuite) TestBestPatternsEmptyHand() {
	names, score := s.evaluator.BestPatterns(nil)
	s.Empty(names)
	s.Equal(0, score)
}

func (s *EvaluatorSuite) TestLargeGroupsClaimBeforePairs() {
	// 2468-1 needs kong of 4; with exactly four 4D the pair of 2 must
	// not steal from it
	hand := tiles(
		"2D", "2D", "2D",
		"4D", "4D", "4D", "4D",
		"6D", "6D", "6D",
		"8D", "8D", "8D", "8D",
	)

	_, points, err := s.evaluator.EvaluateHand(hand, "2468-1")
	s.Require().NoError(err)
	s.Equal(14, points)
}
