package evaluation

import (
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/saurus-othello/saurus/board"
)

type evalCase struct {
	Name     string   `yaml:"name"`
	Board    []string `yaml:"board"`
	Side     string   `yaml:"side"`
	GameOver bool     `yaml:"gameover"`
	Mobility *int     `yaml:"mobility"`
	Eval     int      `yaml:"eval"`
}

func loadCases(t *testing.T) []evalCase {
	t.Helper()
	f, err := os.Open("testdata/positions.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var cases []evalCase
	if err := yaml.NewDecoder(f).Decode(&cases); err != nil {
		t.Fatal(err)
	}
	return cases
}

func (c evalCase) position(t *testing.T) board.Position {
	t.Helper()
	pos, err := board.FromString(strings.Join(c.Board, "") + " " + c.Side)
	if err != nil {
		t.Fatalf("%s: %v", c.Name, err)
	}
	return pos
}

func TestEvaluateFixtures(t *testing.T) {
	is := is.New(t)
	cases := loadCases(t)
	is.True(len(cases) > 0)
	for _, c := range cases {
		pos := c.position(t)
		is.Equal(pos.GameOver(), c.GameOver) // game over flag
		is.Equal(Evaluate(pos), c.Eval)      // evaluation
		is.Equal(Default.Evaluate(pos), c.Eval)
		if c.Mobility != nil {
			is.Equal(Mobility(pos), *c.Mobility)
		}
	}
}

func TestMobilityAntisymmetricUnderRoleSwap(t *testing.T) {
	is := is.New(t)
	for _, c := range loadCases(t) {
		pos := c.position(t)
		is.Equal(Mobility(pos.SwapColors()), -Mobility(pos))
	}
	// And along a real game.
	pos := board.StartPosition()
	for i := 0; i < 20 && !pos.GameOver(); i++ {
		is.Equal(Mobility(pos.SwapColors()), -Mobility(pos))
		pos = pos.Apply(pos.LegalMoves()[i%pos.LegalMoveCount()])
	}
}

func TestMobilityIgnoresWhoseTurnItIs(t *testing.T) {
	is := is.New(t)
	pos := board.StartPosition()
	for i := 0; i < 12 && !pos.GameOver(); i++ {
		is.Equal(Mobility(pos), Mobility(pos.WithSideToMove(!pos.BlackTurn())))
		moves := pos.LegalMoves()
		pos = pos.Apply(moves[len(moves)-1])
	}
}

func TestTerminalDominatesMobility(t *testing.T) {
	is := is.New(t)
	// The smallest decisive finish outweighs the largest possible mobility
	// gap on an 8x8 board.
	is.True(Hard(board.NewPosition(0b11, 0b100, true)) > 64)

	for _, c := range loadCases(t) {
		pos := c.position(t)
		if !pos.GameOver() {
			m := Soft(pos)
			is.True(m < DiskWeight && m > -DiskWeight)
		}
	}
}

func TestFuncAdapter(t *testing.T) {
	is := is.New(t)
	var e Evaluator = Func(func(board.Position) int { return 7 })
	is.Equal(e.Evaluate(board.StartPosition()), 7)
}
