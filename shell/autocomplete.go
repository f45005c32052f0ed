package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/config"
	"github.com/saurus-othello/saurus/move"
)

// ShellCompleter completes command names, options and, for `play`, the
// legal moves of the current position.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"position": {
		Options: []string{"-moves"},
		Args:    []string{board.StartPosString},
	},
	"go": {
		Options: []string{"-depth", "-log", "-yaml", "-wait"},
	},
	"engine": {
		Args: []string{config.EngineAlphaBeta, config.EngineRandom},
	},
	"help": {
		Args: []string{"position", "play", "undo", "show", "moves", "eval",
			"go", "stop", "engine", "about", "exit"},
	},
}

var commandNames = []string{
	"help", "about", "position", "play", "undo", "show", "moves", "eval",
	"go", "stop", "engine", "exit", "bye",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "log", "yaml", "wait":
				completions = boolValues
			}
		}

		if cmdName == "play" && completions == nil {
			completions = c.legalMoves(strings.ToUpper(prefix) != prefix)
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

func (c *ShellCompleter) legalMoves(lower bool) []string {
	return lo.Map(c.sc.engine.Position().LegalMoves(), func(m move.Move, _ int) string {
		if lower {
			return strings.ToLower(m.String())
		}
		return m.String()
	})
}
