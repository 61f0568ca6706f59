package compile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
)

var (
	// ErrUnknownTemplate is returned for a game type with no template.
	ErrUnknownTemplate = errors.New("unknown game template")
	// ErrUnknownComplexity is returned for a complexity a template lacks.
	ErrUnknownComplexity = errors.New("unknown complexity")
)

// gameTemplates holds the sentences of each starter game, per complexity.
// Higher complexities repeat the lower ones and add to them.
var gameTemplates = map[string]map[model.Difficulty][]string{
	"platformer": {
		model.Beginner: {
			"when right arrow key pressed move right 5 steps",
			"when left arrow key pressed move left 5 steps",
			"when space key pressed jump",
		},
		model.Intermediate: {
			"when right arrow key pressed move right 5 steps",
			"when left arrow key pressed move left 5 steps",
			"when space key pressed jump",
			"when space key pressed play sound",
			"when flag clicked show",
		},
		model.Advanced: {
			"when right arrow key pressed move right 5 steps",
			"when left arrow key pressed move left 5 steps",
			"when space key pressed jump",
			"when space key pressed play sound",
			"when flag clicked show",
			"when sprite clicked change color",
			"when h key pressed hide",
		},
	},
	"maze": {
		model.Beginner: {
			"when up arrow key pressed move up 10 steps",
			"when down arrow key pressed move down 10 steps",
			"when left arrow key pressed move left 10 steps",
			"when right arrow key pressed move right 10 steps",
		},
		model.Intermediate: {
			"when up arrow key pressed move up 10 steps",
			"when down arrow key pressed move down 10 steps",
			"when left arrow key pressed move left 10 steps",
			"when right arrow key pressed move right 10 steps",
			"when flag clicked say find the exit",
		},
		model.Advanced: {
			"when up arrow key pressed move up 10 steps",
			"when down arrow key pressed move down 10 steps",
			"when left arrow key pressed move left 10 steps",
			"when right arrow key pressed move right 10 steps",
			"when flag clicked say find the exit",
			"when sprite clicked play sound",
			"when r key pressed rotate right",
		},
	},
}

// TemplateNames returns the available game types in lexical order.
func TemplateNames() []string {
	names := make([]string, 0, len(gameTemplates))
	for n := range gameTemplates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TemplateText returns the description a game template compiles from. An
// empty complexity selects beginner.
func TemplateText(game string, complexity model.Difficulty) (string, error) {
	game = strings.ToLower(strings.TrimSpace(game))
	levels, ok := gameTemplates[game]
	if !ok {
		return "", fmt.Errorf("%w %q (available: %s)", ErrUnknownTemplate, game, strings.Join(TemplateNames(), ", "))
	}
	if complexity == "" {
		complexity = model.Beginner
	}
	lines, ok := levels[complexity]
	if !ok {
		return "", fmt.Errorf("%w %q for %s (available: beginner, intermediate, advanced)", ErrUnknownComplexity, complexity, game)
	}
	return fmt.Sprintf("create a %s game (%s): %s", game, complexity, strings.Join(lines, " and ")), nil
}

// Template compiles the starter program for a game type.
func (c *Compiler) Template(game string, complexity model.Difficulty, format string) (*Result, error) {
	text, err := TemplateText(game, complexity)
	if err != nil {
		return nil, err
	}
	c.log.Debug("compiling template", "game", game, "complexity", complexity)
	return c.Compile(text, format)
}
