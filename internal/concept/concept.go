// Package concept explains block programming ideas to learners at three
// reading levels.
package concept

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
)

// ErrUnknownConcept is returned by Explain for concepts without an entry.
var ErrUnknownConcept = errors.New("unknown concept")

// Explanation is the answer for one concept at one level.
type Explanation struct {
	Concept  string           `json:"concept"`
	Level    model.Difficulty `json:"level"`
	Text     string           `json:"explanation"`
	Examples []string         `json:"examples"`
	Related  []string         `json:"related_concepts"`
	TryNext  string           `json:"try_next"`
}

type entry struct {
	levels   map[model.Difficulty]string
	examples []string
	related  []string
}

var entries = map[string]entry{
	"loops": {
		levels: map[model.Difficulty]string{
			model.Beginner:     "Loops are like doing something over and over again! Like when you brush your teeth, you move the brush back and forth many times. In Scratch, we use the 'forever' block to make things repeat!",
			model.Intermediate: "Loops let you repeat code without writing it multiple times. The 'forever' block runs code continuously, while 'repeat 10' runs it exactly 10 times. This makes animations and games possible!",
			model.Advanced:     "Loops are control structures that enable iteration. Scratch offers forever loops (infinite), counted loops (repeat n), and conditional loops (repeat until). They're essential for efficient code and complex behaviors.",
		},
		examples: []string{
			"Try: 'make the cat move right forever'",
			"Try: 'repeat 5 times jump'",
		},
		related: []string{"events", "motion", "animation"},
	},
	"events": {
		levels: map[model.Difficulty]string{
			model.Beginner:     "Events are like magic triggers! When something happens (like clicking the green flag or pressing a key), your program starts running. It's like a doorbell: when someone presses it, it makes a sound!",
			model.Intermediate: "Events are how your program responds to user actions or conditions. The hat blocks (like 'when flag clicked') start your scripts when specific things happen. This makes your programs interactive!",
			model.Advanced:     "Events implement the observer pattern in visual programming. Scratch uses an event-driven architecture where hat blocks register listeners for user inputs, broadcast messages and sensor changes.",
		},
		examples: []string{
			"Try: 'when space pressed make cat jump'",
			"Try: 'when flag clicked play sound'",
		},
		related: []string{"loops", "user_input", "interactivity"},
	},
	"sprites": {
		levels: map[model.Difficulty]string{
			model.Beginner:     "Sprites are the characters in your Scratch program! They can be animals, people or objects, anything you want. You can make them move, talk and do fun things. It's like having toy characters that come to life!",
			model.Intermediate: "Sprites are programmable objects that have costumes (how they look) and scripts (what they do). Each sprite can have its own code, and sprites can interact with each other through messages and collision detection.",
			model.Advanced:     "Sprites are autonomous objects with encapsulated state (position, costumes, variables) and behavior (scripts). They support inheritance through cloning and polymorphism through broadcast message handling.",
		},
		examples: []string{
			"Try: 'make the cat say hello'",
			"Try: 'when cat clicked change color'",
		},
		related: []string{"costumes", "motion", "coordinates"},
	},
	"blocks": {
		levels: map[model.Difficulty]string{
			model.Beginner:     "Blocks are like puzzle pieces that tell your sprite what to do! You snap them together to create programs. Different colored blocks do different things: blue blocks make things move, purple blocks change how things look!",
			model.Intermediate: "Blocks are visual programming commands that execute specific functions. They're color-coded by category (motion, looks, sound and so on) and snap together to form scripts that control sprite behavior.",
			model.Advanced:     "Blocks represent discrete programming instructions in a visual syntax tree. Each block encapsulates specific functionality with defined inputs and outputs, enabling drag-and-drop programming while keeping the language computationally complete.",
		},
		examples: []string{
			"Try: 'move 10 steps' (motion block)",
			"Try: 'play sound' (sound block)",
		},
		related: []string{"scripts", "categories", "inputs"},
	},
}

// Names returns the explainable concepts in lexical order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Explain returns the explanation of name at level. Names are matched
// case-insensitively; an empty or unknown level falls back to beginner.
func Explain(name string, level model.Difficulty) (Explanation, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	e, ok := entries[key]
	if !ok {
		return Explanation{}, fmt.Errorf("%w: %q (try asking about: %s)", ErrUnknownConcept, name, strings.Join(Names(), ", "))
	}
	if !level.Valid() {
		level = model.Beginner
	}
	related := e.related
	if len(related) > 3 {
		related = related[:3]
	}
	return Explanation{
		Concept:  key,
		Level:    level,
		Text:     e.levels[level],
		Examples: append([]string(nil), e.examples...),
		Related:  append([]string(nil), e.related...),
		TryNext:  "Ask me to explain: " + strings.Join(related, ", "),
	}, nil
}
