package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
)

var tryNext = map[model.Difficulty]string{
	model.Beginner:     "Try adding a sound effect or making your sprite change color!",
	model.Intermediate: "Can you make it repeat forever? Or add more keys to control?",
	model.Advanced:     "Try creating a complete game with scoring and multiple sprites!",
}

// Text renders a sequence as a short illustrated lesson: heading, what the
// program does, numbered steps and a follow-up challenge. Beyond beginner
// level each step also shows its category and input settings.
func Text(seq model.Sequence) string {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("# Your Scratch Program (%s level)", seq.Difficulty),
		"",
		"## What it does:",
		seq.Explanation,
		"",
		"## Programming steps:",
	)
	for i, instr := range seq.Instructions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, instr.Description))
		if seq.Difficulty == model.Beginner {
			continue
		}
		lines = append(lines, "   - Block type: "+instr.Category)
		if len(instr.Inputs) > 0 {
			lines = append(lines, "   - Settings: "+settings(instr.Inputs))
		}
	}

	next, ok := tryNext[seq.Difficulty]
	if !ok {
		next = "Keep experimenting!"
	}
	lines = append(lines, "", "## Try this next:", next)
	return strings.Join(lines, "\n")
}

// settings formats inputs as a compact JSON-style object with sorted keys.
func settings(inputs map[string]model.Value) string {
	parts := make([]string, 0, len(inputs))
	for _, name := range sortedKeys(inputs) {
		v, _ := json.Marshal(inputs[name])
		parts = append(parts, fmt.Sprintf("%q: %s", name, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
