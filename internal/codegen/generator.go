// Package codegen lowers parsed intents into a flat instruction sequence
// using the knowledge base, the action mapping index and the pattern library.
package codegen

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/knowledge"
	"github.com/scbrown/blockwright/internal/model"
)

// triggerKeys maps intent triggers to index keys. Loop triggers have no
// hat block and are absent.
var triggerKeys = map[model.Trigger]string{
	model.TriggerKeyPress:    KeyKeyPress,
	model.TriggerFlagClick:   KeyStart,
	model.TriggerSpriteClick: KeyClick,
}

// FieldKeyOption holds the key name on key press hat blocks.
const FieldKeyOption = "KEY_OPTION"

// Generator converts intents into instruction sequences. It holds only
// read-only registries and is safe for concurrent use.
type Generator struct {
	kb       *knowledge.Base
	patterns *knowledge.Library
	index    *Index
	log      *slog.Logger
}

// New builds a Generator and its action mapping index. A nil logger discards
// diagnostics.
func New(kb *knowledge.Base, patterns *knowledge.Library, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		kb:       kb,
		patterns: patterns,
		index:    BuildIndex(kb),
		log:      log,
	}
}

// Knowledge returns the generator's knowledge base.
func (g *Generator) Knowledge() *knowledge.Base { return g.kb }

// Patterns returns the generator's pattern library.
func (g *Generator) Patterns() *knowledge.Library { return g.patterns }

// Index returns the action mapping index.
func (g *Generator) Index() *Index { return g.index }

// Generate lowers intents into a sequence. It never fails: intents that
// cannot be mapped contribute no instructions.
func (g *Generator) Generate(intents []model.Intent) model.Sequence {
	seq := model.Sequence{
		Instructions: []model.Instruction{},
		Difficulty:   Difficulty(intents),
	}
	explanations := make([]string, 0, len(intents))
	for _, intent := range intents {
		instrs, explanation := g.generateIntent(intent)
		seq.Instructions = append(seq.Instructions, instrs...)
		explanations = append(explanations, explanation)
	}
	seq.Explanation = strings.Join(explanations, " ")
	return seq
}

func (g *Generator) generateIntent(intent model.Intent) ([]model.Instruction, string) {
	if p, ok := g.patterns.Get(intent.Action); ok {
		return g.expandPattern(intent, p)
	}

	var out []model.Instruction
	if intent.Trigger != model.TriggerNone {
		if instr, ok := g.triggerInstruction(intent); ok {
			out = append(out, instr)
		}
	}
	if instr, ok := g.actionInstruction(intent); ok {
		out = append(out, instr)
	}
	return out, g.explain(intent, out)
}

func (g *Generator) triggerInstruction(intent model.Intent) (model.Instruction, bool) {
	key, ok := triggerKeys[intent.Trigger]
	if !ok {
		return model.Instruction{}, false
	}
	def, ok := g.index.Lookup(key)
	if !ok {
		g.log.Debug("no block for trigger", "trigger", intent.Trigger)
		return model.Instruction{}, false
	}
	instr := model.NewInstruction(def)
	if intent.Trigger == model.TriggerKeyPress {
		if k, ok := intent.Param(model.ParamKey); ok {
			instr.Fields[FieldKeyOption] = k
		}
	}
	return instr, true
}

// actionKey resolves the index key for an intent's action, routing
// directional moves to the horizontal or vertical block and directional
// rotations to the matching turn block.
func actionKey(intent model.Intent) string {
	switch intent.Action {
	case KeyMove:
		switch intent.Direction() {
		case model.DirectionLeft, model.DirectionRight:
			return KeyMoveHorizontal
		case model.DirectionUp, model.DirectionDown:
			return KeyMoveVertical
		}
	case KeyRotate:
		switch intent.Direction() {
		case model.DirectionLeft:
			return KeyTurnLeft
		case model.DirectionRight:
			return KeyTurnRight
		}
	}
	return intent.Action
}

func (g *Generator) actionInstruction(intent model.Intent) (model.Instruction, bool) {
	key := actionKey(intent)
	def, ok := g.index.Lookup(key)
	if !ok {
		g.log.Debug("no block for action", "action", intent.Action, "key", key)
		return model.Instruction{}, false
	}
	instr := model.NewInstruction(def)
	for _, name := range def.Inputs {
		instr.Inputs[name] = resolveInput(name, def, intent)
	}
	return instr, true
}

// inputPolicy is the sign rule applied to a distance-like input.
type inputPolicy int

const (
	policyDefault inputPolicy = iota // declared default or ""
	policyPlain                      // steps, unmodified
	policySteps                      // -|steps| moving left, |steps| moving right
	policyDX                         // |steps|, negative when moving left
	policyDY                         // |steps|, negative when moving down
)

var inputPolicies = map[string]inputPolicy{
	"STEPS": policySteps,
	"DX":    policyDX,
	"DY":    policyDY,
	"X":     policyPlain,
	"Y":     policyPlain,
}

func resolveInput(name string, def model.Definition, intent model.Intent) model.Value {
	policy := inputPolicies[name]
	if policy == policyDefault {
		return def.Default(name)
	}

	v, ok := intent.Param(model.ParamSteps)
	if !ok {
		v = def.Default(name)
	}
	dir := intent.Direction()
	switch policy {
	case policySteps:
		switch dir {
		case model.DirectionLeft:
			return v.NegAbs()
		case model.DirectionRight:
			return v.Abs()
		}
	case policyDX:
		if dir == "" {
			return v
		}
		if dir == model.DirectionLeft {
			return v.NegAbs()
		}
		return v.Abs()
	case policyDY:
		if dir == "" {
			return v
		}
		if dir == model.DirectionDown {
			return v.NegAbs()
		}
		return v.Abs()
	}
	return v
}

// expandPattern instantiates each block the pattern names. Unknown ids are
// skipped. Only inputs named in the pattern's overrides are set.
func (g *Generator) expandPattern(intent model.Intent, p model.Pattern) ([]model.Instruction, string) {
	var out []model.Instruction
	for _, id := range p.InstructionIDs {
		def, ok := g.kb.Lookup(id)
		if !ok {
			g.log.Warn("pattern block not found in knowledge base", "pattern", p.Name, "block", id)
			continue
		}
		instr := model.NewInstruction(def)
		for _, name := range def.Inputs {
			if v, ok := p.Overrides[name]; ok {
				instr.Inputs[name] = v
			}
		}
		out = append(out, instr)
	}
	explanation := p.Explanation
	if explanation == "" {
		explanation = fmt.Sprintf("This creates a %s effect!", intent.Action)
	}
	return out, explanation
}

// explain joins the kid-friendly explanations of the emitted blocks.
func (g *Generator) explain(intent model.Intent, instrs []model.Instruction) string {
	var parts []string
	for _, instr := range instrs {
		def, ok := g.kb.Lookup(instr.Opcode)
		if !ok {
			continue
		}
		if def.KidExplanation != "" {
			parts = append(parts, def.KidExplanation)
		} else {
			parts = append(parts, def.Description)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("This creates a cool %s effect!", intent.Action)
	}
	return strings.Join(parts, " ")
}

// Difficulty rates a program by its intents: one untriggered intent is
// beginner, up to two intents intermediate, more advanced.
func Difficulty(intents []model.Intent) model.Difficulty {
	switch {
	case len(intents) == 1 && intents[0].Trigger == model.TriggerNone:
		return model.Beginner
	case len(intents) <= 2:
		return model.Intermediate
	default:
		return model.Advanced
	}
}

// AvailableActions returns every index key and pattern name, sorted.
func (g *Generator) AvailableActions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range g.index.Keys() {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, n := range g.patterns.Names() {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// BlockInfo returns the definition for a block id, including its category.
func (g *Generator) BlockInfo(id string) (model.Definition, bool) {
	return g.kb.Lookup(id)
}
