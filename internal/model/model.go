// Package model defines core types for blockwright: intents parsed from
// natural language, instruction definitions and patterns from the knowledge
// base, and the generated instruction sequences that serializers consume.
package model

import "time"

// UnknownAction marks an intent whose action was not recognized.
const UnknownAction = "unknown"

// DefaultSubject is the only actor intents currently address.
const DefaultSubject = "sprite"

// Trigger names the event that starts an intent's instructions.
// The empty Trigger means no trigger.
type Trigger string

const (
	TriggerNone        Trigger = ""
	TriggerKeyPress    Trigger = "key_press"
	TriggerFlagClick   Trigger = "flag_click"
	TriggerSpriteClick Trigger = "sprite_click"
	TriggerForever     Trigger = "forever"
	TriggerRepeat      Trigger = "repeat"
)

// Well-known intent parameter keys.
const (
	ParamDirection = "direction"
	ParamSteps     = "steps"
	ParamSeconds   = "seconds"
	ParamKey       = "key"
	ParamTimes     = "times"
)

// Directions stored under ParamDirection.
const (
	DirectionRight = "right"
	DirectionLeft  = "left"
	DirectionUp    = "up"
	DirectionDown  = "down"
)

// Intent is one parsed user directive.
type Intent struct {
	Action     string           `json:"action"`
	Subject    string           `json:"subject"`
	Trigger    Trigger          `json:"trigger,omitempty"`
	Parameters map[string]Value `json:"parameters"`
	Modifiers  []string         `json:"modifiers"`
}

// NewIntent returns an Intent for action with the default subject and empty
// parameters and modifiers.
func NewIntent(action string) Intent {
	return Intent{
		Action:     action,
		Subject:    DefaultSubject,
		Parameters: map[string]Value{},
		Modifiers:  []string{},
	}
}

// Param returns the named parameter and whether it is set.
func (i Intent) Param(key string) (Value, bool) {
	v, ok := i.Parameters[key]
	return v, ok
}

// Direction returns the direction parameter as a string, or "" when unset.
func (i Intent) Direction() string {
	if v, ok := i.Parameters[ParamDirection]; ok {
		return v.String()
	}
	return ""
}

// Definition is a knowledge base entry describing one emittable instruction.
type Definition struct {
	ID             string           `json:"id"`
	Category       string           `json:"category"`
	Description    string           `json:"description"`
	KidExplanation string           `json:"kid_explanation,omitempty"`
	Inputs         []string         `json:"inputs"`
	Defaults       map[string]Value `json:"default_values,omitempty"`
	IsHat          bool             `json:"is_hat_block,omitempty"`
}

// Default returns the declared default for an input, or the empty string
// Value when none is declared.
func (d Definition) Default(input string) Value {
	if v, ok := d.Defaults[input]; ok {
		return v
	}
	return String("")
}

// HasDefault reports whether the input declares a default.
func (d Definition) HasDefault(input string) bool {
	_, ok := d.Defaults[input]
	return ok
}

// Pattern is a named template expanding to several instructions.
type Pattern struct {
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	InstructionIDs []string         `json:"blocks"`
	Overrides      map[string]Value `json:"parameters,omitempty"`
	Explanation    string           `json:"explanation,omitempty"`
}

// Instruction is one generated block.
type Instruction struct {
	Opcode      string           `json:"opcode"`
	Category    string           `json:"category"`
	Inputs      map[string]Value `json:"inputs"`
	Fields      map[string]Value `json:"fields"`
	Description string           `json:"description"`
}

// NewInstruction returns an Instruction for def with empty inputs and fields.
func NewInstruction(def Definition) Instruction {
	return Instruction{
		Opcode:      def.ID,
		Category:    def.Category,
		Inputs:      map[string]Value{},
		Fields:      map[string]Value{},
		Description: def.Description,
	}
}

// Difficulty classifies how complex a generated program is.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Sequence is the generator's output: a flat chain of instructions in
// execution order.
type Sequence struct {
	Instructions []Instruction `json:"blocks"`
	Explanation  string        `json:"explanation"`
	Difficulty   Difficulty    `json:"difficulty"`
}

// Generation is one recorded run of the pipeline.
type Generation struct {
	ID          string     `json:"id"`
	Input       string     `json:"input"`
	Format      string     `json:"format"`
	Actions     []string   `json:"actions,omitempty"`
	IntentCount int        `json:"intent_count"`
	BlockCount  int        `json:"block_count"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
	Understood  bool       `json:"understood"`
	CreatedAt   time.Time  `json:"created_at"`
}
