// Package compile runs the whole pipeline: text is parsed into intents,
// lowered into an instruction sequence and rendered in the requested format.
package compile

import (
	"fmt"
	"log/slog"

	"github.com/scbrown/blockwright/internal/analyze"
	"github.com/scbrown/blockwright/internal/codegen"
	"github.com/scbrown/blockwright/internal/concept"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/nlparse"
	"github.com/scbrown/blockwright/internal/render"
)

// Examples are phrasings offered when input is not understood.
var Examples = []string{
	"make the cat move right 10 steps",
	"when space key pressed jump up",
	"play sound when sprite clicked",
	"make the sprite say hello",
}

// Result is the outcome of compiling one request.
type Result struct {
	Input      string         `json:"input"`
	Format     string         `json:"format"`
	Understood bool           `json:"understood"`
	Intents    []model.Intent `json:"intents"`
	Sequence   model.Sequence `json:"sequence"`
	Content    string         `json:"content,omitempty"`
	BlockCount int            `json:"block_count"`
	Filename   string         `json:"filename,omitempty"`

	// Set only when the input was not understood.
	Message     string               `json:"message,omitempty"`
	Examples    []string             `json:"examples,omitempty"`
	Suggestions []analyze.Suggestion `json:"suggestions,omitempty"`
	Actions     []string             `json:"available_actions,omitempty"`
}

// Compiler wires the parser, generator and renderers together.
type Compiler struct {
	gen *codegen.Generator
	log *slog.Logger
}

// New returns a Compiler over gen. A nil logger discards diagnostics.
func New(gen *codegen.Generator, log *slog.Logger) *Compiler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Compiler{gen: gen, log: log}
}

// Generator returns the underlying code generator.
func (c *Compiler) Generator() *codegen.Generator { return c.gen }

// Compile turns text into a rendered program. The only error is an unknown
// or unsupported format; input that cannot be understood yields a Result
// with Understood false and guidance for the user.
func (c *Compiler) Compile(text, format string) (*Result, error) {
	f, err := render.Lookup(format)
	if err != nil {
		return nil, err
	}

	intents := nlparse.Parse(text)
	res := &Result{
		Input:   text,
		Format:  f.Name,
		Intents: intents,
	}
	if len(intents) == 0 {
		res.Sequence = model.Sequence{Instructions: []model.Instruction{}}
		res.Message = "I didn't understand that request."
		res.Examples = Examples
		res.Suggestions = analyze.SuggestText(text, nlparse.Keywords())
		res.Actions = c.gen.AvailableActions()
		c.log.Debug("input not understood", "input", text, "suggestions", len(res.Suggestions))
		return res, nil
	}

	res.Understood = true
	res.Sequence = c.gen.Generate(intents)
	res.Content = f.Render(res.Sequence)
	res.BlockCount = len(res.Sequence.Instructions)
	res.Filename = f.Filename()
	c.log.Debug("compiled",
		"input", text,
		"format", f.Name,
		"intents", len(intents),
		"blocks", res.BlockCount,
		"difficulty", res.Sequence.Difficulty,
	)
	return res, nil
}

// Generation summarizes r as a history record. ID and CreatedAt are left
// for the store to fill in.
func (r *Result) Generation() model.Generation {
	g := model.Generation{
		Input:       r.Input,
		Format:      r.Format,
		IntentCount: len(r.Intents),
		BlockCount:  r.BlockCount,
		Understood:  r.Understood,
	}
	for _, i := range r.Intents {
		g.Actions = append(g.Actions, i.Action)
	}
	if r.Understood {
		g.Difficulty = r.Sequence.Difficulty
		g.Explanation = r.Sequence.Explanation
	}
	return g
}

// Summary is a one-line description of r for logs and terminals.
func (r *Result) Summary() string {
	if !r.Understood {
		return fmt.Sprintf("not understood: %q", r.Input)
	}
	return fmt.Sprintf("%d blocks, %s level", r.BlockCount, r.Sequence.Difficulty)
}

// Status describes what a Compiler knows about.
type Status struct {
	Actions    []string `json:"available_actions"`
	Categories []string `json:"categories"`
	Blocks     int      `json:"block_count"`
	Patterns   int      `json:"pattern_count"`
	Formats    []string `json:"formats"`
	Concepts   []string `json:"concepts"`
	Templates  []string `json:"templates"`
}

// Status reports the knowledge loaded into c.
func (c *Compiler) Status() Status {
	return Status{
		Actions:    c.gen.AvailableActions(),
		Categories: c.gen.Knowledge().CategoryNames(),
		Blocks:     c.gen.Knowledge().Len(),
		Patterns:   c.gen.Patterns().Len(),
		Formats:    render.Names(),
		Concepts:   concept.Names(),
		Templates:  TemplateNames(),
	}
}
