package render

import (
	"sort"

	"github.com/scbrown/blockwright/internal/model"
)

// Boxed value tags used by the project document's input arrays.
const (
	inputShadow = 1
	tagNumber   = 4
	tagText     = 10
)

// opcodes translates knowledge base ids into project opcodes. Ids missing
// from the table pass through unchanged.
var opcodes = map[string]string{
	"motion_movesteps":            "motion_movesteps",
	"motion_turnright":            "motion_turnright",
	"motion_turnleft":             "motion_turnleft",
	"motion_gotoxy":               "motion_gotoxy",
	"motion_changexby":            "motion_changexby",
	"motion_changeyby":            "motion_changeyby",
	"motion_ifonedgebounce":       "motion_ifonedgebounce",
	"event_whenflagclicked":       "event_whenflagclicked",
	"event_whenkeypressed":        "event_whenkeypressed",
	"event_whenthisspriteclicked": "event_whenthisspriteclicked",
	"looks_sayforsecs":            "looks_sayforsecs",
	"looks_hide":                  "looks_hide",
	"looks_show":                  "looks_show",
	"looks_changeeffectby":        "looks_changeeffectby",
	"sound_play":                  "sound_play",
	"control_wait":                "control_wait",
	"control_forever":             "control_forever",
	"control_repeat":              "control_repeat",
}

// Opcode returns the project opcode for a knowledge base id.
func Opcode(id string) string {
	if op, ok := opcodes[id]; ok {
		return op
	}
	return id
}

type project struct {
	ObjName             string         `json:"objName"`
	Sounds              []any          `json:"sounds"`
	Costumes            []any          `json:"costumes"`
	CurrentCostumeIndex int            `json:"currentCostumeIndex"`
	Scripts             []script       `json:"scripts"`
	Variables           map[string]any `json:"variables"`
	Lists               map[string]any `json:"lists"`
}

type script struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Blocks []projectBlock `json:"blocks"`
}

// projectBlock leaves next and parent null: blocks are listed in order but
// not linked into a chain.
type projectBlock struct {
	Opcode   string         `json:"opcode"`
	Next     *string        `json:"next"`
	Parent   *string        `json:"parent"`
	Inputs   map[string]any `json:"inputs"`
	Fields   map[string]any `json:"fields"`
	Shadow   bool           `json:"shadow"`
	TopLevel bool           `json:"topLevel"`
}

// PictoBlox renders a sequence as a stage project document with a single
// script at (48, 48).
func PictoBlox(seq model.Sequence) string {
	blocks := make([]projectBlock, 0, len(seq.Instructions))
	for _, instr := range seq.Instructions {
		blocks = append(blocks, projectBlock{
			Opcode: Opcode(instr.Opcode),
			Inputs: boxInputs(instr.Inputs),
			Fields: boxFields(instr.Fields),
		})
	}
	return marshalIndent(project{
		ObjName:   "Stage",
		Sounds:    []any{},
		Costumes:  []any{},
		Scripts:   []script{{X: 48, Y: 48, Blocks: blocks}},
		Variables: map[string]any{},
		Lists:     map[string]any{},
	})
}

func boxInputs(in map[string]model.Value) map[string]any {
	out := make(map[string]any, len(in))
	for name, v := range in {
		tag := tagText
		if v.IsNumeric() {
			tag = tagNumber
		}
		out[name] = []any{inputShadow, []any{tag, v.String()}}
	}
	return out
}

func boxFields(in map[string]model.Value) map[string]any {
	out := make(map[string]any, len(in))
	for name, v := range in {
		out[name] = []any{v.String(), nil}
	}
	return out
}

func sortedKeys(m map[string]model.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
