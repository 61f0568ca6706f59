package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/scbrown/blockwright/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSequence(d model.Difficulty) model.Sequence {
	hat := model.Instruction{
		Opcode:      "event_whenkeypressed",
		Category:    "events",
		Inputs:      map[string]model.Value{},
		Fields:      map[string]model.Value{"KEY_OPTION": model.String("space")},
		Description: "When a key is pressed on the keyboard",
	}
	move := model.Instruction{
		Opcode:      "motion_movesteps",
		Category:    "motion",
		Inputs:      map[string]model.Value{"STEPS": model.Int(-10)},
		Fields:      map[string]model.Value{},
		Description: "Move the sprite forward by a number of steps",
	}
	say := model.Instruction{
		Opcode:      "looks_sayforsecs",
		Category:    "looks",
		Inputs:      map[string]model.Value{"SECS": model.Float(2), "MESSAGE": model.String("Hello!")},
		Fields:      map[string]model.Value{},
		Description: "Say a message in a speech bubble for some seconds",
	}
	return model.Sequence{
		Instructions: []model.Instruction{hat, move, say},
		Explanation:  "Moves and talks.",
		Difficulty:   d,
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", FormatText},
		{"text", FormatText},
		{" TXT ", FormatText},
		{"pictoblox", FormatPictoBlox},
		{"project", FormatPictoBlox},
		{"Blocks", FormatBlocks},
	}
	for _, tt := range tests {
		f, err := Lookup(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, f.Name, tt.in)
	}

	_, err := Lookup("scratch")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Lookup("pdf")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Contains(t, err.Error(), "text, pictoblox, blocks")
}

func TestFilenames(t *testing.T) {
	want := map[string]string{
		FormatText:      "generated_project.txt",
		FormatPictoBlox: "generated_project.pbl",
		FormatBlocks:    "generated_project.json",
	}
	for name, file := range want {
		f, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, file, f.Filename())
	}
}

func TestRenderersIdempotent(t *testing.T) {
	for _, name := range Names() {
		f, err := Lookup(name)
		require.NoError(t, err)
		seq := sampleSequence(model.Advanced)
		assert.Equal(t, f.Render(seq), f.Render(seq), name)
		assert.NotEmpty(t, f.Render(model.Sequence{}), name)
	}
}

func TestTextBeginner(t *testing.T) {
	seq := model.Sequence{
		Instructions: []model.Instruction{{
			Opcode:      "motion_movesteps",
			Category:    "motion",
			Inputs:      map[string]model.Value{"STEPS": model.Int(10)},
			Description: "Move the sprite forward by a number of steps",
		}},
		Explanation: "Makes your sprite walk forward!",
		Difficulty:  model.Beginner,
	}
	want := strings.Join([]string{
		"# Your Scratch Program (beginner level)",
		"",
		"## What it does:",
		"Makes your sprite walk forward!",
		"",
		"## Programming steps:",
		"1. Move the sprite forward by a number of steps",
		"",
		"## Try this next:",
		"Try adding a sound effect or making your sprite change color!",
	}, "\n")
	assert.Equal(t, want, Text(seq))
}

func TestTextIntermediateShowsDetails(t *testing.T) {
	out := Text(sampleSequence(model.Intermediate))
	assert.Contains(t, out, "# Your Scratch Program (intermediate level)")
	assert.Contains(t, out, "1. When a key is pressed on the keyboard\n   - Block type: events\n2. ")
	assert.Contains(t, out, "   - Settings: {\"STEPS\": -10}")
	assert.Contains(t, out, "   - Settings: {\"MESSAGE\": \"Hello!\", \"SECS\": 2.0}")
	assert.True(t, strings.HasSuffix(out, "Can you make it repeat forever? Or add more keys to control?"))
}

func TestTextAdvancedAndUnknownDifficulty(t *testing.T) {
	assert.Contains(t, Text(sampleSequence(model.Advanced)), "Try creating a complete game with scoring and multiple sprites!")
	assert.True(t, strings.HasSuffix(Text(model.Sequence{Difficulty: "expert"}), "## Try this next:\nKeep experimenting!"))
}

func TestTextEmpty(t *testing.T) {
	out := Text(model.Sequence{Difficulty: model.Beginner})
	assert.Contains(t, out, "## Programming steps:\n\n## Try this next:")
}

func TestPictoBloxLayout(t *testing.T) {
	out := PictoBlox(sampleSequence(model.Intermediate))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Stage", doc["objName"])
	assert.Equal(t, []any{}, doc["sounds"])
	assert.Equal(t, []any{}, doc["costumes"])
	assert.Equal(t, float64(0), doc["currentCostumeIndex"])
	assert.Equal(t, map[string]any{}, doc["variables"])
	assert.Equal(t, map[string]any{}, doc["lists"])

	scripts := doc["scripts"].([]any)
	require.Len(t, scripts, 1)
	sc := scripts[0].(map[string]any)
	assert.Equal(t, float64(48), sc["x"])
	assert.Equal(t, float64(48), sc["y"])

	blocks := sc["blocks"].([]any)
	require.Len(t, blocks, 3)
	hat := blocks[0].(map[string]any)
	assert.Equal(t, "event_whenkeypressed", hat["opcode"])
	assert.Nil(t, hat["next"])
	assert.Nil(t, hat["parent"])
	assert.Equal(t, false, hat["shadow"])
	assert.Equal(t, false, hat["topLevel"])
	assert.Equal(t, map[string]any{"KEY_OPTION": []any{"space", nil}}, hat["fields"])

	move := blocks[1].(map[string]any)
	assert.Equal(t, map[string]any{"STEPS": []any{float64(1), []any{float64(4), "-10"}}}, move["inputs"])

	say := blocks[2].(map[string]any)
	assert.Equal(t, map[string]any{
		"MESSAGE": []any{float64(1), []any{float64(10), "Hello!"}},
		"SECS":    []any{float64(1), []any{float64(4), "2.0"}},
	}, say["inputs"])
}

func TestPictoBloxKeyOrder(t *testing.T) {
	out := PictoBlox(model.Sequence{})
	keys := []string{`"objName"`, `"sounds"`, `"costumes"`, `"currentCostumeIndex"`, `"scripts"`, `"variables"`, `"lists"`}
	last := -1
	for _, k := range keys {
		i := strings.Index(out, k)
		require.Greater(t, i, last, k)
		last = i
	}
	assert.Contains(t, out, `"blocks": []`)
	assert.True(t, strings.HasPrefix(out, "{\n  \"objName\": \"Stage\","))
}

func TestOpcodePassThrough(t *testing.T) {
	assert.Equal(t, "motion_movesteps", Opcode("motion_movesteps"))
	assert.Equal(t, "pen_down", Opcode("pen_down"))
}

func TestBlocksRoundTrip(t *testing.T) {
	seq := sampleSequence(model.Advanced)
	out := Blocks(seq)
	assert.Contains(t, out, `"schema_version": 1`)

	got, err := DecodeBlocks([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, seq, got)
}

func TestBlocksEmpty(t *testing.T) {
	out := Blocks(model.Sequence{})
	assert.Contains(t, out, `"blocks": []`)
	got, err := DecodeBlocks([]byte(out))
	require.NoError(t, err)
	assert.Empty(t, got.Instructions)
}

func TestDecodeBlocksErrors(t *testing.T) {
	_, err := DecodeBlocks([]byte(`{"schema_version": 2, "blocks": []}`))
	assert.ErrorContains(t, err, "schema version 2")

	_, err = DecodeBlocks([]byte(`{`))
	assert.Error(t, err)
}
