// Package render serializes instruction sequences into output documents.
//
// Every renderer is a total function of its sequence: the same sequence
// always yields byte-identical output, and the empty sequence is valid input.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
)

// ErrUnknownFormat is returned by Lookup for names no renderer answers to.
var ErrUnknownFormat = errors.New("unknown format")

// ErrUnsupportedFormat is returned by Lookup for recognized formats that
// have no renderer yet.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format names.
const (
	FormatText      = "text"
	FormatPictoBlox = "pictoblox"
	FormatBlocks    = "blocks"
	FormatScratch   = "scratch"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatText

// filenameStem is the base name suggested for saved output.
const filenameStem = "generated_project"

// Format is a named serializer.
type Format struct {
	Name        string
	Extension   string
	ContentType string
	render      func(model.Sequence) string
}

// Render serializes seq.
func (f Format) Render(seq model.Sequence) string { return f.render(seq) }

// Filename returns the suggested file name for output in this format.
func (f Format) Filename() string { return filenameStem + f.Extension }

var formats = []Format{
	{Name: FormatText, Extension: ".txt", ContentType: "text/plain; charset=utf-8", render: Text},
	{Name: FormatPictoBlox, Extension: ".pbl", ContentType: "application/json", render: PictoBlox},
	{Name: FormatBlocks, Extension: ".json", ContentType: "application/json", render: Blocks},
}

var aliases = map[string]string{
	"project": FormatPictoBlox,
	"txt":     FormatText,
}

// Lookup resolves a format by name or alias, case-insensitively. The empty
// name selects DefaultFormat.
func Lookup(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = DefaultFormat
	}
	if a, ok := aliases[n]; ok {
		n = a
	}
	for _, f := range formats {
		if f.Name == n {
			return f, nil
		}
	}
	if n == FormatScratch {
		return Format{}, fmt.Errorf("%w: %q (use one of %s)", ErrUnsupportedFormat, name, strings.Join(Names(), ", "))
	}
	return Format{}, fmt.Errorf("%w: %q (use one of %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// Names lists the renderable formats in registry order.
func Names() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = f.Name
	}
	return out
}

// marshalIndent encodes documents built only from strings, numbers, nil,
// slices, maps and model.Value, none of which can fail to encode.
func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("render: encode document: %v", err))
	}
	return string(data)
}
