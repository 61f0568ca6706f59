package codegen

import (
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/knowledge"
	"github.com/scbrown/blockwright/internal/model"
)

// Action keys produced by the index.
const (
	KeyMove           = "move"
	KeyMoveHorizontal = "move_horizontal"
	KeyMoveVertical   = "move_vertical"
	KeyTurnRight      = "turn_right"
	KeyTurnLeft       = "turn_left"
	KeyRotate         = "rotate"
	KeyStart          = "start"
	KeyKeyPress       = "key_press"
	KeyClick          = "click"
	KeySay            = "say"
	KeyHide           = "hide"
	KeyShow           = "show"
	KeyChangeColor    = "change_color"
	KeyPlaySound      = "play_sound"
)

// Index maps abstract action and trigger names to definitions. It is built
// once from a knowledge base and never modified.
type Index struct {
	m map[string]model.Definition
}

// indexRule inspects one definition and returns the keys it claims.
type indexRule func(desc, id string) []string

// categoryRules holds the keyword rules per category. Each rule sees the
// lowercased description and id.
var categoryRules = map[string][]indexRule{
	"motion": {motionKeys, func(desc, _ string) []string {
		if strings.Contains(desc, "change y") {
			return []string{KeyMoveVertical}
		}
		return nil
	}},
	"events": {func(desc, _ string) []string {
		switch {
		case strings.Contains(desc, "flag"):
			return []string{KeyStart}
		case strings.Contains(desc, "key"):
			return []string{KeyKeyPress}
		case strings.Contains(desc, "clicked"):
			return []string{KeyClick}
		}
		return nil
	}},
	"looks": {func(desc, _ string) []string {
		switch {
		case strings.Contains(desc, "say"):
			return []string{KeySay}
		case strings.Contains(desc, "hide"):
			return []string{KeyHide}
		case strings.Contains(desc, "show"):
			return []string{KeyShow}
		case strings.Contains(desc, "color"):
			return []string{KeyChangeColor}
		}
		return nil
	}},
	"sound": {func(desc, _ string) []string {
		if strings.Contains(desc, "play") {
			return []string{KeyPlaySound}
		}
		return nil
	}},
}

func motionKeys(desc, id string) []string {
	switch {
	case strings.Contains(desc, "move"):
		if strings.Contains(desc, "steps") {
			return []string{KeyMove, KeyMoveHorizontal}
		}
	case strings.Contains(id, "gotoxy"):
		return []string{KeyMoveVertical}
	case strings.Contains(desc, "turn"):
		// "counter-clockwise" contains "clockwise", so left is decided first.
		if strings.Contains(id, "left") || strings.Contains(desc, "counter-clockwise") || strings.Contains(desc, "left") {
			return []string{KeyTurnLeft}
		}
		if strings.Contains(id, "right") || strings.Contains(desc, "clockwise") || strings.Contains(desc, "right") {
			return []string{KeyTurnRight, KeyRotate}
		}
	}
	return nil
}

// BuildIndex scans every definition in knowledge base order. When several
// definitions claim the same key, the last one scanned wins.
func BuildIndex(kb *knowledge.Base) *Index {
	idx := &Index{m: make(map[string]model.Definition)}
	kb.Each(func(d model.Definition) {
		desc := strings.ToLower(d.Description)
		id := strings.ToLower(d.ID)
		for _, r := range categoryRules[d.Category] {
			for _, key := range r(desc, id) {
				idx.m[key] = d
			}
		}
	})
	return idx
}

// Lookup returns the definition bound to key.
func (x *Index) Lookup(key string) (model.Definition, bool) {
	d, ok := x.m[key]
	return d, ok
}

// Keys returns all bound keys in lexical order.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.m))
	for k := range x.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bound keys.
func (x *Index) Len() int { return len(x.m) }
