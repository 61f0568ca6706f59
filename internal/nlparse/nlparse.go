// Package nlparse turns short natural-language commands into intents using
// ordered keyword rules. There is no grammar: each clause is matched
// independently against three rule families (actions, triggers, directions)
// plus a number-with-unit scan.
package nlparse

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
)

// rule maps any of its keywords to a value. Rules are tried in slice order
// and the first match wins.
type rule struct {
	value    string
	keywords []string
	re       *regexp.Regexp
}

func newRule(value string, keywords ...string) rule {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return rule{value: value, keywords: keywords, re: regexp.MustCompile(strings.Join(quoted, "|"))}
}

var actionRules = []rule{
	newRule("move", "move", "walk", "go"),
	newRule("jump", "jump", "hop", "leap"),
	newRule("play_sound", "play sound", "make noise", "sound"),
	newRule("change_color", "change color", "color"),
	newRule("rotate", "rotate", "turn", "spin"),
	newRule("hide", "hide", "disappear"),
	newRule("show", "show", "appear"),
	newRule("say", "say", "speak", "talk"),
}

var directionRules = []rule{
	newRule(model.DirectionRight, "right", "to the right"),
	newRule(model.DirectionLeft, "left", "to the left"),
	newRule(model.DirectionUp, "up", "upward"),
	newRule(model.DirectionDown, "down", "downward"),
}

// triggerRule captures an optional parameter. When the pattern has several
// groups, the first non-empty one is used.
type triggerRule struct {
	trigger model.Trigger
	re      *regexp.Regexp
	param   string
}

var triggerRules = []triggerRule{
	{model.TriggerKeyPress, regexp.MustCompile(`when (.+) pressed|when (.+) key`), model.ParamKey},
	{model.TriggerFlagClick, regexp.MustCompile(`when flag clicked|when start`), ""},
	{model.TriggerSpriteClick, regexp.MustCompile(`when (.+) clicked`), ""},
	{model.TriggerForever, regexp.MustCompile(`forever|always|continuously`), ""},
	{model.TriggerRepeat, regexp.MustCompile(`repeat (\d+)`), model.ParamTimes},
}

var (
	reConjunction = regexp.MustCompile(`\s+(?:and\s+then|and|then)\s+`)
	reQuantity    = regexp.MustCompile(`(\d+)\s*(steps?|pixels?|seconds?)`)
)

// DefaultSteps is filled in when a direction is given without a distance.
const DefaultSteps = 10

// Parse converts text into intents, one per recognized clause, in the order
// the clauses appear. It never fails; unrecognized clauses are dropped, so
// an empty result means nothing was understood.
func Parse(text string) []model.Intent {
	intents := []model.Intent{}
	for _, clause := range splitClauses(text) {
		if intent, ok := parseClause(clause); ok {
			intents = append(intents, intent)
		}
	}
	return intents
}

// splitClauses lowercases and trims text, then splits it on the
// conjunctions "and", "then" and "and then", dropping the conjunctions and
// empty clauses.
func splitClauses(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	var clauses []string
	for _, c := range reConjunction.Split(text, -1) {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		clauses = append(clauses, c)
	}
	return clauses
}

func parseClause(clause string) (model.Intent, bool) {
	intent := model.NewIntent(model.UnknownAction)

	for _, r := range actionRules {
		if r.re.MatchString(clause) {
			intent.Action = r.value
			break
		}
	}

	for _, r := range triggerRules {
		m := r.re.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		intent.Trigger = r.trigger
		if r.param != "" {
			if v := firstGroup(m); v != "" {
				switch r.trigger {
				case model.TriggerKeyPress:
					intent.Parameters[r.param] = model.String(v)
				case model.TriggerRepeat:
					if n, ok := atoi(v); ok {
						intent.Parameters[r.param] = model.Int(n)
					}
				}
			}
		}
		break
	}

	for _, r := range directionRules {
		if r.re.MatchString(clause) {
			intent.Parameters[model.ParamDirection] = model.String(r.value)
			break
		}
	}

	if m := reQuantity.FindStringSubmatch(clause); m != nil {
		unit := m[2]
		switch {
		case strings.HasPrefix(unit, "step"), strings.HasPrefix(unit, "pixel"):
			if n, ok := atoi(m[1]); ok {
				intent.Parameters[model.ParamSteps] = model.Int(n)
			}
		case strings.HasPrefix(unit, "second"):
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				intent.Parameters[model.ParamSeconds] = model.Float(f)
			}
		}
	}

	_, hasDir := intent.Parameters[model.ParamDirection]
	_, hasSteps := intent.Parameters[model.ParamSteps]
	if hasDir && !hasSteps {
		intent.Parameters[model.ParamSteps] = model.Int(DefaultSteps)
	}

	if intent.Action == model.UnknownAction {
		return model.Intent{}, false
	}
	return intent, true
}

// atoi parses a run of digits. Numbers too large for an int saturate at
// math.MaxInt.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	return n, err == nil
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// Keywords returns every action keyword the parser recognizes, in rule order.
func Keywords() []string {
	var out []string
	for _, r := range actionRules {
		out = append(out, r.keywords...)
	}
	return out
}

// Actions returns the action names the parser can produce, in rule order.
func Actions() []string {
	out := make([]string, len(actionRules))
	for i, r := range actionRules {
		out[i] = r.value
	}
	return out
}
