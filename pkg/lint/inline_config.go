package lint

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/marklint/pkg/mdcontext"
)

// inlineDirectiveRe matches marklint control comments such as
// <!-- marklint-disable -->, <!-- marklint-disable MD009 MD010 -->,
// <!-- marklint-disable-next-line -->, and <!-- marklint-enable -->.
// The longer verb forms must come first so "disable" does not shadow them.
var inlineDirectiveRe = regexp.MustCompile(
	`<!--\s*marklint-(disable-next-line|disable-line|disable|enable)((?:\s+[A-Za-z0-9_-]+)*)\s*-->`)

// inlineState is the set of rules disabled from a given line onward.
// Explicit entries override the blanket flag, so
// <!-- marklint-enable MD013 --> can re-enable one rule inside a
// blanket-disabled region.
type inlineState struct {
	fromLine    int // 1-based line where this state takes effect
	allDisabled bool
	overrides   map[string]bool // rule token -> disabled
}

// InlineConfig records the control comments found in a document and
// answers whether a rule is suppressed at a given line. Comments inside
// code blocks and front matter are inert.
type InlineConfig struct {
	states          []inlineState
	lineSuppression map[int]map[string]bool // 1-based line -> tokens; "" means all rules
}

// ParseInlineConfig scans the document for marklint control comments.
func ParseInlineConfig(doc *mdcontext.Context) *InlineConfig {
	ic := &InlineConfig{
		lineSuppression: make(map[int]map[string]bool),
	}

	current := inlineState{fromLine: 1, overrides: map[string]bool{}}

	lines := doc.Lines()
	content := doc.Content()
	for i := range lines {
		rec := &lines[i]
		if rec.InFencedCode || rec.InIndentedCode || rec.InFrontMatter {
			continue
		}
		text := string(content[rec.Start:rec.TextEnd])
		if !strings.Contains(text, "marklint-") {
			continue
		}

		for _, m := range inlineDirectiveRe.FindAllStringSubmatch(text, -1) {
			verb := m[1]
			tokens := strings.Fields(m[2])
			for t := range tokens {
				tokens[t] = strings.ToLower(tokens[t])
			}

			switch verb {
			case "disable-line":
				ic.suppressLine(i+1, tokens)
			case "disable-next-line":
				ic.suppressLine(i+2, tokens)
			case "disable":
				next := current.clone(i + 1)
				if len(tokens) == 0 {
					next.allDisabled = true
					next.overrides = map[string]bool{}
				} else {
					for _, tok := range tokens {
						next.overrides[tok] = true
					}
				}
				ic.states = append(ic.states, next)
				current = next
			case "enable":
				next := current.clone(i + 1)
				if len(tokens) == 0 {
					next.allDisabled = false
					next.overrides = map[string]bool{}
				} else {
					for _, tok := range tokens {
						next.overrides[tok] = false
					}
				}
				ic.states = append(ic.states, next)
				current = next
			}
		}
	}

	return ic
}

func (s inlineState) clone(fromLine int) inlineState {
	overrides := make(map[string]bool, len(s.overrides))
	for k, v := range s.overrides {
		overrides[k] = v
	}
	return inlineState{fromLine: fromLine, allDisabled: s.allDisabled, overrides: overrides}
}

func (ic *InlineConfig) suppressLine(line int, tokens []string) {
	set := ic.lineSuppression[line]
	if set == nil {
		set = make(map[string]bool)
		ic.lineSuppression[line] = set
	}
	if len(tokens) == 0 {
		set[""] = true
		return
	}
	for _, tok := range tokens {
		set[tok] = true
	}
}

// HasDirectives returns true if any control comments were found.
func (ic *InlineConfig) HasDirectives() bool {
	return len(ic.states) > 0 || len(ic.lineSuppression) > 0
}

// IsDisabled reports whether a rule identified by either its ID or its name
// is suppressed at the given 1-based line.
func (ic *InlineConfig) IsDisabled(ruleID, ruleName string, line int) bool {
	id := strings.ToLower(ruleID)
	name := strings.ToLower(ruleName)

	if set, ok := ic.lineSuppression[line]; ok {
		if set[""] || set[id] || set[name] {
			return true
		}
	}

	state := ic.stateAt(line)
	if state == nil {
		return false
	}
	if v, ok := state.overrides[id]; ok {
		return v
	}
	if v, ok := state.overrides[name]; ok {
		return v
	}
	return state.allDisabled
}

// stateAt returns the latest state taking effect at or before line.
func (ic *InlineConfig) stateAt(line int) *inlineState {
	if len(ic.states) == 0 {
		return nil
	}
	// First state with fromLine > line; the one before it governs.
	idx := sort.Search(len(ic.states), func(i int) bool {
		return ic.states[i].fromLine > line
	})
	if idx == 0 {
		return nil
	}
	return &ic.states[idx-1]
}
