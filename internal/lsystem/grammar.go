// Package lsystem parses plant growth grammars and expands them into turtle
// instruction strings.
package lsystem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"islandgen/internal/rng"
)

// maxExpansion caps the length of an expanded string; expansion stops
// after the round that crosses it.
const maxExpansion = 1 << 22

// Rule is one replacement for a variable.
type Rule struct {
	Replacement string
	Probability float64
}

// Grammar is an immutable parsed rule file.
type Grammar struct {
	Axiom      string
	Constants  string
	Variables  []rune
	Rules      map[rune][]Rule
	Iterations int
	// Angle is the turtle turn angle in degrees.
	Angle float64

	stochastic bool
}

// Parse reads a rule file. Unknown lines and unparsable values are skipped;
// only read errors are returned.
func Parse(r io.Reader) (*Grammar, error) {
	g := &Grammar{Rules: make(map[rune][]Rule)}
	var (
		pending string
		current rune
		hasVar  bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if pending != "" {
			g.apply(pending, line, &current, &hasVar)
			pending = ""
			continue
		}
		pending = keyword(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	return g, nil
}

var keywords = []string{"axiom", "constants", "variables", "rules", "iterations", "angle", "probability"}

func keyword(line string) string {
	for _, k := range keywords {
		if strings.HasPrefix(line, k) {
			return k
		}
	}
	return ""
}

func (g *Grammar) apply(key, value string, current *rune, hasVar *bool) {
	switch key {
	case "axiom":
		g.Axiom = value
	case "constants":
		g.Constants = value
	case "variables":
		v, size := utf8.DecodeRuneInString(value)
		if size == 0 {
			return
		}
		if !g.IsVariable(v) {
			g.Variables = append(g.Variables, v)
		}
		*current, *hasVar = v, true
	case "rules":
		if *hasVar {
			g.Rules[*current] = append(g.Rules[*current], Rule{Replacement: value})
		}
	case "iterations":
		if n, err := strconv.Atoi(value); err == nil {
			g.Iterations = n
		}
	case "angle":
		if a, err := strconv.ParseFloat(value, 64); err == nil {
			g.Angle = a
		}
	case "probability":
		p, err := strconv.ParseFloat(value, 64)
		if err != nil || !*hasVar {
			return
		}
		rules := g.Rules[*current]
		if len(rules) == 0 {
			return
		}
		rules[len(rules)-1].Probability = p
		g.stochastic = true
	}
}

// Load parses the rule file at path.
func Load(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// IsVariable reports whether r was declared as a variable.
func (g *Grammar) IsVariable(r rune) bool {
	for _, v := range g.Variables {
		if v == r {
			return true
		}
	}
	return false
}

// Stochastic reports whether any rule carries a probability.
func (g *Grammar) Stochastic() bool {
	return g.stochastic
}

// Choose picks the replacement for variable v. For stochastic grammars roll
// in [0, 1) is compared against the cumulative rule probabilities, falling
// back to the first rule; otherwise roll selects uniformly. ok is false for
// symbols without rules.
func (g *Grammar) Choose(v rune, roll float64) (string, bool) {
	rules := g.Rules[v]
	if len(rules) == 0 {
		return "", false
	}
	if !g.stochastic {
		i := int(roll * float64(len(rules)))
		if i >= len(rules) {
			i = len(rules) - 1
		}
		return rules[i].Replacement, true
	}
	cumulative := 0.0
	for _, rule := range rules {
		cumulative += rule.Probability
		if roll < cumulative {
			return rule.Replacement, true
		}
	}
	return rules[0].Replacement, true
}

// Expand rewrites the axiom Iterations times. Symbols that are not
// variables, or variables without rules, are copied unchanged. Zero
// iterations yield the empty string.
func (g *Grammar) Expand(r *rng.LCG) string {
	if g.Iterations <= 0 {
		return ""
	}
	current := g.Axiom
	for i := 0; i < g.Iterations && len(current) <= maxExpansion; i++ {
		var next strings.Builder
		next.Grow(len(current) * 2)
		for _, sym := range current {
			if !g.IsVariable(sym) {
				next.WriteRune(sym)
				continue
			}
			var roll float64
			if len(g.Rules[sym]) > 1 || g.stochastic {
				roll = r.Float64()
			}
			if replacement, ok := g.Choose(sym, roll); ok {
				next.WriteString(replacement)
			} else {
				next.WriteRune(sym)
			}
		}
		current = next.String()
	}
	return current
}
