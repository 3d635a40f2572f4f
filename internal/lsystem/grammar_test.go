package lsystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"islandgen/internal/rng"
)

const weighted = `axiom
X
variables
X
rules
F[+X]
probability
0.25
rules
F[-X]
probability
0.75
variables
F
rules
FF
iterations
3
angle
22.5
`

func parse(t *testing.T, text string) *Grammar {
	t.Helper()
	g, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return g
}

func TestParse(t *testing.T) {
	g := parse(t, weighted)
	assert.Equal(t, "X", g.Axiom)
	assert.Equal(t, []rune{'X', 'F'}, g.Variables)
	assert.Equal(t, []Rule{{"F[+X]", 0.25}, {"F[-X]", 0.75}}, g.Rules['X'])
	assert.Equal(t, []Rule{{"FF", 0}}, g.Rules['F'])
	assert.Equal(t, 3, g.Iterations)
	assert.Equal(t, 22.5, g.Angle)
	assert.True(t, g.Stochastic())
}

func TestDoublingRule(t *testing.T) {
	for k := 0; k <= 8; k++ {
		g := parse(t, "axiom\nF\nvariables\nF\nrules\nFF\niterations\n"+itoa(k)+"\n")
		got := g.Expand(rng.New(1))
		if k == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, strings.Repeat("F", 1<<k), got, "k=%d", k)
	}
}

func itoa(k int) string {
	return string(rune('0' + k))
}

func TestZeroIterationsIgnoresAxiom(t *testing.T) {
	g := parse(t, "axiom\nF+F\nvariables\nF\nrules\nF-F\niterations\n0\n")
	assert.Empty(t, g.Expand(rng.New(3)))
}

func TestConstantsAreCopied(t *testing.T) {
	g := parse(t, "axiom\n[A]+B\nvariables\nA\nrules\nAB\niterations\n2\n")
	assert.Equal(t, "[ABB]+B", g.Expand(nil))
}

func TestMalformedSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no axiom", "variables\nF\nrules\nFF\niterations\n2\n", ""},
		{"rules before variables are dropped", "axiom\nF\nrules\nFF\niterations\n2\n", "F"},
		{"variable without rules is kept", "axiom\nFG\nvariables\nG\niterations\n1\n", "FG"},
		{"bad iteration count", "axiom\nF\niterations\nmany\n", ""},
		{"trailing keyword", "axiom\nF\nvariables\nF\nrules\nFF\niterations\n1\nangle", "FF"},
		{"unknown lines", "# comment\naxiom\nF\nfoo\nvariables\nF\nrules\nF+\niterations\n1\n", "F+"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := parse(t, tc.text)
			assert.Equal(t, tc.want, g.Expand(rng.New(1)))
		})
	}
}

func TestProbabilityWithoutRuleIsIgnored(t *testing.T) {
	g := parse(t, "variables\nF\nprobability\n0.5\n")
	assert.False(t, g.Stochastic())
}

func TestChooseWeighted(t *testing.T) {
	g := parse(t, weighted)
	tests := []struct {
		roll float64
		want string
	}{
		{0, "F[+X]"},
		{0.2499, "F[+X]"},
		{0.25, "F[-X]"},
		{0.99, "F[-X]"},
	}
	for _, tc := range tests {
		got, ok := g.Choose('X', tc.roll)
		require.True(t, ok)
		assert.Equal(t, tc.want, got, "roll %v", tc.roll)
	}

	got, ok := g.Choose('F', 0.7)
	require.True(t, ok)
	assert.Equal(t, "FF", got, "rules without probability fall back to the first rule")

	_, ok = g.Choose('Q', 0.1)
	assert.False(t, ok)
}

func TestChooseUniform(t *testing.T) {
	g := parse(t, "variables\nA\nrules\nx\nrules\ny\n")
	require.False(t, g.Stochastic())
	first, _ := g.Choose('A', 0.1)
	second, _ := g.Choose('A', 0.9)
	assert.Equal(t, "x", first)
	assert.Equal(t, "y", second)
}

func TestStochasticExpansionIsSeeded(t *testing.T) {
	g := parse(t, weighted)
	assert.Equal(t, g.Expand(rng.New(10)), g.Expand(rng.New(10)))

	seen := make(map[string]bool)
	for seed := uint32(0); seed < 20; seed++ {
		seen[g.Expand(rng.New(seed))] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.txt")
	require.NoError(t, os.WriteFile(path, []byte(weighted), 0o644))
	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "X", g.Axiom)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestBundledGrammarsParse(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "assets", "grammars", "*.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		g, err := Load(path)
		require.NoError(t, err, path)
		assert.NotEmpty(t, g.Axiom, path)
		assert.Positive(t, g.Iterations, path)
		assert.Positive(t, g.Angle, path)
		assert.NotEmpty(t, g.Expand(rng.New(1)), path)
	}
}
