package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/marklint/pkg/config"
)

func TestHardTabsRule(t *testing.T) {
	rule := NewHardTabsRule()

	tests := []struct {
		name      string
		input     string
		opts      map[string]any
		wantDiags int
		wantFix   string
	}{
		{
			name:      "no tabs",
			input:     "plain prose here\nand a second line\n",
			wantDiags: 0,
		},
		{
			name:      "leading tab",
			input:     "\tIndented paragraph\n",
			wantDiags: 1,
			wantFix:   " Indented paragraph\n",
		},
		{
			name:      "several tabs still one report per line",
			input:     "cell\tcell\tcell\n",
			wantDiags: 1,
			wantFix:   "cell cell cell\n",
		},
		{
			name:      "tabs on separate lines",
			input:     "\tfirst\n\tsecond\n",
			wantDiags: 2,
			wantFix:   " first\n second\n",
		},
		{
			name:      "interior tab",
			input:     "Name\tValue\n",
			wantDiags: 1,
			wantFix:   "Name Value\n",
		},
		{
			name:      "wider replacement",
			input:     "\tIndented paragraph\n",
			opts:      map[string]any{"spaces_per_tab": 4},
			wantDiags: 1,
			wantFix:   "    Indented paragraph\n",
		},
		{
			name:      "replacement width applies to every tab",
			input:     "a\tb\tc\n",
			opts:      map[string]any{"spaces_per_tab": 2},
			wantDiags: 1,
			wantFix:   "a  b  c\n",
		},
		{
			name:      "fenced code counted by default",
			input:     "```\n\tmain()\n```\n",
			wantDiags: 1,
			wantFix:   "```\n main()\n```\n",
		},
		{
			name:      "fenced code skipped when excluded",
			input:     "```\n\tmain()\n```\n",
			opts:      map[string]any{"code_blocks": false},
			wantDiags: 0,
		},
		{
			name:      "spaces alone are fine",
			input:     "    space indented\n",
			wantDiags: 0,
		},
		{
			name:      "empty file",
			input:     "",
			wantDiags: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRuleOpts(t, rule, tt.input, tt.opts)
			require.Len(t, diags, tt.wantDiags)

			if tt.wantFix != "" {
				fixed := applyRuleFixes(t, tt.input, diags)
				assert.Equal(t, tt.wantFix, fixed)
				assert.Empty(t, runRuleOpts(t, rule, fixed, tt.opts), "fix did not converge")
			}
		})
	}
}

func TestHardTabsRule_SpanAndSuggestion(t *testing.T) {
	diags := runRule(t, NewHardTabsRule(), "ab\tcd\n")
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, "Hard tab character found", d.Message)
	assert.Equal(t, 3, d.StartColumn, "span starts at the first tab")
	assert.Equal(t, "Replace tab with 1 space(s)", d.Suggestion)
}

func TestHardTabsRule_IgnoreCodeLanguages(t *testing.T) {
	rule := NewHardTabsRule()
	opts := map[string]any{"ignore_code_languages": []any{"makefile"}}

	tests := []struct {
		name      string
		input     string
		wantDiags int
	}{
		{
			name:      "listed language keeps its tabs",
			input:     "```makefile\nbuild:\n\tgo vet ./...\n```\n",
			wantDiags: 0,
		},
		{
			name:      "other languages still flagged",
			input:     "```bash\n\techo hi\n```\n",
			wantDiags: 1,
		},
		{
			name:      "exemption is per fence",
			input:     "```makefile\ntest:\n\tgo test ./...\n```\n\n```bash\n\techo hi\n```\n",
			wantDiags: 1,
		},
		{
			name:      "language match ignores case",
			input:     "```Makefile\ninstall:\n\tcp a b\n```\n",
			wantDiags: 0,
		},
		{
			name:      "bare fence is never exempt",
			input:     "```\n\tanything\n```\n",
			wantDiags: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRuleOpts(t, rule, tt.input, opts)
			assert.Len(t, diags, tt.wantDiags)
		})
	}
}

func TestHardTabsRule_Metadata(t *testing.T) {
	rule := NewHardTabsRule()

	assert.Equal(t, "MD010", rule.ID())
	assert.Equal(t, "no-hard-tabs", rule.Name())
	assert.Contains(t, rule.Tags(), "hard_tab")
	assert.Contains(t, rule.Tags(), "whitespace")
	assert.True(t, rule.CanFix())
	assert.True(t, rule.DefaultEnabled())
	assert.Equal(t, config.SeverityWarning, rule.DefaultSeverity())
}
