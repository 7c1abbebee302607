package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesCommand_Flags(t *testing.T) {
	cmd := newRulesCommand()

	ruleFormat := cmd.Flags().Lookup("rule-format")
	if assert.NotNil(t, ruleFormat) {
		assert.Equal(t, "name", ruleFormat.DefValue)
	}

	format := cmd.Flags().Lookup("format")
	if assert.NotNil(t, format) {
		assert.Equal(t, "text", format.DefValue)
	}
}
