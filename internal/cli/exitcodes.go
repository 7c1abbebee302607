package cli

import (
	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/runner"
)

// Exit codes. The sysexits-style values (64+) distinguish operational
// failures from lint findings so CI wrappers can branch on them.
const (
	ExitSuccess       = 0
	ExitLintErrors    = 1
	ExitLintWarnings  = 2
	ExitInvalidUsage  = 64
	ExitConfigError   = 65
	ExitInternalError = 70
	ExitIOError       = 74
)

// ExitCodeFromResult maps a run's findings to an exit code. Warnings
// only affect the code in strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}
	counts := result.Stats.DiagnosticsBySeverity
	switch {
	case counts[string(config.SeverityError)] > 0:
		return ExitLintErrors
	case strict && counts[string(config.SeverityWarning)] > 0:
		return ExitLintWarnings
	default:
		return ExitSuccess
	}
}
