package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/marklint/pkg/lint"
)

// goldenCase is one testdata scenario: an input file plus the expected
// diagnostics and post-fix output next to it.
type goldenCase struct {
	Name          string
	InputPath     string
	GoldenPath    string // expected content after fixes
	DiagsJSONPath string
	DiagsTxtPath  string
	RuleID        string // empty means run every enabled rule
	RealWorld     bool
}

// diagRecord is the serialized form of a diagnostic in *.diags.json.
type diagRecord struct {
	Rule     string `json:"rule"`
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Fixable  bool   `json:"fixable"`
}

func toDiagRecord(diag lint.Diagnostic) diagRecord {
	return diagRecord{
		Rule:     diag.RuleID,
		Name:     diag.RuleName,
		Line:     diag.StartLine,
		Column:   diag.StartColumn,
		Message:  diag.Message,
		Severity: string(diag.Severity),
		Fixable:  diag.HasFix(),
	}
}

// ruleDirPattern matches testdata directories that scope cases to one
// rule, e.g. MD001 or MDL003.
var ruleDirPattern = regexp.MustCompile(`^MDL?[0-9]+$`)

// discoverGoldenCases collects every *.input.md under baseDir. A
// directory named after a rule ID scopes its cases to that rule; the
// real-world directory runs all enabled rules. Always returns a
// non-nil slice.
func discoverGoldenCases(t *testing.T, baseDir string) []goldenCase {
	t.Helper()

	cases := make([]goldenCase, 0)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return cases
		}
		t.Fatalf("read testdata directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		dirPath := filepath.Join(baseDir, dirName)

		var ruleID string
		if ruleDirPattern.MatchString(dirName) {
			ruleID = dirName
		}

		inputs, err := filepath.Glob(filepath.Join(dirPath, "*.input.md"))
		if err != nil {
			t.Fatalf("glob %s: %v", dirPath, err)
		}

		for _, inputPath := range inputs {
			base := strings.TrimSuffix(filepath.Base(inputPath), ".input.md")
			cases = append(cases, goldenCase{
				Name:          filepath.Join(dirName, base),
				InputPath:     inputPath,
				GoldenPath:    filepath.Join(dirPath, base+".golden.md"),
				DiagsJSONPath: filepath.Join(dirPath, base+".diags.json"),
				DiagsTxtPath:  filepath.Join(dirPath, base+".diags.txt"),
				RuleID:        ruleID,
				RealWorld:     dirName == "real-world",
			})
		}
	}

	return cases
}

// readDiagRecords loads expected diagnostics, nil when the file does
// not exist yet.
func readDiagRecords(t *testing.T, path string) []diagRecord {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read %s: %v", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []diagRecord{}
	}

	var records []diagRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

// readGolden loads expected post-fix content, nil when missing.
func readGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func writeTestdata(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	t.Logf("Updated golden file: %s", path)
}

func writeDiagRecords(t *testing.T, path string, diags []lint.Diagnostic) {
	t.Helper()

	records := make([]diagRecord, len(diags))
	for i, d := range diags {
		records[i] = toDiagRecord(d)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		t.Fatalf("marshal diagnostics: %v", err)
	}
	writeTestdata(t, path, append(data, '\n'))
}

// writeDiagText renders diagnostics in the reviewable one-per-line
// form, e.g. "a.input.md:2:1 warning Message (rule-name) [fixable]".
func writeDiagText(t *testing.T, path string, diags []lint.Diagnostic, filename string) {
	t.Helper()

	var buf bytes.Buffer
	for _, diag := range diags {
		fixable := ""
		if diag.HasFix() {
			fixable = " [fixable]"
		}
		fmt.Fprintf(&buf, "%s:%d:%d %s %s (%s)%s\n",
			filename, diag.StartLine, diag.StartColumn,
			diag.Severity, diag.Message, diag.RuleName, fixable)
	}
	writeTestdata(t, path, buf.Bytes())
}

// compareWithGolden diffs actual bytes against the golden file, or
// rewrites the golden file when update is set.
func compareWithGolden(t *testing.T, actual []byte, goldenPath string, update bool) {
	t.Helper()

	if update {
		writeTestdata(t, goldenPath, actual)
		return
	}

	expected := readGolden(t, goldenPath)
	if expected == nil {
		t.Errorf("golden file missing: %s (run with -update to create it)", goldenPath)
		t.Logf("Actual content:\n%s", actual)
		return
	}

	if !bytes.Equal(actual, expected) {
		t.Errorf("output does not match %s", goldenPath)
		logDiff(t, expected, actual)
	}
}

// compareDiags checks actual diagnostics against the expected records,
// or rewrites the expectation files when update is set.
func compareDiags(t *testing.T, actual []lint.Diagnostic, tc goldenCase, update bool) {
	t.Helper()

	inputName := filepath.Base(tc.InputPath)

	if update {
		writeDiagRecords(t, tc.DiagsJSONPath, actual)
		writeDiagText(t, tc.DiagsTxtPath, actual, inputName)
		return
	}

	expected := readDiagRecords(t, tc.DiagsJSONPath)
	if expected == nil {
		t.Errorf("diagnostics file missing: %s (run with -update to create it)", tc.DiagsJSONPath)
		logDiags(t, inputName, actual)
		return
	}

	if len(actual) != len(expected) {
		t.Errorf("diagnostic count: got %d, want %d", len(actual), len(expected))
		t.Logf("Expected:")
		for _, d := range expected {
			t.Logf("  %s:%d:%d %s %s (%s)", inputName, d.Line, d.Column, d.Severity, d.Message, d.Name)
		}
		t.Logf("Actual:")
		logDiags(t, inputName, actual)
		return
	}

	for i := range actual {
		got := toDiagRecord(actual[i])
		if got != expected[i] {
			assert.Equal(t, expected[i], got, "diagnostic %d", i)
		}
	}
}

func logDiags(t *testing.T, inputName string, diags []lint.Diagnostic) {
	t.Helper()

	for _, d := range diags {
		t.Logf("  %s:%d:%d %s %s (%s)", inputName, d.StartLine, d.StartColumn, d.Severity, d.Message, d.RuleName)
	}
}

// logDiff prints a line-level diff, expected lines prefixed "-" and
// actual lines "+".
func logDiff(t *testing.T, expected, actual []byte) {
	t.Helper()

	expectedLines := bytes.Split(expected, []byte("\n"))
	actualLines := bytes.Split(actual, []byte("\n"))

	var buf bytes.Buffer
	for i := range max(len(expectedLines), len(actualLines)) {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = string(expectedLines[i])
		}
		if i < len(actualLines) {
			actLine = string(actualLines[i])
		}
		if expLine == actLine {
			continue
		}
		if expLine != "" {
			fmt.Fprintf(&buf, "- %s\n", expLine)
		}
		if actLine != "" {
			fmt.Fprintf(&buf, "+ %s\n", actLine)
		}
	}

	if buf.Len() > 0 {
		t.Logf("Diff (- expected, + actual):\n%s", buf.String())
	}
}

// getRuleByID fetches a rule from the default registry.
//
//nolint:ireturn // Test helper returns interface for polymorphic rule testing.
func getRuleByID(t *testing.T, ruleID string) lint.Rule {
	t.Helper()

	rule, ok := lint.DefaultRegistry.GetByID(ruleID)
	if !ok {
		t.Fatalf("rule %s not found in registry", ruleID)
	}
	return rule
}

// enabledRules returns every default-enabled rule.
func enabledRules() []lint.Rule {
	var enabled []lint.Rule
	for _, rule := range lint.DefaultRegistry.Rules() {
		if rule.DefaultEnabled() {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// fixableOnly filters to diagnostics that carry edits.
func fixableOnly(diags []lint.Diagnostic) []lint.Diagnostic {
	var fixable []lint.Diagnostic
	for _, d := range diags {
		if d.HasFix() {
			fixable = append(fixable, d)
		}
	}
	return fixable
}
