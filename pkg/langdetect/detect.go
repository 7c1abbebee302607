// Package langdetect guesses the language of a code snippet. Rules use it
// to propose fence info strings for bare code blocks. Detection combines
// shebang parsing, a handful of cheap structural heuristics, and go-enry's
// statistical classifier as a last resort.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Fence tags for the languages the heuristics can name.
const (
	tagGo         = "go"
	tagPython     = "python"
	tagJavaScript = "javascript"
	tagJSON       = "json"
	tagYAML       = "yaml"
	tagHTML       = "html"
	tagSQL        = "sql"
	tagRust       = "rust"
	tagDockerfile = "dockerfile"
	tagText       = "text"
	tagBash       = "bash"
)

// source carries the precomputed views the sniffers share.
type source struct {
	raw     []byte
	trimmed []byte
	text    string
}

// Detect returns the fence tag for the given code content, or "text" when
// nothing matches with enough confidence.
func Detect(content []byte) string {
	if len(content) == 0 {
		return tagText
	}

	// A shebang names the interpreter outright.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return fenceTag(lang)
	}

	src := source{
		raw:     content,
		trimmed: bytes.TrimSpace(content),
		text:    string(content),
	}
	if tag := heuristicLanguage(src); tag != "" {
		return tag
	}

	// The classifier ranks candidates by token statistics; trust it only
	// when it reports the result as safe.
	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates()); safe && lang != "" {
		return fenceTag(lang)
	}

	return tagText
}

func classifierCandidates() []string {
	return []string{
		"Go", "Python", "Shell", "JavaScript", "TypeScript",
		"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
		"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
	}
}

// heuristicLanguage runs the structural sniffers in order of specificity.
// Earlier sniffers key on constructs later ones could misread, so the
// order matters: Go's "package " prefix before Python's import scan, SQL
// before the loose JavaScript keywords, YAML last of all.
func heuristicLanguage(src source) string {
	sniffers := []func(source) string{
		sniffGo,
		sniffPython,
		sniffHTML,
		sniffJSON,
		sniffDockerfile,
		sniffSQL,
		sniffRust,
		sniffJavaScript,
		sniffYAML,
	}
	for _, sniff := range sniffers {
		if tag := sniff(src); tag != "" {
			return tag
		}
	}
	return ""
}

func sniffGo(src source) string {
	if bytes.HasPrefix(src.trimmed, []byte("package ")) {
		return tagGo
	}
	return ""
}

func sniffPython(src source) string {
	// def with a closing paren-colon.
	if strings.Contains(src.text, "def ") && strings.Contains(src.text, "):") {
		return tagPython
	}
	// Imports, excluding Go's grouped form.
	if strings.Contains(src.text, "import ") && !strings.Contains(src.text, "import (") {
		if strings.Contains(src.text, "from ") || strings.HasPrefix(strings.TrimSpace(src.text), "import ") {
			return tagPython
		}
	}
	// Dunder names.
	if strings.Contains(src.text, "__name__") || strings.Contains(src.text, "__main__") {
		return tagPython
	}
	return ""
}

func sniffHTML(src source) string {
	lower := bytes.ToLower(src.trimmed)
	if bytes.Contains(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<head>")) ||
		bytes.Contains(lower, []byte("<body>")) {
		return tagHTML
	}
	return ""
}

func sniffJSON(src source) string {
	if (bytes.HasPrefix(src.trimmed, []byte("{")) || bytes.HasPrefix(src.trimmed, []byte("["))) &&
		bytes.Contains(src.trimmed, []byte(`"`)) {
		return tagJSON
	}
	return ""
}

func sniffDockerfile(src source) string {
	if bytes.HasPrefix(src.trimmed, []byte("FROM ")) ||
		(bytes.Contains(src.raw, []byte("\nFROM ")) && bytes.Contains(src.raw, []byte("\nRUN "))) ||
		(bytes.Contains(src.raw, []byte("WORKDIR ")) && bytes.Contains(src.raw, []byte("COPY "))) {
		return tagDockerfile
	}
	return ""
}

func sniffSQL(src source) string {
	upper := strings.TrimSpace(strings.ToUpper(src.text))
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, kw) {
			return tagSQL
		}
	}
	return ""
}

func sniffRust(src source) string {
	if strings.Contains(src.text, "fn main()") ||
		strings.Contains(src.text, "println!") ||
		strings.Contains(src.text, "let mut ") {
		return tagRust
	}
	return ""
}

func sniffJavaScript(src source) string {
	if strings.Contains(src.text, "=>") ||
		strings.Contains(src.text, "const ") ||
		strings.Contains(src.text, "let ") ||
		strings.Contains(src.text, "console.log") {
		return tagJavaScript
	}
	return ""
}

// sniffYAML counts mapping keys and root list items; two or more make the
// snippet YAML. Lines with parens, braces, or a leading quote look too
// much like code to count.
func sniffYAML(src source) string {
	hits := 0
	for line := range bytes.Lines(src.raw) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			hits++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			hits++
		}
	}
	if hits >= 2 {
		return tagYAML
	}
	return ""
}

// fenceTag maps go-enry language names onto fence info strings.
func fenceTag(lang string) string {
	if lang == "Shell" {
		return tagBash
	}
	return strings.ToLower(lang)
}
