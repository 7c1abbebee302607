package refs

import (
	"testing"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/mdcontext"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "foo", "foo"},
		{"uppercase", "FOO", "foo"},
		{"mixed case", "FoO BaR", "foo bar"},
		{"extra spaces", "foo  bar", "foo bar"},
		{"leading spaces", "  foo", "foo"},
		{"trailing spaces", "foo  ", "foo"},
		{"tabs", "foo\tbar", "foo bar"},
		{"newlines", "foo\nbar", "foo bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractFragment(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"no fragment", "https://example.com", ""},
		{"with fragment", "https://example.com#section", "#section"},
		{"only fragment", "#section", "#section"},
		{"empty fragment", "https://example.com#", "#"},
		{"relative with fragment", "page.md#heading", "#heading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFragment(tt.url)
			if got != tt.expected {
				t.Errorf("ExtractFragment(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestIsGitHubLineReference(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"L20", true},
		{"L1", true},
		{"L19C5", true},
		{"L19C5-L21C11", true},
		{"L19-L21", true},
		{"l20", true},      // lowercase
		{"heading", false}, // not a line reference
		{"L", false},       // no number
		{"", false},        // empty
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := isGitHubLineReference(tt.id)
			if got != tt.expected {
				t.Errorf("isGitHubLineReference(%q) = %v, want %v", tt.id, got, tt.expected)
			}
		})
	}
}

func TestContext_ValidateFragment(t *testing.T) {
	ctx := NewContext(nil, "")

	// Add some anchors
	ctx.Anchors.Add(&Anchor{ID: "heading-one", Source: AnchorFromHeading})
	ctx.Anchors.Add(&Anchor{ID: "custom-id", Source: AnchorFromHTMLID})

	tests := []struct {
		name     string
		fragment string
		expected bool
	}{
		{"empty fragment", "", true},
		{"just hash", "#", true},
		{"special top", "#top", true},
		{"special TOP", "#TOP", true},
		{"github line ref", "#L20", true},
		{"valid anchor", "#heading-one", true},
		{"valid html anchor", "#custom-id", true},
		{"invalid anchor", "#nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ctx.ValidateFragment(tt.fragment)
			if got != tt.expected {
				t.Errorf("ValidateFragment(%q) = %v, want %v", tt.fragment, got, tt.expected)
			}
		})
	}
}

func TestContext_ResolveLabel(t *testing.T) {
	ctx := NewContext(nil, "")

	// Add a definition
	def := &ReferenceDefinition{
		Label:           "Example",
		NormalizedLabel: "example",
		Destination:     "https://example.com",
	}
	ctx.Definitions["example"] = def

	tests := []struct {
		name     string
		label    string
		expected bool
	}{
		{"exact match", "example", true},
		{"different case", "Example", true},
		{"uppercase", "EXAMPLE", true},
		{"not found", "other", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ctx.ResolveLabel(tt.label)
			if (got != nil) != tt.expected {
				t.Errorf("ResolveLabel(%q) found = %v, want %v", tt.label, got != nil, tt.expected)
			}
		})
	}
}

func TestContext_UnusedDefinitions(t *testing.T) {
	ctx := NewContext(nil, "")

	// Add definitions
	used := &ReferenceDefinition{Label: "used", NormalizedLabel: "used", UsageCount: 1}
	unused := &ReferenceDefinition{Label: "unused", NormalizedLabel: "unused", UsageCount: 0}
	duplicate := &ReferenceDefinition{Label: "dup", NormalizedLabel: "dup", UsageCount: 0, IsDuplicate: true}

	ctx.AllDefinitions = []*ReferenceDefinition{used, unused, duplicate}

	got := ctx.UnusedDefinitions()
	if len(got) != 1 {
		t.Errorf("UnusedDefinitions() returned %d items, want 1", len(got))
	}
	if len(got) > 0 && got[0] != unused {
		t.Errorf("UnusedDefinitions() returned wrong definition")
	}
}

func TestContext_DuplicateDefinitions(t *testing.T) {
	ctx := NewContext(nil, "")

	// Add definitions
	first := &ReferenceDefinition{Label: "dup", NormalizedLabel: "dup", IsDuplicate: false}
	duplicate := &ReferenceDefinition{Label: "dup", NormalizedLabel: "dup", IsDuplicate: true}
	unique := &ReferenceDefinition{Label: "unique", NormalizedLabel: "unique", IsDuplicate: false}

	ctx.AllDefinitions = []*ReferenceDefinition{first, duplicate, unique}

	got := ctx.DuplicateDefinitions()
	if len(got) != 1 {
		t.Errorf("DuplicateDefinitions() returned %d items, want 1", len(got))
	}
	if len(got) > 0 && got[0] != duplicate {
		t.Errorf("DuplicateDefinitions() returned wrong definition")
	}
}

func TestAnchorMap_GenerateAnchor(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"simple", "Hello World", "hello-world"},
		{"uppercase", "API Reference", "api-reference"},
		{"numbers", "Version 1.0.0", "version-100"},
		{"punctuation", "Don't Panic!", "dont-panic"},
		{"c++", "C++ Guide", "c-guide"},
		{"underscores", "foo_bar_baz", "foo_bar_baz"},
		{"multiple spaces", "hello   world", "hello-world"},
		{"leading trailing spaces", "  hello  ", "hello"},
		{"only special", "!!!???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAnchorMap() // Fresh map for each test
			got := m.GenerateAnchor(tt.text)
			if got != tt.expected {
				t.Errorf("GenerateAnchor(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestAnchorMap_DuplicateHandling(t *testing.T) {
	m := NewAnchorMap()

	// Generate same heading multiple times
	first := m.GenerateAnchor("Hello World")
	second := m.GenerateAnchor("Hello World")
	third := m.GenerateAnchor("Hello World")

	if first != "hello-world" {
		t.Errorf("first anchor = %q, want %q", first, "hello-world")
	}
	if second != "hello-world-1" {
		t.Errorf("second anchor = %q, want %q", second, "hello-world-1")
	}
	if third != "hello-world-2" {
		t.Errorf("third anchor = %q, want %q", third, "hello-world-2")
	}
}

func TestAnchorMap_Lookup(t *testing.T) {
	anchorMap := NewAnchorMap()

	anchorMap.AddFromHeading("Hello World", 1)

	// Test Has
	if !anchorMap.Has("hello-world") {
		t.Error("Has('hello-world') = false, want true")
	}
	if anchorMap.Has("nonexistent") {
		t.Error("Has('nonexistent') = true, want false")
	}

	// Test HasIgnoreCase
	if !anchorMap.HasIgnoreCase("HELLO-WORLD") {
		t.Error("HasIgnoreCase('HELLO-WORLD') = false, want true")
	}

	// Test Lookup
	anchor := anchorMap.Lookup("hello-world")
	if anchor == nil {
		t.Fatal("Lookup('hello-world') = nil")
	}
	if anchor.Text != "Hello World" {
		t.Errorf("anchor.Text = %q, want %q", anchor.Text, "Hello World")
	}

	// Test LookupIgnoreCase
	anchor = anchorMap.LookupIgnoreCase("HELLO-WORLD")
	if anchor == nil {
		t.Fatal("LookupIgnoreCase('HELLO-WORLD') = nil")
	}
}

func TestAnchorMap_Count(t *testing.T) {
	anchorMap := NewAnchorMap()

	anchorMap.AddFromHeading("First", 1)
	anchorMap.AddFromHeading("Second", 3)
	anchorMap.AddFromHeading("First", 5) // duplicate

	if anchorMap.Count() != 3 { // first, second, first-1
		t.Errorf("Count() = %d, want 3", anchorMap.Count())
	}
}

func collectFrom(t *testing.T, content string) *Context {
	t.Helper()
	doc := mdcontext.New([]byte(content), config.DialectStandard)
	return Collect(doc, "test.md")
}

func findUsage(ctx *Context, style ReferenceStyle, text string) *ReferenceUsage {
	for _, u := range ctx.Usages {
		if u.Style == style && u.Text == text {
			return u
		}
	}
	return nil
}

func TestCollect_Definitions(t *testing.T) {
	content := "# Title\n" +
		"\n" +
		"[ref]: https://example.com/one\n" +
		"[Other Label]: /two \"With Title\"\n" +
		"[ref]: /duplicate\n"

	ctx := collectFrom(t, content)

	if len(ctx.AllDefinitions) != 3 {
		t.Fatalf("AllDefinitions = %d, want 3", len(ctx.AllDefinitions))
	}

	first := ctx.Definitions["ref"]
	if first == nil {
		t.Fatal("Definitions[ref] = nil")
	}
	if first.Destination != "https://example.com/one" {
		t.Errorf("first ref destination = %q", first.Destination)
	}
	if first.LineNumber != 3 {
		t.Errorf("first ref line = %d, want 3", first.LineNumber)
	}

	other := ctx.Definitions["other label"]
	if other == nil {
		t.Fatal("Definitions[other label] = nil")
	}
	if other.Title != "With Title" {
		t.Errorf("title = %q, want %q", other.Title, "With Title")
	}

	dups := ctx.DuplicateDefinitions()
	if len(dups) != 1 {
		t.Fatalf("DuplicateDefinitions = %d, want 1", len(dups))
	}
	if dups[0].Destination != "/duplicate" {
		t.Errorf("duplicate destination = %q", dups[0].Destination)
	}
}

func TestCollect_UsageStyles(t *testing.T) {
	content := "Some [inline](https://example.com/page#intro) link.\n" +
		"\n" +
		"A [full][ref] reference and a [collapsed][] one.\n" +
		"\n" +
		"Bare [ref] shortcut and ![ref] image shortcut.\n" +
		"\n" +
		"Visit <https://example.com> directly.\n" +
		"\n" +
		"[ref]: https://example.com/target#title\n" +
		"[collapsed]: /collapsed\n"

	ctx := collectFrom(t, content)

	inline := findUsage(ctx, StyleInline, "inline")
	if inline == nil {
		t.Fatal("no inline usage found")
	}
	if inline.Fragment != "#intro" {
		t.Errorf("inline fragment = %q, want %q", inline.Fragment, "#intro")
	}

	full := findUsage(ctx, StyleFull, "full")
	if full == nil {
		t.Fatal("no full reference usage found")
	}
	if full.Label != "ref" {
		t.Errorf("full label = %q, want %q", full.Label, "ref")
	}
	if full.ResolvedDefinition == nil {
		t.Fatal("full reference did not resolve")
	}
	if full.Destination != "https://example.com/target#title" {
		t.Errorf("full destination = %q", full.Destination)
	}
	if full.Fragment != "#title" {
		t.Errorf("full fragment = %q, want %q", full.Fragment, "#title")
	}

	collapsed := findUsage(ctx, StyleCollapsed, "collapsed")
	if collapsed == nil {
		t.Fatal("no collapsed usage found")
	}
	if collapsed.NormalizedLabel != "collapsed" {
		t.Errorf("collapsed label = %q", collapsed.NormalizedLabel)
	}

	shortcut := findUsage(ctx, StyleShortcut, "ref")
	if shortcut == nil {
		t.Fatal("no shortcut usage found")
	}
	if shortcut.IsImage {
		t.Error("first shortcut should be a link")
	}
	if shortcut.Line != 5 {
		t.Errorf("shortcut line = %d, want 5", shortcut.Line)
	}

	var imageShortcut *ReferenceUsage
	for _, u := range ctx.Usages {
		if u.Style == StyleShortcut && u.IsImage {
			imageShortcut = u
		}
	}
	if imageShortcut == nil {
		t.Fatal("no image shortcut usage found")
	}

	auto := findUsage(ctx, StyleAutolink, "https://example.com")
	if auto == nil {
		t.Fatal("no autolink usage found")
	}

	// full + two shortcuts resolve against ref
	if got := ctx.Definitions["ref"].UsageCount; got != 3 {
		t.Errorf("ref usage count = %d, want 3", got)
	}
	if got := ctx.Definitions["collapsed"].UsageCount; got != 1 {
		t.Errorf("collapsed usage count = %d, want 1", got)
	}
}

func TestCollect_ShortcutNeedsDefinition(t *testing.T) {
	content := "This [bracketed] text has no definition.\n" +
		"\n" +
		"[known]: /somewhere\n"

	ctx := collectFrom(t, content)

	if u := findUsage(ctx, StyleShortcut, "bracketed"); u != nil {
		t.Error("undefined bracket counted as shortcut usage")
	}
	if got := ctx.Definitions["known"].UsageCount; got != 0 {
		t.Errorf("known usage count = %d, want 0", got)
	}
	unused := ctx.UnusedDefinitions()
	if len(unused) != 1 || unused[0].NormalizedLabel != "known" {
		t.Errorf("UnusedDefinitions = %v", unused)
	}
}

func TestCollect_SkipsCodeRegions(t *testing.T) {
	content := "Look at `[ref]` inside a code span.\n" +
		"\n" +
		"```\n" +
		"[ref]: /not-a-definition\n" +
		"[ref]\n" +
		"```\n" +
		"\n" +
		"[ref]: /real\n"

	ctx := collectFrom(t, content)

	if len(ctx.AllDefinitions) != 1 {
		t.Fatalf("AllDefinitions = %d, want 1", len(ctx.AllDefinitions))
	}
	if ctx.Definitions["ref"].Destination != "/real" {
		t.Errorf("destination = %q, want /real", ctx.Definitions["ref"].Destination)
	}
	if got := ctx.Definitions["ref"].UsageCount; got != 0 {
		t.Errorf("usage count = %d, want 0 (code regions are inert)", got)
	}
}

func TestCollect_HeadingAnchors(t *testing.T) {
	content := "# Hello World\n" +
		"\n" +
		"## Hello World\n" +
		"\n" +
		"### Custom Section {#my-id}\n" +
		"\n" +
		"<a id=\"html-anchor\"></a>\n" +
		"\n" +
		"#NotAHeading\n"

	ctx := collectFrom(t, content)

	if !ctx.Anchors.Has("hello-world") {
		t.Error("missing anchor hello-world")
	}
	if !ctx.Anchors.Has("hello-world-1") {
		t.Error("missing duplicate anchor hello-world-1")
	}

	custom := ctx.Anchors.Lookup("my-id")
	if custom == nil {
		t.Fatal("missing custom id anchor")
	}
	if custom.Source != AnchorFromCustomID {
		t.Errorf("custom anchor source = %v", custom.Source)
	}
	if ctx.Anchors.Has("custom-section-my-id") || ctx.Anchors.Has("custom-section") {
		t.Error("custom id should replace the generated anchor")
	}

	html := ctx.Anchors.Lookup("html-anchor")
	if html == nil {
		t.Fatal("missing html id anchor")
	}
	if html.Source != AnchorFromHTMLID {
		t.Errorf("html anchor source = %v", html.Source)
	}
	if html.Line != 7 {
		t.Errorf("html anchor line = %d, want 7", html.Line)
	}

	if ctx.Anchors.Has("notaheading") {
		t.Error("hash glued to text must not produce an anchor")
	}

	if !ctx.ValidateFragment("#hello-world-1") {
		t.Error("ValidateFragment rejected a generated duplicate anchor")
	}
	if ctx.ValidateFragment("#missing") {
		t.Error("ValidateFragment accepted an unknown anchor")
	}
}

func TestCollect_SetextHeadingAnchor(t *testing.T) {
	content := "Setext Title\n" +
		"============\n"

	ctx := collectFrom(t, content)

	if !ctx.Anchors.Has("setext-title") {
		t.Error("missing setext heading anchor")
	}
	a := ctx.Anchors.Lookup("setext-title")
	if a.Line != 1 {
		t.Errorf("setext anchor line = %d, want 1", a.Line)
	}
}

func TestCollect_NilDocument(t *testing.T) {
	ctx := Collect(nil, "x.md")
	if ctx == nil {
		t.Fatal("Collect(nil) returned nil context")
	}
	if len(ctx.Usages) != 0 || len(ctx.AllDefinitions) != 0 {
		t.Error("nil document should produce an empty context")
	}
}
