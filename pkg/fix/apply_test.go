package fix_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/marklint/pkg/fix"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.TextEdit
		want    string
	}{
		{
			name:    "no edits returns original",
			content: "# Title\n",
			edits:   nil,
			want:    "# Title\n",
		},
		{
			name:    "strip trailing spaces",
			content: "some text   \nmore\n",
			edits: []fix.TextEdit{
				{StartOffset: 9, EndOffset: 12, NewText: ""},
			},
			want: "some text\nmore\n",
		},
		{
			name:    "append final newline",
			content: "last line",
			edits: []fix.TextEdit{
				{StartOffset: 9, EndOffset: 9, NewText: "\n"},
			},
			want: "last line\n",
		},
		{
			name:    "normalize heading marker",
			content: "#Title\n",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 1, NewText: "# "},
			},
			want: "# Title\n",
		},
		{
			name:    "collapse blank run and strip tab",
			content: "a\n\n\n\tb\n",
			edits: []fix.TextEdit{
				{StartOffset: 2, EndOffset: 3, NewText: ""},
				{StartOffset: 4, EndOffset: 5, NewText: "    "},
			},
			want: "a\n\n    b\n",
		},
		{
			name:    "adjacent replacements",
			content: "***bold***",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 3, NewText: "**"},
				{StartOffset: 3, EndOffset: 7, NewText: "bold"},
				{StartOffset: 7, EndOffset: 10, NewText: "**"},
			},
			want: "**bold**",
		},
		{
			name:    "replace whole content",
			content: "old",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 3, NewText: "new"},
			},
			want: "new",
		},
		{
			name:    "insert at start",
			content: "Title\n",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 0, NewText: "# "},
			},
			want: "# Title\n",
		},
		{
			name:    "insert into empty content",
			content: "",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 0, NewText: "# Title\n"},
			},
			want: "# Title\n",
		},
		{
			name:    "delete everything",
			content: "remove me",
			edits: []fix.TextEdit{
				{StartOffset: 0, EndOffset: 9, NewText: ""},
			},
			want: "",
		},
		{
			name:    "replacement longer than original",
			content: "a-b",
			edits: []fix.TextEdit{
				{StartOffset: 1, EndOffset: 2, NewText: " -- "},
			},
			want: "a -- b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fix.ApplyEdits([]byte(tt.content), tt.edits)
			if string(got) != tt.want {
				t.Errorf("ApplyEdits() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyEdits_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	content := []byte("nothing   \nto see\n")
	snapshot := strings.Clone(string(content))

	edits := []fix.TextEdit{
		{StartOffset: 7, EndOffset: 10, NewText: ""},
	}
	_ = fix.ApplyEdits(content, edits)

	if string(content) != snapshot {
		t.Error("ApplyEdits modified the input slice")
	}
}

func TestTextEdit_Kind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edit       fix.TextEdit
		wantInsert bool
		wantDelete bool
	}{
		{"insertion", fix.TextEdit{StartOffset: 3, EndOffset: 3, NewText: "\n"}, true, false},
		{"deletion", fix.TextEdit{StartOffset: 0, EndOffset: 2, NewText: ""}, false, true},
		{"replacement", fix.TextEdit{StartOffset: 0, EndOffset: 2, NewText: "x"}, false, false},
		{"empty edit", fix.TextEdit{StartOffset: 5, EndOffset: 5, NewText: ""}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.edit.IsInsert(); got != tt.wantInsert {
				t.Errorf("IsInsert() = %v, want %v", got, tt.wantInsert)
			}
			if got := tt.edit.IsDelete(); got != tt.wantDelete {
				t.Errorf("IsDelete() = %v, want %v", got, tt.wantDelete)
			}
		})
	}
}

func TestEditBuilder(t *testing.T) {
	t.Parallel()

	builder := fix.NewEditBuilder()
	builder.ReplaceRange(0, 1, "# ")
	builder.Insert(9, "\n")
	builder.Delete(4, 7)

	if len(builder.Edits) != 3 {
		t.Fatalf("Edits = %d, want 3", len(builder.Edits))
	}

	if !builder.Edits[1].IsInsert() {
		t.Error("Insert should produce an insertion edit")
	}
	if !builder.Edits[2].IsDelete() {
		t.Error("Delete should produce a deletion edit")
	}
	if builder.Edits[0].NewText != "# " {
		t.Errorf("NewText = %q, want %q", builder.Edits[0].NewText, "# ")
	}
}
