package rules

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/marklint/pkg/config"
	"github.com/yaklabco/marklint/pkg/lint"
	"github.com/yaklabco/marklint/pkg/lint/refs"
	"github.com/yaklabco/marklint/pkg/workspace"
)

// markdownSourceExtensions are tried when a link target has no
// extension (wiki-style links) or points at compiled .html output.
var markdownSourceExtensions = []string{
	".md", ".markdown", ".mdx", ".mkd", ".mkdn", ".mdown", ".mdwn", ".qmd", ".rmd",
}

// linkSchemeRe matches destinations with an explicit URI scheme,
// which are never filesystem paths (RFC 3986 scheme syntax).
var linkSchemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// ExistingRelativeLinksRule checks that relative links point to files
// that exist on disk.
type ExistingRelativeLinksRule struct {
	lint.BaseRule
}

// NewExistingRelativeLinksRule creates a new existing relative links rule.
func NewExistingRelativeLinksRule() *ExistingRelativeLinksRule {
	return &ExistingRelativeLinksRule{
		BaseRule: lint.NewBaseRule(
			"MD057",
			"existing-relative-links",
			"Relative links should point to existing files",
			[]string{"links"},
			false, // Not auto-fixable (target must be created or link rewritten).
		),
	}
}

// DefaultEnabled returns false - the rule probes the filesystem, so it
// is opt-in.
func (r *ExistingRelativeLinksRule) DefaultEnabled() bool {
	return false
}

// Apply checks every relative link and reference definition against
// the filesystem. Existence probes go through the shared workspace
// cache keyed by the document's content hash, so re-lints of an
// unchanged file never touch the disk twice.
func (r *ExistingRelativeLinksRule) Apply(ctx *lint.RuleContext) ([]lint.Diagnostic, error) {
	if ctx.Doc == nil || ctx.Workspace == nil || ctx.FilePath == "" {
		return nil, nil
	}
	if !ctx.Doc.LikelyHasLinks() && !ctx.Doc.LikelyHasImages() {
		return nil, nil
	}

	refCtx := ctx.RefContext()
	if refCtx == nil {
		return nil, nil
	}

	baseDir := filepath.Dir(ctx.FilePath)
	docHash := workspace.HashContent(ctx.Doc.Content())

	var diags []lint.Diagnostic

	// Inline usages carry their own destination. Reference-style
	// usages resolve through a definition, which is validated once
	// below rather than once per usage.
	for _, usage := range refCtx.Usages {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if usage.Style != refs.StyleInline {
			continue
		}
		if r.destinationResolves(ctx, baseDir, docHash, usage.Destination) {
			continue
		}

		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, usageSpan(ctx, usage),
			fmt.Sprintf("Relative link '%s' does not exist", usage.Destination)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Update the link to point to an existing file").
			Build()
		diags = append(diags, diag)
	}

	for _, def := range refCtx.AllDefinitions {
		if ctx.Cancelled() {
			return diags, fmt.Errorf("rule cancelled: %w", ctx.Ctx.Err())
		}
		if r.destinationResolves(ctx, baseDir, docHash, def.Destination) {
			continue
		}

		span := lint.SpanForByteRange(ctx.Doc, def.ByteStart, def.ByteEnd)
		diag := lint.NewDiagnosticAt(r.ID(), ctx.FilePath, span,
			fmt.Sprintf("Relative link '%s' does not exist", def.Destination)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("Update the reference definition to point to an existing file").
			Build()
		diags = append(diags, diag)
	}

	return diags, nil
}

// destinationResolves reports whether the destination needs no
// diagnostic: it is external, non-filesystem, or exists on disk.
func (r *ExistingRelativeLinksRule) destinationResolves(
	ctx *lint.RuleContext,
	baseDir string,
	docHash workspace.Hash,
	dest string,
) bool {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") {
		return true
	}
	if isExternalDestination(dest) {
		return true
	}
	// Site-absolute paths are routes on the published site, not local
	// files; they cannot be validated against this file's directory.
	if strings.HasPrefix(dest, "/") {
		return true
	}

	target := stripQueryAndFragment(dest)
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	if target == "" {
		return true
	}

	return r.targetExists(ctx.Workspace, docHash, filepath.Join(baseDir, filepath.FromSlash(target)))
}

// targetExists probes the path through the workspace cache, trying
// markdown extensions for extensionless links and markdown sources
// for compiled .html targets.
func (r *ExistingRelativeLinksRule) targetExists(ws *workspace.Workspace, docHash workspace.Hash, target string) bool {
	if ws.Files.Exists(target, docHash) {
		return true
	}

	ext := strings.ToLower(filepath.Ext(target))
	switch ext {
	case "":
		for _, mdExt := range markdownSourceExtensions {
			if ws.Files.Exists(target+mdExt, docHash) {
				return true
			}
		}
	case ".html", ".htm":
		stem := strings.TrimSuffix(target, filepath.Ext(target))
		for _, mdExt := range markdownSourceExtensions {
			if ws.Files.Exists(stem+mdExt, docHash) {
				return true
			}
		}
	}

	return false
}

// isExternalDestination reports whether the destination is not a
// local filesystem path: explicit schemes, protocol-relative URLs,
// bare www domains, email addresses, template variables, and build
// tool path aliases.
func isExternalDestination(dest string) bool {
	if linkSchemeRe.MatchString(dest) {
		return true
	}
	if strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "www.") {
		return true
	}
	if strings.HasPrefix(dest, "{{") || strings.HasPrefix(dest, "{%") {
		return true
	}
	if strings.ContainsRune(dest, '@') {
		return true
	}
	if strings.HasPrefix(dest, "~") {
		return true
	}
	// Bare .com domains without a scheme are broken links of a
	// different kind; skipping them avoids misleading "file does not
	// exist" reports.
	return strings.HasSuffix(dest, ".com")
}

// stripQueryAndFragment cuts the destination at the first '?' or '#'
// so existence checks see only the path part.
func stripQueryAndFragment(dest string) string {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i]
	}
	return dest
}
