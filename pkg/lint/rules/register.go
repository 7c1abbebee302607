package rules

import "github.com/yaklabco/marklint/pkg/lint"

// builtin returns one instance of every built-in rule, grouped by the
// document surface each rule inspects.
func builtin() []lint.Rule {
	return []lint.Rule{
		// Whitespace
		NewTrailingWhitespaceRule(), // MD009
		NewHardTabsRule(),           // MD010
		NewMultipleBlankLinesRule(), // MD012
		NewHeadingBlankLinesRule(),  // MD022
		NewFinalNewlineRule(),       // MD047

		// Headings
		NewHeadingIncrementRule(),         // MD001
		NewHeadingStyleRule(),             // MD003
		NewNoMissingSpaceATXRule(),        // MD018
		NewNoMultipleSpaceATXRule(),       // MD019
		NewNoMissingSpaceClosedATXRule(),  // MD020
		NewNoMultipleSpaceClosedATXRule(), // MD021
		NewHeadingStartLeftRule(),         // MD023
		NewNoDuplicateHeadingRule(),       // MD024
		NewSingleH1Rule(),                 // MD025
		NewNoTrailingPunctuationRule(),    // MD026

		// Lists
		NewUnorderedListStyleRule(),   // MD004
		NewListIndentRule(),           // MD005
		NewULIndentRule(),             // MD007
		NewOrderedListIncrementRule(), // MD029
		NewListMarkerSpaceRule(),      // MD030
		NewBlanksAroundListsRule(),    // MD032

		// Line length
		NewMaxLineLengthRule(), // MD013

		// Blockquotes
		NewNoMultipleSpaceBlockquoteRule(), // MD027
		NewNoBlanksBlockquoteRule(),        // MD028

		// Links and images
		NewReversedLinkRule(),         // MD011
		NewNoBareURLsRule(),           // MD034
		NewLinkSpacesRule(),           // MD039
		NewEmptyLinkRule(),            // MD042
		NewImageAltTextRule(),         // MD045
		NewLinkDestinationStyleRule(), // MDL001

		// Horizontal rules
		NewHRStyleRule(), // MD035

		// Emphasis
		NewNoEmphasisAsHeadingRule(), // MD036
		NewNoSpaceInEmphasisRule(),   // MD037
		NewEmphasisStyleRule(),       // MD049
		NewStrongStyleRule(),         // MD050

		// Code blocks
		NewCommandsShowOutputRule(), // MD014
		NewBlanksAroundFencesRule(), // MD031
		NewNoSpaceInCodeRule(),      // MD038
		NewCodeBlockLanguageRule(),  // MD040
		NewCodeBlockStyleRule(),     // MD046
		NewCodeFenceStyleRule(),     // MD048

		// HTML
		NewInlineHTMLRule(), // MD033

		// Tables (GFM)
		NewTablePipeStyleRule(),   // MD055
		NewTableColumnCountRule(), // MD056
		NewTableBlankLinesRule(),  // MD058
		NewTableColumnStyleRule(), // MD060
		NewTableAlignmentRule(),   // MDL003

		// Document metadata
		NewFirstLineHeadingRule(), // MD041
		NewRequiredHeadingsRule(), // MD043
		NewProperNamesRule(),      // MD044
		NewFrontMatterValidRule(), // MDL002

		// Reference links and definitions
		NewLinkFragmentsRule(),       // MD051
		NewReferenceLinkImagesRule(), // MD052
		NewLinkImageRefDefsRule(),    // MD053
		NewLinkImageStyleRule(),      // MD054
		NewDescriptiveLinkTextRule(), // MD059

		// Workspace-aware
		NewExistingRelativeLinksRule(), // MD057
	}
}

// legacyAliases maps markdownlint names that differ from a rule's
// canonical Name() to the rule they resolve to. Names matching the
// canonical one need no entry.
//
//nolint:gochecknoglobals // Static alias table.
var legacyAliases = map[string]string{
	"single-title":  "MD025", // canonical: single-h1
	"first-line-h1": "MD041", // canonical: first-line-heading
}

// RegisterAll registers every built-in rule with the given registry.
func RegisterAll(registry *lint.Registry) {
	for _, rule := range builtin() {
		registry.Register(rule)
	}
}

// RegisterLegacyAliases registers alias names carried over from
// markdownlint, so configuration files written for it keep resolving.
func RegisterLegacyAliases(registry *lint.Registry) {
	for alias, id := range legacyAliases {
		registry.RegisterAlias(alias, id)
	}
}

// Importing the package is enough to populate the default registry.
//
//nolint:gochecknoinits // Rules self-register on import.
func init() {
	RegisterAll(lint.DefaultRegistry)
	RegisterLegacyAliases(lint.DefaultRegistry)
}
