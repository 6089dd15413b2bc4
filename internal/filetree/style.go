package filetree

import (
	"fmt"
	"strings"
)

const (
	// StyleClassic draws Unicode box-drawing connectors.
	StyleClassic = "classic"
	// StyleDash draws ASCII pipe and backtick connectors.
	StyleDash = "dash"
	// StyleArrow draws Unicode connectors finished with an arrow head.
	StyleArrow = "arrow"
	// StylePlus draws ASCII plus and backslash connectors.
	StylePlus = "plus"
	// StylePlain draws bare fill characters without connector glyphs.
	StylePlain = "plain"

	// DefaultStyleName selects the style used when none is configured.
	DefaultStyleName = StyleClassic
	// DefaultIndentWidth is the conventional fill width per nesting level.
	DefaultIndentWidth = 2

	segmentSeparator = " "
	paddingCharacter = " "

	unknownStyleErrorFormat = "%w: %q (choose one of %s)"
)

// Style is one named connector glyph set. Branch marks a non-final sibling and
// End the final one; Vertical and Space extend ancestor prefixes under those
// two cases; Fill is repeated indent times between the connector glyph and the
// entry name; Tip optionally terminates the fill run.
type Style struct {
	Branch   string
	End      string
	Vertical string
	Space    string
	Fill     string
	Tip      string
}

// The registry is closed: an unknown name is a configuration error, and new
// styles are added here rather than injected at run time.
var styleRegistry = map[string]Style{
	StyleClassic: {Branch: "├", End: "└", Vertical: "│", Space: " ", Fill: "─"},
	StyleDash:    {Branch: "|", End: "`", Vertical: "|", Space: " ", Fill: "-"},
	StyleArrow:   {Branch: "├", End: "└", Vertical: "│", Space: " ", Fill: "─", Tip: ">"},
	StylePlus:    {Branch: "+", End: `\`, Vertical: "|", Space: " ", Fill: "-"},
	StylePlain:   {Fill: "-"},
}

// StyleNames returns the registered style names in deterministic order.
func StyleNames() []string {
	return []string{StyleClassic, StyleDash, StyleArrow, StylePlus, StylePlain}
}

// ResolveStyle looks up a registered style by name. An empty name selects the
// default style; an unrecognized name fails with ErrInvalidStyle.
func ResolveStyle(styleName string) (Style, error) {
	if styleName == "" {
		styleName = DefaultStyleName
	}
	style, registered := styleRegistry[strings.ToLower(styleName)]
	if !registered {
		return Style{}, fmt.Errorf(unknownStyleErrorFormat, ErrInvalidStyle, styleName, strings.Join(StyleNames(), ", "))
	}
	return style, nil
}

// styleSegments holds the four prefix building blocks expanded for one indent
// width. All four render to the same visual width so nested levels align.
type styleSegments struct {
	branch   string
	end      string
	vertical string
	space    string
}

func (style Style) segments(indentWidth int) styleSegments {
	fillRun := strings.Repeat(style.Fill, indentWidth) + style.Tip
	paddingRun := strings.Repeat(paddingCharacter, indentWidth+len([]rune(style.Tip)))
	return styleSegments{
		branch:   style.Branch + fillRun + segmentSeparator,
		end:      style.End + fillRun + segmentSeparator,
		vertical: style.Vertical + paddingRun + segmentSeparator,
		space:    style.Space + paddingRun + segmentSeparator,
	}
}
