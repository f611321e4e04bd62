// Package render turns model replies into terminal output: glamour markdown,
// a light segment parser for code blocks, and the text sent to speech synthesis.
package render

// Options controls how replies are drawn.
type Options struct {
	Width int    // wrap column
	Style string // glamour style name or path to a JSON style

	EnableEmoji      bool // :smile: becomes 😄
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions wraps at 80 columns with the dark style.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy wrapping at width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// normalized resolves the style so that option sets drawing the same output
// compare equal.
func (o Options) normalized() Options {
	o.Style = resolveStyle(o.Style)
	if o.Width <= 0 {
		o.Width = DefaultOptions().Width
	}
	return o
}
