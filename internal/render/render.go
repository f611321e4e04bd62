package render

import "strings"

// Markdown renders content with glamour
func Markdown(content string, opts Options) (string, error) {
	tr, release, err := shared.acquire(opts)
	if err != nil {
		return "", err
	}
	defer release()

	return tr.Render(content)
}

// Reply renders a model reply, falling back to Plain when glamour fails.
// Surrounding blank lines added by glamour are trimmed.
func Reply(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return Plain(content)
	}
	return strings.Trim(out, "\n")
}
