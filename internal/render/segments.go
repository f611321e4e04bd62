package render

import (
	"regexp"
	"strings"
)

// SegmentKind identifies how a piece of a reply is displayed
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentBold
	SegmentInlineCode
	SegmentCodeBlock
)

// Segment is one run of a reply. For code blocks Text holds the code without fences.
type Segment struct {
	Kind     SegmentKind
	Text     string
	Language string
}

// defaultLanguage labels fenced blocks that name no language
const defaultLanguage = "code"

// Fenced blocks come first so their backticks are not taken as inline code.
var segmentPattern = regexp.MustCompile("(?s:```[\\w-]*\\n.*?```)|\\*\\*.*?\\*\\*|`[^`\\n]+`")

var fenceLanguage = regexp.MustCompile("^```([\\w-]+)")

// ParseSegments splits a reply into text, bold, inline code and code block runs.
// Empty text runs are dropped.
func ParseSegments(text string) []Segment {
	var segments []Segment
	last := 0

	for _, loc := range segmentPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Kind: SegmentText, Text: text[last:loc[0]]})
		}
		segments = append(segments, classify(text[loc[0]:loc[1]]))
		last = loc[1]
	}

	if last < len(text) {
		segments = append(segments, Segment{Kind: SegmentText, Text: text[last:]})
	}
	return segments
}

func classify(match string) Segment {
	switch {
	case strings.HasPrefix(match, "```"):
		return codeBlock(match)
	case strings.HasPrefix(match, "**"):
		return Segment{Kind: SegmentBold, Text: match[2 : len(match)-2]}
	default:
		return Segment{Kind: SegmentInlineCode, Text: match[1 : len(match)-1]}
	}
}

func codeBlock(match string) Segment {
	lang := defaultLanguage
	if m := fenceLanguage.FindStringSubmatch(match); m != nil {
		lang = m[1]
	}

	_, body, _ := strings.Cut(match, "\n")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSuffix(body, "\n")

	return Segment{Kind: SegmentCodeBlock, Text: body, Language: lang}
}

// CodeBlocks returns only the fenced code blocks of text, in order.
func CodeBlocks(text string) []Segment {
	var blocks []Segment
	for _, seg := range ParseSegments(text) {
		if seg.Kind == SegmentCodeBlock {
			blocks = append(blocks, seg)
		}
	}
	return blocks
}
