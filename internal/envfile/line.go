package envfile

type LineType int

const (
	// LineTypeComment covers blank lines and lines starting with '#'.
	LineTypeComment LineType = iota
	// LineTypeRaw is anything that is not a comment and not an assignment.
	// It is written back untouched.
	LineTypeRaw
	LineTypeEntry
)

func (t LineType) String() string {
	switch t {
	case LineTypeComment:
		return "comment"
	case LineTypeRaw:
		return "raw"
	case LineTypeEntry:
		return "entry"
	default:
		return "unknown"
	}
}

// Line is one record of a parsed document. Raw holds the exact source text
// (several physical lines for multi-line values) and is what gets written
// back; Key, Value and InlineComment are only set for entries.
type Line struct {
	Type          LineType
	Num           int
	Raw           string
	Key           string
	Value         string
	InlineComment string
}

func (l *Line) IsEntry() bool {
	return l.Type == LineTypeEntry
}

func blankLine() *Line {
	return &Line{Type: LineTypeComment}
}
