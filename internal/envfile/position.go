package envfile

type positionKind int

const (
	positionBottom positionKind = iota
	positionTop
	positionAfter
	positionBefore
)

// Position says where SetAt inserts a key that is not in the document yet.
// The zero value is Bottom.
type Position struct {
	kind positionKind
	key  string
}

func Top() Position {
	return Position{kind: positionTop}
}

func Bottom() Position {
	return Position{kind: positionBottom}
}

// After places the new entry right after the last entry for key, or where
// Bottom would when key is absent.
func After(key string) Position {
	return Position{kind: positionAfter, key: key}
}

// Before places the new entry at the first entry for key, or where Bottom
// would when key is absent.
func Before(key string) Position {
	return Position{kind: positionBefore, key: key}
}

// ParsePosition maps "top", "bottom", "after:KEY" and "before:KEY" to a
// Position. An empty string is Bottom.
func ParsePosition(s string) (Position, bool) {
	switch {
	case s == "" || s == "bottom":
		return Bottom(), true
	case s == "top":
		return Top(), true
	case len(s) > len("after:") && s[:len("after:")] == "after:":
		return After(s[len("after:"):]), true
	case len(s) > len("before:") && s[:len("before:")] == "before:":
		return Before(s[len("before:"):]), true
	}
	return Position{}, false
}

func (p Position) String() string {
	switch p.kind {
	case positionTop:
		return "top"
	case positionAfter:
		return "after:" + p.key
	case positionBefore:
		return "before:" + p.key
	default:
		return "bottom"
	}
}

// end is the append index: after the last record, including a final empty
// record left by a trailing newline.
func (f *File) end() int {
	return len(f.lines)
}

func (f *File) resolve(pos Position) int {
	end := f.end()
	switch pos.kind {
	case positionTop:
		return 0
	case positionAfter:
		for i := end - 1; i >= 0; i-- {
			if line := f.lines[i]; line.IsEntry() && line.Key == pos.key {
				return i + 1
			}
		}
	case positionBefore:
		for i, line := range f.lines {
			if line.IsEntry() && line.Key == pos.key {
				return i
			}
		}
	}
	return end
}

// Insertion carries the position and spacing for one Set call. It is a
// value built per call, so nothing carries over to later calls.
//
//	f.After("DB_HOST").Spacing(1).Set("DB_PORT", "5432")
type Insertion struct {
	file    *File
	pos     Position
	spacing int
}

func (f *File) After(key string) *Insertion  { return f.insertion().After(key) }
func (f *File) Before(key string) *Insertion { return f.insertion().Before(key) }
func (f *File) Top() *Insertion              { return f.insertion().Top() }
func (f *File) Bottom() *Insertion           { return f.insertion().Bottom() }
func (f *File) Spacing(n int) *Insertion     { return f.insertion().Spacing(n) }

func (f *File) insertion() *Insertion {
	return &Insertion{file: f}
}

func (in *Insertion) After(key string) *Insertion {
	in.pos = After(key)
	return in
}

func (in *Insertion) Before(key string) *Insertion {
	in.pos = Before(key)
	return in
}

func (in *Insertion) Top() *Insertion {
	in.pos = Top()
	return in
}

func (in *Insertion) Bottom() *Insertion {
	in.pos = Bottom()
	return in
}

// Spacing sets the number of blank lines written before a new entry.
// Negative values count as zero.
func (in *Insertion) Spacing(n int) *Insertion {
	in.spacing = max(n, 0)
	return in
}

func (in *Insertion) Set(key, value string) error {
	return in.file.SetAt(key, value, in.pos, in.spacing)
}
