package envfile

import (
	"strings"
)

const bom = "\xEF\xBB\xBF"

// multiline accumulates a quoted value whose closing quote has not been
// seen yet.
type multiline struct {
	key   string
	quote byte
	start int
	value strings.Builder
	raw   strings.Builder
}

// Parse splits contents into line records. Joining the Raw of every
// returned line with "\n" gives back contents (minus a leading BOM and with
// line endings normalized to LF).
func Parse(contents string) ([]*Line, error) {
	contents = strings.TrimPrefix(contents, bom)
	contents = strings.ReplaceAll(contents, "\r\n", "\n")
	contents = strings.ReplaceAll(contents, "\r", "\n")
	if contents == "" {
		return []*Line{}, nil
	}

	var (
		lines []*Line
		ml    *multiline
	)

	for i, raw := range strings.Split(contents, "\n") {
		num := i + 1

		if ml != nil {
			ml.value.WriteByte('\n')
			ml.value.WriteString(raw)
			ml.raw.WriteByte('\n')
			ml.raw.WriteString(raw)

			if endsWithClosingQuote(raw, ml.quote) {
				lines = append(lines, &Line{
					Type:  LineTypeEntry,
					Num:   ml.start,
					Raw:   ml.raw.String(),
					Key:   ml.key,
					Value: unquote(ml.value.String(), ml.quote),
				})
				ml = nil
			}
			continue
		}

		line, next, err := parseLine(raw, num)
		if err != nil {
			return nil, err
		}
		if next != nil {
			ml = next
			continue
		}
		lines = append(lines, line)
	}

	if ml != nil {
		return nil, &ParseError{Line: ml.start, Key: ml.key, Reason: "unterminated multiline value"}
	}

	return lines, nil
}

// parseLine handles a physical line in the normal state. It returns either
// a finished line or the start of a multi-line value.
func parseLine(raw string, num int) (*Line, *multiline, error) {
	trimmed := trimLeftSpace(raw)
	if raw == "" || (trimmed != "" && trimmed[0] == '#') {
		return &Line{Type: LineTypeComment, Num: num, Raw: raw}, nil, nil
	}

	key, valuePart, ok := splitAssignment(stripExport(raw))
	if !ok {
		return &Line{Type: LineTypeRaw, Num: num, Raw: raw}, nil, nil
	}
	if !ValidKey(key) {
		return nil, nil, &ParseError{Line: num, Key: key, Reason: "invalid key"}
	}

	value := trimLeftSpace(valuePart)
	if value == "" {
		return &Line{Type: LineTypeEntry, Num: num, Raw: raw, Key: key}, nil, nil
	}

	if q := value[0]; q == '"' || q == '\'' {
		end := closingQuote(value, q)
		if end < 0 {
			ml := &multiline{key: key, quote: q, start: num}
			ml.value.WriteString(trimRightSpace(value))
			ml.raw.WriteString(raw)
			return nil, ml, nil
		}
		comment := ""
		if idx := inlineCommentStart(value[end+1:]); idx >= 0 {
			comment = value[end+1+idx:]
		}
		return &Line{
			Type:          LineTypeEntry,
			Num:           num,
			Raw:           raw,
			Key:           key,
			Value:         unquote(value[:end+1], q),
			InlineComment: comment,
		}, nil, nil
	}

	value = trimRightSpace(valuePart)
	comment := ""
	if idx := inlineCommentStart(value); idx >= 0 {
		comment = value[idx:]
		value = trimRightSpace(value[:idx])
	}

	return &Line{
		Type:          LineTypeEntry,
		Num:           num,
		Raw:           raw,
		Key:           key,
		Value:         value,
		InlineComment: comment,
	}, nil, nil
}

// ValidKey reports whether key only uses [A-Za-z0-9_.:-] and is not empty.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '.', c == ':', c == '-':
		default:
			return false
		}
	}
	return true
}

func stripExport(line string) string {
	s := trimLeftSpace(line)
	const kw = "export"
	if len(s) > len(kw) && strings.EqualFold(s[:len(kw)], kw) && isSpace(s[len(kw)]) {
		return trimLeftSpace(s[len(kw):])
	}
	return line
}

// splitAssignment matches "key<ws>=<ws>" at the start of line, where key is
// a run of bytes that are neither whitespace nor '='.
func splitAssignment(line string) (key, rest string, ok bool) {
	s := trimLeftSpace(line)
	i := 0
	for i < len(s) && !isSpace(s[i]) && s[i] != '=' {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	key = s[:i]
	j := i
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '=' {
		return "", "", false
	}
	return key, trimLeftSpace(s[j+1:]), true
}

// closingQuote returns the index of the first unescaped q after s[0], or -1.
func closingQuote(s string, q byte) int {
	for i := 1; i < len(s); i++ {
		if s[i] == q && !isEscaped(s, i) {
			return i
		}
	}
	return -1
}

// isEscaped reports whether s[pos] is preceded by an odd number of backslashes.
func isEscaped(s string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func endsWithClosingQuote(line string, q byte) bool {
	s := trimRightSpace(line)
	if s == "" || s[len(s)-1] != q {
		return false
	}
	return !isEscaped(s, len(s)-1)
}

// inlineCommentStart finds the leftmost whitespace run that is directly
// followed by '#'. The returned index is the start of that run.
func inlineCommentStart(s string) int {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			continue
		}
		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '#' {
			return i
		}
		i = j
	}
	return -1
}

func unquote(s string, q byte) string {
	s = trimLeftSpace(s)
	if s == "" {
		return s
	}
	if s[0] == q {
		s = s[1:]
	}
	if t := trimRightSpace(s); t != "" && t[len(t)-1] == q {
		s = t[:len(t)-1]
	}
	if q == '"' {
		return unescapeDouble(s)
	}
	return strings.ReplaceAll(s, `\'`, `'`)
}

func unescapeDouble(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}

func trimRightSpace(s string) string {
	i := len(s)
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return s[:i]
}
