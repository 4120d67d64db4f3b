package envfile

// CommentedAssignments returns comment lines that hold a disabled
// assignment such as "# API_KEY=abc". Key and Value are filled in from the
// comment text; the lines stay comments in the document.
func (f *File) CommentedAssignments() []Line {
	var out []Line
	for _, line := range f.lines {
		if line.Type != LineTypeComment {
			continue
		}
		s := trimLeftSpace(line.Raw)
		if s == "" || s[0] != '#' {
			continue
		}
		parsed, next, err := parseLine(trimLeftSpace(s[1:]), line.Num)
		if err != nil || next != nil || !parsed.IsEntry() {
			continue
		}
		c := *line
		c.Key = parsed.Key
		c.Value = parsed.Value
		c.InlineComment = parsed.InlineComment
		out = append(out, c)
	}
	return out
}
