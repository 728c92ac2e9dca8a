package bundle

import (
	"path"
	"strings"
)

// commentStyle describes how a language marks comments. Block comments are
// the C family's /* */ pairs; line markers run to end of line.
type commentStyle struct {
	line  []string
	block bool
}

// commentStyles maps file extensions to comment syntax. Files with an
// unlisted extension pass through max-compression with comments intact.
var commentStyles = map[string]commentStyle{
	".go":    {line: []string{"//"}, block: true},
	".c":     {line: []string{"//"}, block: true},
	".h":     {line: []string{"//"}, block: true},
	".cpp":   {line: []string{"//"}, block: true},
	".hpp":   {line: []string{"//"}, block: true},
	".java":  {line: []string{"//"}, block: true},
	".js":    {line: []string{"//"}, block: true},
	".jsx":   {line: []string{"//"}, block: true},
	".ts":    {line: []string{"//"}, block: true},
	".tsx":   {line: []string{"//"}, block: true},
	".rs":    {line: []string{"//"}, block: true},
	".css":   {block: true},
	".py":    {line: []string{"#"}},
	".rb":    {line: []string{"#"}},
	".sh":    {line: []string{"#"}},
	".bash":  {line: []string{"#"}},
	".yaml":  {line: []string{"#"}},
	".yml":   {line: []string{"#"}},
	".toml":  {line: []string{"#"}},
	".tf":    {line: []string{"#", "//"}, block: true},
	".sql":   {line: []string{"--"}},
	".lua":   {line: []string{"--"}},
	".hs":    {line: []string{"--"}},
	".proto": {line: []string{"//"}, block: true},
}

// CompressText strips trailing whitespace from every line and collapses runs
// of blank lines into a single blank line. Line content is otherwise
// preserved byte for byte.
func CompressText(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// StripComments removes comments from content based on the file's extension.
// Comment markers inside string literals are left alone. Lines that held
// nothing but a comment are dropped. Unrecognized extensions are returned
// unchanged.
func StripComments(content, filePath string) string {
	style, ok := commentStyles[strings.ToLower(path.Ext(filePath))]
	if !ok {
		return content
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	inBlock := false
	for _, line := range lines {
		stripped, nowInBlock := stripLine(line, style, inBlock)
		wasComment := strings.TrimSpace(line) != "" && strings.TrimSpace(stripped) == ""
		inBlock = nowInBlock
		if wasComment {
			continue
		}
		out = append(out, stripped)
	}
	return strings.Join(out, "\n")
}

// stripLine removes comment text from a single line, tracking block comment
// state across calls. Quote state never carries across lines; multi-line
// string literals in languages that have them can lose comment-looking text,
// which is acceptable for a lossy compression mode.
func stripLine(line string, style commentStyle, inBlock bool) (string, bool) {
	var b strings.Builder
	var quote byte
	i := 0
	for i < len(line) {
		c := line[i]

		if inBlock {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inBlock = false
				i += 2
				continue
			}
			i++
			continue
		}

		if quote != 0 {
			if c == '\\' && i+1 < len(line) {
				b.WriteByte(c)
				b.WriteByte(line[i+1])
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
			i++
			continue
		}

		if c == '"' || c == '\'' || c == '`' {
			quote = c
			b.WriteByte(c)
			i++
			continue
		}

		if style.block && c == '/' && i+1 < len(line) && line[i+1] == '*' {
			inBlock = true
			i += 2
			continue
		}

		if marker := matchLineComment(line[i:], style.line); marker != "" {
			// Rest of the line is comment text.
			return strings.TrimRight(b.String(), " \t"), inBlock
		}

		b.WriteByte(c)
		i++
	}
	return b.String(), inBlock
}

// matchLineComment returns the marker that begins at rest, if any.
func matchLineComment(rest string, markers []string) string {
	for _, m := range markers {
		if strings.HasPrefix(rest, m) {
			return m
		}
	}
	return ""
}

// transform applies the textual mode to a single file's content.
func (e Encoding) transform(content, filePath string) string {
	switch e.Mode {
	case ModeCompressed:
		return CompressText(content)
	case ModeMaxCompressed:
		return CompressText(StripComments(content, filePath))
	default:
		return content
	}
}
