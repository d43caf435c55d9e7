package engine

import "strings"

// rewriter turns facet source into source zygomys reads. It rewrites:
//
//   - :keyword tokens into "__kw_keyword" string literals, so keywords never
//     clash with user definitions;
//   - hyphens joining two words (at-min) into underscores, since zygomys
//     reads them as subtraction;
//   - ; line comments into // comments;
//   - #| block comments |# into blanks, keeping line breaks so error line
//     numbers still match the script.
//
// String literals pass through untouched.
type rewriter struct {
	src string
	pos int
	out strings.Builder
}

func preprocessSource(source string) string {
	r := &rewriter{src: source}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		r.step()
	}
	return r.out.String()
}

func (r *rewriter) step() {
	c := r.src[r.pos]
	switch {
	case c == '"':
		r.quoted('"', true)
	case c == '`':
		r.quoted('`', false)
	case c == ';':
		r.lineComment()
	case strings.HasPrefix(r.src[r.pos:], "#|"):
		r.blockComment()
	case c == ':':
		r.colon()
	case c == '-' && r.joinsWords():
		r.out.WriteByte('_')
		r.pos++
	default:
		r.out.WriteByte(c)
		r.pos++
	}
}

// quoted copies a literal delimited by q, honoring backslash escapes when
// escapes is set. An unterminated literal runs to the end of the source.
func (r *rewriter) quoted(q byte, escapes bool) {
	start := r.pos
	r.pos++
	for r.pos < len(r.src) && r.src[r.pos] != q {
		if escapes && r.src[r.pos] == '\\' {
			r.pos++
		}
		r.pos++
	}
	r.pos = min(r.pos+1, len(r.src))
	r.out.WriteString(r.src[start:r.pos])
}

func (r *rewriter) lineComment() {
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.pos++
	}
	end := strings.IndexByte(r.src[r.pos:], '\n')
	if end < 0 {
		end = len(r.src) - r.pos
	}
	r.out.WriteString("//")
	r.out.WriteString(r.src[r.pos : r.pos+end])
	r.pos += end
}

func (r *rewriter) blockComment() {
	end := strings.Index(r.src[r.pos+2:], "|#")
	stop := len(r.src)
	if end >= 0 {
		stop = r.pos + 2 + end + 2
	}
	for ; r.pos < stop; r.pos++ {
		if r.src[r.pos] == '\n' {
			r.out.WriteByte('\n')
		} else {
			r.out.WriteByte(' ')
		}
	}
}

// colon handles a ':' that may start a keyword. := is left alone.
func (r *rewriter) colon() {
	if r.pos+1 >= len(r.src) || !isLetter(r.src[r.pos+1]) {
		r.out.WriteByte(':')
		r.pos++
		return
	}
	end := r.pos + 1
	for end < len(r.src) && isKeywordByte(r.src[end]) {
		end++
	}
	r.out.WriteByte('"')
	r.out.WriteString(kwPrefix)
	r.out.WriteString(r.src[r.pos+1 : end])
	r.out.WriteByte('"')
	r.pos = end
}

// joinsWords reports whether the hyphen at pos sits inside an identifier
// rather than acting as a minus sign.
func (r *rewriter) joinsWords() bool {
	return r.pos > 0 && r.pos+1 < len(r.src) &&
		isWordByte(r.src[r.pos-1]) && isLetter(r.src[r.pos+1])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isLetter(c) || ('0' <= c && c <= '9') || c == '_'
}

func isKeywordByte(c byte) bool {
	return isWordByte(c) || c == '-'
}
