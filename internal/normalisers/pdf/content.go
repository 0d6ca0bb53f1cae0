package pdf

import (
	"strconv"
	"strings"
)

// TextFromContentStream returns the text drawn by the text-showing
// operators (Tj, TJ, ' and ") of a decoded page content stream. Text
// positioning operators that move to a new line produce line breaks, and
// large negative kerning inside TJ arrays produces spaces.
//
// Strings are decoded as PDFDocEncoding/Latin-1; text in fonts with custom
// CID encodings comes out as unreadable glyph codes and is dropped.
func TextFromContentStream(content []byte) string {
	var (
		out     strings.Builder
		operand []string
		inArray bool
		array   strings.Builder
	)
	lx := &lexer{data: content}

	newline := func() {
		s := out.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, kind, ok := lx.next()
		if !ok {
			break
		}
		switch kind {
		case tokString:
			if inArray {
				array.WriteString(tok)
			} else {
				operand = append(operand, tok)
			}
		case tokArrayStart:
			inArray = true
			array.Reset()
		case tokArrayEnd:
			inArray = false
			operand = append(operand, array.String())
		case tokNumber:
			if inArray {
				if n, err := strconv.ParseFloat(tok, 64); err == nil && n < -200 {
					array.WriteByte(' ')
				}
			}
		case tokOperator:
			switch tok {
			case "Tj", "TJ":
				writeShown(&out, operand)
			case "'", "\"":
				newline()
				writeShown(&out, operand)
			case "T*", "Td", "TD", "ET":
				newline()
			case "Tm":
				newline()
			}
			operand = operand[:0]
		}
	}

	return strings.TrimSpace(out.String())
}

func writeShown(out *strings.Builder, operand []string) {
	if len(operand) == 0 {
		return
	}
	out.WriteString(printable(operand[len(operand)-1]))
}

// printable drops control characters left over from undecodable fonts.
func printable(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\t' || r == ' ' || r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type tokenKind int

const (
	tokOther tokenKind = iota
	tokString
	tokNumber
	tokArrayStart
	tokArrayEnd
	tokOperator
)

// lexer is a minimal content stream tokenizer. It understands just enough
// of the syntax (strings, arrays, numbers, names, dictionaries, inline
// images) to find text operators and their operands.
type lexer struct {
	data []byte
	pos  int
}

func (l *lexer) next() (string, tokenKind, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return "", tokOther, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		return l.literalString(), tokString, true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return "<<", tokOther, true
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return ">>", tokOther, true
	case c == '<':
		return l.hexString(), tokString, true
	case c == '[':
		l.pos++
		return "[", tokArrayStart, true
	case c == ']':
		l.pos++
		return "]", tokArrayEnd, true
	case c == '/':
		l.pos++
		return "/" + l.word(), tokOther, true
	case c == '%':
		for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
			l.pos++
		}
		return l.next()
	case c == '+' || c == '-' || c == '.' || c >= '0' && c <= '9':
		return l.word(), tokNumber, true
	default:
		w := l.word()
		if w == "" {
			l.pos++
			return string(c), tokOperator, true
		}
		if w == "BI" {
			l.skipInlineImage()
			return "BI", tokOther, true
		}
		return w, tokOperator, true
	}
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) && isSpace(l.data[l.pos]) {
		l.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) skipInlineImage() {
	// Inline image data runs until the EI operator.
	for l.pos+2 < len(l.data) {
		if isSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 >= len(l.data) || isSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func (l *lexer) literalString() string {
	l.pos++ // (
	var b []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return latin1(b)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					b = append(b, byte(v))
				} else {
					b = append(b, e)
				}
			}
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return latin1(b)
			}
			b = append(b, c)
		default:
			b = append(b, c)
		}
	}
	return latin1(b)
}

func (l *lexer) hexString() string {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		c := l.data[l.pos]
		if isHex(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	b := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, _ := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		b = append(b, byte(v))
	}
	// UTF-16BE with byte order mark.
	if len(b) >= 2 && b[0] == 0xfe && b[1] == 0xff {
		return utf16be(b[2:])
	}
	return latin1(b)
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func latin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func utf16be(b []byte) string {
	var r []rune
	for i := 0; i+1 < len(b); i += 2 {
		r = append(r, rune(b[i])<<8|rune(b[i+1]))
	}
	return string(r)
}
