package query

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIRI
	tokPName
	tokVar
	tokString
	tokLang
	tokDatatype
	tokNumber
	tokBlank
	tokWord
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q at offset %d", t.text, t.pos)
}

type lexer struct {
	src string
	pos int
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	var out []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if t.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", ErrSyntax, l.pos, fmt.Sprintf(format, args...))
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '<':
		end := strings.IndexByte(l.src[l.pos:], '>')
		if end < 0 {
			return token{}, l.errorf("unterminated IRI")
		}
		iri := l.src[l.pos+1 : l.pos+end]
		if strings.ContainsAny(iri, " \t\n\r<\"{}|^`") {
			return token{}, l.errorf("invalid IRI %q", iri)
		}
		l.pos += end + 1
		return token{tokIRI, iri, start}, nil

	case c == '?' || c == '$':
		l.pos++
		name := l.name(false)
		if name == "" {
			return token{}, l.errorf("empty variable name")
		}
		return token{tokVar, name, start}, nil

	case c == '"' || c == '\'':
		s, err := l.str(c)
		if err != nil {
			return token{}, err
		}
		return token{tokString, s, start}, nil

	case c == '@':
		l.pos++
		tag := l.name(false)
		for l.pos < len(l.src) && l.src[l.pos] == '-' {
			l.pos++
			tag += "-" + l.name(false)
		}
		if tag == "" {
			return token{}, l.errorf("empty language tag")
		}
		return token{tokLang, tag, start}, nil

	case c == '^' && strings.HasPrefix(l.src[l.pos:], "^^"):
		l.pos += 2
		return token{tokDatatype, "^^", start}, nil

	case isDigit(c) || (c == '+' || c == '-') && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
			l.pos++
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
		return token{tokNumber, l.src[start:l.pos], start}, nil

	case c == '_' && strings.HasPrefix(l.src[l.pos:], "_:"):
		l.pos += 2
		label := l.name(true)
		if label == "" {
			return token{}, l.errorf("empty blank node label")
		}
		return token{tokBlank, label, start}, nil

	case isNameStart(c) || c == ':':
		prefix := l.name(true)
		if l.pos < len(l.src) && l.src[l.pos] == ':' {
			l.pos++
			local := l.name(true)
			return token{tokPName, prefix + ":" + local, start}, nil
		}
		return token{tokWord, prefix, start}, nil

	case strings.IndexByte("{}().;,*/[]!=^|", c) >= 0:
		l.pos++
		return token{tokPunct, string(c), start}, nil
	}
	return token{}, l.errorf("unexpected character %q", c)
}

// name reads a run of name characters. Dots are allowed inside dotted
// names but never at the end.
func (l *lexer) name(dotted bool) string {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isNameStart(c) || isDigit(c) || c == '_' || c == '-' && dotted || c >= 0x80 {
			l.pos++
			continue
		}
		if dotted && c == '.' && l.pos+1 < len(l.src) && isNameChar(l.src[l.pos+1]) {
			l.pos++
			continue
		}
		break
	}
	return l.src[start:l.pos]
}

func (l *lexer) str(quote byte) (string, error) {
	long := strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3))
	if long {
		l.pos += 3
	} else {
		l.pos++
	}

	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case long && strings.HasPrefix(l.src[l.pos:], strings.Repeat(string(quote), 3)):
			l.pos += 3
			return b.String(), nil
		case !long && c == quote:
			l.pos++
			return b.String(), nil
		case !long && (c == '\n' || c == '\r'):
			return "", l.errorf("newline in string")
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				return "", l.errorf("dangling escape")
			}
			l.pos++
			switch e := l.src[l.pos]; e {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '"', '\'', '\\':
				b.WriteByte(e)
			default:
				return "", l.errorf("unknown escape \\%c", e)
			}
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", l.errorf("unterminated string")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '_' || c == '-' || c >= 0x80
}
