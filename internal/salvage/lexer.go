package salvage

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota // keywords and names, namespaced names included
	tokVar                    // $name
	tokPunct                  // any other single character
	tokDoc                    // /** ... */
)

type token struct {
	kind tokenKind
	text string
	line int // 1-based line the token starts on
}

func (t token) is(punct string) bool {
	return t.kind == tokPunct && t.text == punct
}

func (t token) keyword(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

// lexer produces the tokens needed to find class members. String literals,
// numbers and non-doc comments are consumed without producing tokens.
type lexer struct {
	src  string
	pos  int
	line int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, l.line, fmt.Sprintf(format, args...))
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

// advance moves n bytes forward, counting newlines.
func (l *lexer) advance(n int) {
	end := l.pos + n
	if end > len(l.src) {
		end = len(l.src)
	}
	l.line += strings.Count(l.src[l.pos:end], "\n")
	l.pos = end
}

func (l *lexer) emit(kind tokenKind, text string, line int) {
	l.toks = append(l.toks, token{kind: kind, text: text, line: line})
}

func (l *lexer) run() error {
	l.skipInline()
	for l.pos < len(l.src) {
		c := l.peek(0)
		switch {
		case c == '?' && l.peek(1) == '>':
			l.advance(2)
			l.skipInline()
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			l.advance(1)
		case c == '#' && l.peek(1) == '[':
			l.emit(tokPunct, "#", l.line)
			l.advance(1)
		case c == '#' || (c == '/' && l.peek(1) == '/'):
			l.skipLineComment()
		case c == '/' && l.peek(1) == '*':
			if err := l.blockComment(); err != nil {
				return err
			}
		case c == '\'' || c == '"' || c == '`':
			if err := l.quoted(c); err != nil {
				return err
			}
		case c == '<' && strings.HasPrefix(l.src[l.pos:], "<<<"):
			ok, err := l.heredoc()
			if err != nil {
				return err
			}
			if !ok {
				l.emit(tokPunct, "<", l.line)
				l.advance(1)
			}
		case c == '$' && isIdentStart(l.peek(1)):
			start, line := l.pos, l.line
			l.advance(1)
			l.advance(l.identLen())
			l.emit(tokVar, l.src[start:l.pos], line)
		case isIdentStart(c) || c == '\\':
			start, line := l.pos, l.line
			l.advance(l.identLen())
			l.emit(tokIdent, l.src[start:l.pos], line)
		case c >= '0' && c <= '9':
			for l.pos < len(l.src) && (isIdentChar(l.peek(0)) || l.peek(0) == '.') {
				l.advance(1)
			}
		default:
			l.emit(tokPunct, string(c), l.line)
			l.advance(1)
		}
	}
	return nil
}

// skipInline skips text outside <?php ... ?> tags.
func (l *lexer) skipInline() {
	i := strings.Index(l.src[l.pos:], "<?")
	if i < 0 {
		l.advance(len(l.src) - l.pos)
		return
	}
	l.advance(i + 2)
	switch {
	case len(l.src)-l.pos >= 3 && strings.EqualFold(l.src[l.pos:l.pos+3], "php"):
		l.advance(3)
	case l.peek(0) == '=':
		l.advance(1)
	}
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) {
		c := l.peek(0)
		if c == '\n' || (c == '?' && l.peek(1) == '>') {
			return
		}
		l.advance(1)
	}
}

func (l *lexer) blockComment() error {
	end := strings.Index(l.src[l.pos+2:], "*/")
	if end < 0 {
		return l.errorf("unterminated comment")
	}
	start, line := l.pos, l.line
	l.advance(end + 4)
	text := l.src[start:l.pos]
	if strings.HasPrefix(text, "/**") && text != "/**/" {
		l.emit(tokDoc, text, line)
	}
	return nil
}

func (l *lexer) quoted(q byte) error {
	line := l.line
	l.advance(1)
	for l.pos < len(l.src) {
		switch l.peek(0) {
		case '\\':
			l.advance(2)
		case q:
			l.advance(1)
			return nil
		default:
			l.advance(1)
		}
	}
	return fmt.Errorf("%w: line %d: unterminated string", ErrSyntax, line)
}

// heredoc consumes <<<ID ... ID and <<<'ID' ... ID. It reports false when
// the input at pos is not a heredoc opener.
func (l *lexer) heredoc() (bool, error) {
	rest := l.src[l.pos+3:]
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	quote := byte(0)
	if i < len(rest) && (rest[i] == '\'' || rest[i] == '"') {
		quote = rest[i]
		i++
	}
	start := i
	for i < len(rest) && isIdentChar(rest[i]) {
		i++
	}
	if i == start || !isIdentStart(rest[start]) {
		return false, nil
	}
	id := rest[start:i]
	if quote != 0 {
		if i >= len(rest) || rest[i] != quote {
			return false, nil
		}
		i++
	}
	nl := strings.IndexByte(rest[i:], '\n')
	if nl < 0 || strings.TrimSpace(rest[i:i+nl]) != "" {
		return false, nil
	}

	line := l.line
	l.advance(3 + i + nl + 1)
	for l.pos < len(l.src) {
		eol := strings.IndexByte(l.src[l.pos:], '\n')
		if eol < 0 {
			eol = len(l.src) - l.pos
		}
		text := l.src[l.pos : l.pos+eol]
		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(trimmed, id) && (len(trimmed) == len(id) || !isIdentChar(trimmed[len(id)])) {
			l.advance(len(text) - len(trimmed) + len(id))
			return true, nil
		}
		l.advance(eol + 1)
	}
	return false, fmt.Errorf("%w: line %d: unterminated heredoc %s", ErrSyntax, line, id)
}

func (l *lexer) identLen() int {
	n := 0
	for l.pos+n < len(l.src) {
		c := l.src[l.pos+n]
		if !isIdentChar(c) && c != '\\' {
			break
		}
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
