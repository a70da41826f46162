package syntax

import (
	"strconv"

	"github.com/gogpu/gfxconv/ir"
)

// Lexer tokenizes the textual IR.
type Lexer struct {
	source string
	file   string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 5 characters of source.
	estTokens := len(source) / 5
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// SetFile sets the file name reported in errors.
func (l *Lexer) SetFile(name string) { l.file = name }

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
		Offset: l.pos,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	c := l.advance()

	switch c {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case '=':
		l.addToken(TokenEqual)
	case '<':
		l.addToken(TokenLess)
	case '>':
		l.addToken(TokenGreater)
	case '!':
		l.addToken(TokenBang)
	case '?':
		l.addToken(TokenQuestion)
		l.dimensionSeparator()
	case '-':
		if l.match('>') {
			l.addToken(TokenArrow)
		} else {
			l.addToken(TokenMinus)
		}
	case '/':
		if !l.match('/') {
			return l.errorf("unexpected '/'")
		}
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}
	case '%':
		if !isIdentChar(l.peek()) {
			return l.errorf("expected value name after '%%'")
		}
		l.suffixID()
		l.addToken(TokenValueID)
	case '@':
		if !isIdentChar(l.peek()) {
			return l.errorf("expected symbol name after '@'")
		}
		l.suffixID()
		l.addToken(TokenSymbol)
	case '"':
		return l.str()

	// Whitespace
	case ' ', '\r', '\t':
	case '\n':
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(c):
			l.number()
		case isAlpha(c) || c == '_':
			l.identifier()
		default:
			l.addToken(TokenError)
		}
	}

	return nil
}

// dimensionSeparator splits the 'x' that follows a dimension into its own
// token, so "4x?xf32" lexes as 4, x, ?, x, f32.
func (l *Lexer) dimensionSeparator() {
	if l.peek() != 'x' {
		return
	}
	next := l.peekNext()
	if !isDigit(next) && !isAlpha(next) && next != '?' && next != '!' {
		return
	}
	l.start = l.pos
	l.advance()
	l.addToken(TokenDimX)
}

func (l *Lexer) number() {
	// Hex literal; a dimension list never starts with a 0 extent followed by x.
	if l.source[l.start] == '0' && l.peek() == 'x' && isHexDigit(l.peekNext()) {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		l.addToken(TokenIntLiteral)
		return
	}

	for isDigit(l.peek()) {
		l.advance()
	}
	l.addToken(TokenIntLiteral)
	l.dimensionSeparator()
}

func (l *Lexer) identifier() {
	for isIdentChar(l.peek()) {
		l.advance()
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) suffixID() {
	for isIdentChar(l.peek()) || l.peek() == '$' {
		l.advance()
	}
}

func (l *Lexer) str() error {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\\' {
			l.advance()
		}
		if l.peek() == '\n' {
			return l.errorf("unterminated string")
		}
		l.advance()
	}
	if l.isAtEnd() {
		return l.errorf("unterminated string")
	}
	l.advance() // closing quote

	raw := l.source[l.start:l.pos]
	value, err := strconv.Unquote(raw)
	if err != nil {
		return l.errorf("invalid string literal %s", raw)
	}
	l.tokens = append(l.tokens, Token{
		Kind:   TokenString,
		Lexeme: value,
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
		Offset: l.start,
	})
	return nil
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
		Offset: l.start,
	})
}

func (l *Lexer) errorf(format string, args ...any) error {
	col := l.column - (l.pos - l.start)
	return newSourceError(ir.Location{File: l.file, Line: l.line, Column: col}, l.source, format, args...)
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	l.column++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '.'
}
