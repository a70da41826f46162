// Package syntax parses the generic textual form of the IR.
package syntax

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent      // bare identifier, possibly dotted: func.func, llvm.ptr
	TokenIntLiteral // 42, 0x1f
	TokenString     // "..."
	TokenValueID    // %name
	TokenSymbol     // @name

	// Punctuation
	TokenMinus    // -
	TokenEqual    // =
	TokenLess     // <
	TokenGreater  // >
	TokenComma    // ,
	TokenColon    // :
	TokenBang     // !
	TokenQuestion // ?
	TokenDimX     // x between dimensions, as in 4x?xf32
	TokenArrow    // ->

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]
)

var tokenNames = [...]string{
	TokenEOF:          "end of input",
	TokenError:        "invalid character",
	TokenIdent:        "identifier",
	TokenIntLiteral:   "integer",
	TokenString:       "string",
	TokenValueID:      "value",
	TokenSymbol:       "symbol",
	TokenMinus:        "'-'",
	TokenEqual:        "'='",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenComma:        "','",
	TokenColon:        "':'",
	TokenBang:         "'!'",
	TokenQuestion:     "'?'",
	TokenDimX:         "'x'",
	TokenArrow:        "'->'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBrace:    "'{'",
	TokenRightBrace:   "'}'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return "unknown"
}

// Token is a lexical token with its position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
	Offset int // byte offset of the token start
}
