package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gogpu/gfxconv/ir"
)

// Parser parses IR tokens into an ir.Module.
type Parser struct {
	tokens  []Token
	current int
	source  string
	file    string
	errors  SourceErrors

	// values maps %names to values in the function being parsed.
	values map[string]*ir.Value
}

// NewParser creates a new parser for the given tokens. The source is used
// for error context and layout text.
func NewParser(tokens []Token, source string) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		source:  source,
	}
}

// SetFile sets the file name recorded in op locations and errors.
func (p *Parser) SetFile(name string) { p.file = name }

// Parse parses the given source text into a module.
func Parse(source string) (*ir.Module, error) {
	return ParseFile("", source)
}

// ParseFile parses source, recording file in every location.
func ParseFile(file, source string) (*ir.Module, error) {
	lexer := NewLexer(source)
	lexer.SetFile(file)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, errors.Wrap(err, "tokenization failed")
	}
	p := NewParser(tokens, source)
	p.SetFile(file)
	return p.Parse()
}

// Parse parses the tokens and returns a Module.
func (p *Parser) Parse() (*ir.Module, error) {
	module := &ir.Module{}

	wrapped := false
	if p.checkIdent("module") {
		p.advance()
		if err := p.expect(TokenLeftBrace); err != nil {
			return nil, err
		}
		wrapped = true
	}

	for !p.isAtEnd() && !(wrapped && p.check(TokenRightBrace)) {
		f, err := p.function()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		module.Funcs = append(module.Funcs, f)
	}

	if wrapped {
		if err := p.expect(TokenRightBrace); err != nil {
			p.errors = append(p.errors, err)
		}
	}

	if len(p.errors) > 0 {
		return module, p.errors
	}
	return module, nil
}

// function parses func.func @name(%a: T, ...) { ops }.
func (p *Parser) function() (*ir.Func, *SourceError) {
	start := p.peek()
	if !p.checkIdent("func.func") {
		return nil, p.errorAt(start, "unexpected %s, expected 'func.func'", describe(start))
	}
	p.advance()

	if !p.check(TokenSymbol) {
		return nil, p.errorAt(p.peek(), "expected function name")
	}
	name := strings.TrimPrefix(p.advance().Lexeme, "@")

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	var argNames []string
	var argTypes []ir.Type
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		if !p.check(TokenValueID) {
			return nil, p.errorAt(p.peek(), "expected argument name")
		}
		argNames = append(argNames, strings.TrimPrefix(p.advance().Lexeme, "%"))
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		t, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, t)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	f := ir.NewFunc(name, argTypes...)
	f.Loc = p.loc(start)
	p.values = make(map[string]*ir.Value, len(argNames)+16)
	for i, n := range argNames {
		if _, dup := p.values[n]; dup {
			return nil, p.errorAt(start, "duplicate argument %%%s", n)
		}
		f.Arg(i).Name = n
		p.values[n] = f.Arg(i)
	}

	if err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		op, err := p.operation()
		if err != nil {
			return nil, err
		}
		f.Body.Append(op)
	}
	if err := p.expect(TokenRightBrace); err != nil {
		return nil, err
	}
	return f, nil
}

// operation parses one op in generic form.
func (p *Parser) operation() (*ir.Op, *SourceError) {
	start := p.peek()

	var resultNames []Token
	if p.check(TokenValueID) {
		for {
			if !p.check(TokenValueID) {
				return nil, p.errorAt(p.peek(), "expected result name")
			}
			resultNames = append(resultNames, p.advance())
			if !p.match(TokenComma) {
				break
			}
		}
		if err := p.expect(TokenEqual); err != nil {
			return nil, err
		}
	}

	if !p.check(TokenString) {
		return nil, p.errorAt(p.peek(), "expected quoted operation name")
	}
	nameTok := p.advance()

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	var operands []*ir.Value
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		tok := p.peek()
		if !p.match(TokenValueID) {
			return nil, p.errorAt(tok, "expected operand")
		}
		v, ok := p.values[strings.TrimPrefix(tok.Lexeme, "%")]
		if !ok {
			return nil, p.errorAt(tok, "use of undefined value %s", tok.Lexeme)
		}
		operands = append(operands, v)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	var attrs ir.Attributes
	if p.check(TokenLeftBrace) {
		a, err := p.attrDict()
		if err != nil {
			return nil, err
		}
		attrs = a
	}

	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	sigTok := p.peek()
	inputs, results, err := p.functionType()
	if err != nil {
		return nil, err
	}

	if len(inputs) != len(operands) {
		return nil, p.errorAt(sigTok, "%q has %d operands but its type lists %d", nameTok.Lexeme, len(operands), len(inputs))
	}
	for i, t := range inputs {
		if !ir.Equal(t, operands[i].Type) {
			return nil, p.errorAt(sigTok, "operand %d of %q has type %s, but the signature says %s",
				i, nameTok.Lexeme, operands[i].Type, t)
		}
	}
	if len(results) != len(resultNames) {
		return nil, p.errorAt(sigTok, "%q defines %d values but its type lists %d results",
			nameTok.Lexeme, len(resultNames), len(results))
	}

	op := ir.NewOp(nameTok.Lexeme, operands, results, attrs)
	op.Loc = p.loc(start)
	for i, r := range resultNames {
		n := strings.TrimPrefix(r.Lexeme, "%")
		if _, dup := p.values[n]; dup {
			return nil, p.errorAt(r, "redefinition of value %s", r.Lexeme)
		}
		p.values[n] = op.Result(i)
	}
	return op, nil
}

// functionType parses (T, ...) -> T | (T, ...) -> (T, ...).
func (p *Parser) functionType() ([]ir.Type, []ir.Type, *SourceError) {
	inputs, err := p.typeList()
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(TokenArrow); err != nil {
		return nil, nil, err
	}
	if p.check(TokenLeftParen) {
		results, err := p.typeList()
		if err != nil {
			return nil, nil, err
		}
		return inputs, results, nil
	}
	t, err := p.typeSpec()
	if err != nil {
		return nil, nil, err
	}
	return inputs, []ir.Type{t}, nil
}

func (p *Parser) typeList() ([]ir.Type, *SourceError) {
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	var ts []ir.Type
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		t, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return ts, nil
}

// attrDict parses {name = attr, flag, ...}.
func (p *Parser) attrDict() (ir.Attributes, *SourceError) {
	if err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}
	var attrs ir.Attributes
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		tok := p.peek()
		if !p.check(TokenIdent) && !p.check(TokenString) {
			return nil, p.errorAt(tok, "expected attribute name")
		}
		name := p.advance().Lexeme
		if attrs.Has(name) {
			return nil, p.errorAt(tok, "duplicate attribute %q", name)
		}
		var value ir.Attribute = ir.UnitAttr{}
		if p.match(TokenEqual) {
			v, err := p.attribute()
			if err != nil {
				return nil, err
			}
			value = v
		}
		attrs = append(attrs, ir.NamedAttr{Name: name, Value: value})
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expect(TokenRightBrace); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (p *Parser) attribute() (ir.Attribute, *SourceError) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenIntLiteral || tok.Kind == TokenMinus:
		v, err := p.integer()
		if err != nil {
			return nil, err
		}
		var t ir.Type = ir.I64
		if p.match(TokenColon) {
			t, err = p.typeSpec()
			if err != nil {
				return nil, err
			}
		}
		return ir.IntegerAttr{Value: v, Type: t}, nil
	case tok.Kind == TokenString:
		p.advance()
		return ir.StringAttr(tok.Lexeme), nil
	case p.checkIdent("true"):
		p.advance()
		return ir.BoolAttr(true), nil
	case p.checkIdent("false"):
		p.advance()
		return ir.BoolAttr(false), nil
	case p.checkIdent("unit"):
		p.advance()
		return ir.UnitAttr{}, nil
	case p.checkIdent("array"):
		p.advance()
		return p.denseArray()
	default:
		return nil, p.errorAt(tok, "unexpected %s, expected attribute value", describe(tok))
	}
}

// denseArray parses the tail of array<i32: 1, 2>.
func (p *Parser) denseArray() (ir.Attribute, *SourceError) {
	if err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	elem, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	if _, ok := elem.(ir.IntegerType); !ok {
		return nil, p.errorAt(p.previous(), "dense arrays hold integers, got %s", elem)
	}
	arr := ir.DenseArrayAttr{Elem: elem}
	if p.match(TokenColon) {
		for {
			v, err := p.integer()
			if err != nil {
				return nil, err
			}
			arr.Values = append(arr.Values, v)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) integer() (int64, *SourceError) {
	neg := p.match(TokenMinus)
	tok := p.peek()
	if !p.match(TokenIntLiteral) {
		return 0, p.errorAt(tok, "expected integer")
	}
	v, err := strconv.ParseInt(tok.Lexeme, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(tok.Lexeme, 0, 64)
		if uerr != nil {
			return 0, p.errorAt(tok, "integer %s out of range", tok.Lexeme)
		}
		v = int64(u)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// typeSpec parses a builtin or LLVM type.
func (p *Parser) typeSpec() (ir.Type, *SourceError) {
	tok := p.peek()
	if p.match(TokenBang) {
		name := p.peek()
		if !p.match(TokenIdent) || !strings.HasPrefix(name.Lexeme, "llvm.") {
			return nil, p.errorAt(name, "unknown dialect type")
		}
		return p.llvmType(strings.TrimPrefix(name.Lexeme, "llvm."), name)
	}
	if !p.match(TokenIdent) {
		return nil, p.errorAt(tok, "unexpected %s, expected type", describe(tok))
	}

	switch name := tok.Lexeme; name {
	case "f16":
		return ir.FloatType{Kind: ir.F16}, nil
	case "bf16":
		return ir.FloatType{Kind: ir.BF16}, nil
	case "f32":
		return ir.FloatType{Kind: ir.F32}, nil
	case "f64":
		return ir.FloatType{Kind: ir.F64}, nil
	case "index":
		return ir.IndexType{}, nil
	case "vector":
		return p.vectorType()
	case "memref":
		return p.memrefType()
	case "ptr", "struct", "array":
		// LLVM aggregate members elide the dialect prefix.
		return p.llvmType(name, tok)
	default:
		if strings.HasPrefix(name, "i") {
			if w, err := strconv.ParseUint(name[1:], 10, 32); err == nil && w > 0 {
				return ir.IntegerType{Width: uint32(w)}, nil
			}
		}
		return nil, p.errorAt(tok, "unknown type %q", name)
	}
}

func (p *Parser) vectorType() (ir.Type, *SourceError) {
	if err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	tok := p.peek()
	n, err := p.integer()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, p.errorAt(tok, "vector length must be positive")
	}
	if err := p.expect(TokenDimX); err != nil {
		return nil, err
	}
	elem, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	return ir.VectorType{Len: uint32(n), Elem: elem}, nil
}

func (p *Parser) memrefType() (ir.Type, *SourceError) {
	if err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	var shape []int64
	for (p.check(TokenIntLiteral) || p.check(TokenQuestion)) && p.checkNext(TokenDimX) {
		d, err := p.dim()
		if err != nil {
			return nil, err
		}
		shape = append(shape, d)
		p.advance() // x
	}
	elem, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	t := ir.MemRefType{Shape: shape, Elem: elem}
	if p.match(TokenComma) {
		layout, err := p.layout()
		if err != nil {
			return nil, err
		}
		t.Layout = layout
	}
	if err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) dim() (int64, *SourceError) {
	if p.match(TokenQuestion) {
		return ir.Dynamic, nil
	}
	return p.integer()
}

func (p *Parser) layout() (ir.Layout, *SourceError) {
	tok := p.peek()
	switch {
	case p.checkIdent("strided"):
		p.advance()
		if err := p.expect(TokenLess); err != nil {
			return nil, err
		}
		if err := p.expect(TokenLeftBracket); err != nil {
			return nil, err
		}
		l := &ir.StridedLayout{}
		for !p.check(TokenRightBracket) && !p.isAtEnd() {
			d, err := p.dim()
			if err != nil {
				return nil, err
			}
			l.Strides = append(l.Strides, d)
			if !p.match(TokenComma) {
				break
			}
		}
		if err := p.expect(TokenRightBracket); err != nil {
			return nil, err
		}
		if p.match(TokenComma) {
			if !p.checkIdent("offset") {
				return nil, p.errorAt(p.peek(), "expected 'offset'")
			}
			p.advance()
			if err := p.expect(TokenColon); err != nil {
				return nil, err
			}
			d, err := p.dim()
			if err != nil {
				return nil, err
			}
			l.Offset = d
		}
		if err := p.expect(TokenGreater); err != nil {
			return nil, err
		}
		return l, nil
	case p.checkIdent("affine_map"):
		p.advance()
		open := p.peek()
		if err := p.expect(TokenLess); err != nil {
			return nil, err
		}
		depth := 1
		var closing Token
		for depth > 0 {
			if p.isAtEnd() {
				return nil, p.errorAt(open, "unterminated affine_map")
			}
			t := p.advance()
			switch t.Kind {
			case TokenLess:
				depth++
			case TokenGreater:
				depth--
				closing = t
			}
		}
		text := strings.TrimSpace(p.source[open.Offset+1 : closing.Offset])
		return &ir.OpaqueLayout{Text: text}, nil
	default:
		return nil, p.errorAt(tok, "unexpected %s, expected memref layout", describe(tok))
	}
}

func (p *Parser) llvmType(name string, tok Token) (ir.Type, *SourceError) {
	switch name {
	case "ptr":
		t := ir.PointerType{}
		if p.match(TokenLess) {
			as, err := p.integer()
			if err != nil {
				return nil, err
			}
			t.AddrSpace = uint32(as)
			if err := p.expect(TokenGreater); err != nil {
				return nil, err
			}
		}
		return t, nil
	case "struct":
		if err := p.expect(TokenLess); err != nil {
			return nil, err
		}
		fields, err := p.typeList()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenGreater); err != nil {
			return nil, err
		}
		return ir.StructType{Fields: fields}, nil
	case "array":
		if err := p.expect(TokenLess); err != nil {
			return nil, err
		}
		n, err := p.integer()
		if err != nil {
			return nil, err
		}
		if !p.match(TokenDimX) {
			if !p.checkIdent("x") {
				return nil, p.errorAt(p.peek(), "expected 'x' in array type")
			}
			p.advance()
		}
		elem, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenGreater); err != nil {
			return nil, err
		}
		return ir.ArrayType{Len: uint64(n), Elem: elem}, nil
	default:
		return nil, p.errorAt(tok, "unknown LLVM type %q", name)
	}
}

// synchronize skips to the next function header.
func (p *Parser) synchronize() {
	if !p.isAtEnd() {
		p.advance()
	}
	for !p.isAtEnd() {
		if p.checkIdent("func.func") {
			return
		}
		p.advance()
	}
}

func (p *Parser) loc(t Token) ir.Location {
	return ir.Location{File: p.file, Line: t.Line, Column: t.Column}
}

func (p *Parser) errorAt(t Token, format string, args ...any) *SourceError {
	return newSourceError(p.loc(t), p.source, format, args...)
}

func (p *Parser) expect(kind TokenKind) *SourceError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	tok := p.peek()
	return p.errorAt(tok, "unexpected %s, expected %s", describe(tok), kind)
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkNext(kind TokenKind) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Kind == kind
}

func (p *Parser) checkIdent(lexeme string) bool {
	t := p.peek()
	return t.Kind == TokenIdent && t.Lexeme == lexeme
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func describe(t Token) string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.String()
	case TokenIdent, TokenIntLiteral, TokenValueID, TokenSymbol:
		return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}
