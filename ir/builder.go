package ir

// OpBuilder creates operations at some insertion point.
type OpBuilder interface {
	// Create builds an op and places it at the builder's insertion point.
	Create(name string, operands []*Value, resultTypes []Type, attrs ...NamedAttr) *Op
	// Loc returns the location stamped on created ops.
	Loc() Location
}

// Builder inserts new ops directly into a block.
type Builder struct {
	block  *Block
	anchor *Op
	loc    Location
}

// NewBuilder returns a builder appending to the end of block.
func NewBuilder(block *Block) *Builder {
	return &Builder{block: block}
}

// SetInsertionPointBefore makes subsequent ops go right before op.
func (b *Builder) SetInsertionPointBefore(op *Op) {
	b.block = op.Block()
	b.anchor = op
}

// SetInsertionPointToEnd makes subsequent ops go at the end of block.
func (b *Builder) SetInsertionPointToEnd(block *Block) {
	b.block = block
	b.anchor = nil
}

// SetLoc sets the location of subsequently created ops.
func (b *Builder) SetLoc(loc Location) { b.loc = loc }

// Loc implements OpBuilder.
func (b *Builder) Loc() Location { return b.loc }

// Create implements OpBuilder.
func (b *Builder) Create(name string, operands []*Value, resultTypes []Type, attrs ...NamedAttr) *Op {
	op := NewOp(name, operands, resultTypes, Attributes(attrs))
	op.Loc = b.loc
	b.block.InsertBefore(b.anchor, op)
	return op
}

// Return appends the terminator "func.return".
func (b *Builder) Return() *Op {
	return b.Create(OpReturn, nil, nil)
}

// Builtin op names shared by every dialect.
const (
	OpReturn                   = "func.return"
	OpUnrealizedConversionCast = "builtin.unrealized_conversion_cast"
	OpArithConstant            = "arith.constant"
)
