package compiler

import (
	"io"
	"strconv"
)

// Parser walks a flat token stream twice against the same grammar,
// driving whichever driver is bound at the time (see driver.go). It owns
// no semantics itself — every grammar action is a call into the bound
// driver, which is how the index and parser passes share one walk of the
// productions instead of duplicating the grammar.
type Parser struct {
	tokens []*Token
	pos    int
}

func NewParser(tokens []*Token) *Parser { return &Parser{tokens: tokens} }

// Reset rewinds the parser to the start of its token stream so the same
// instance can drive pass 2 after pass 1 without re-tokenizing.
func (p *Parser) Reset() { p.pos = 0 }

func (p *Parser) hasMore() bool { return p.pos < len(p.tokens) }
func (p *Parser) cur() *Token   { return p.tokens[p.pos] }
func (p *Parser) advance() *Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}
func (p *Parser) check(tp TokenType) bool { return p.hasMore() && p.cur().TP == tp }

func (p *Parser) expect(tp TokenType) (*Token, error) {
	if !p.check(tp) {
		return nil, p.unexpected()
	}
	return p.advance(), nil
}

func (p *Parser) unexpected() error {
	if !p.hasMore() {
		return makeSyntaxError("unexpected end of input")
	}
	return makeSyntaxError("unexpected token %q at line %d", p.cur().Content, p.cur().Line)
}

// Program parses the whole token stream as a sequence of class and
// top-level function declarations, driving d.
func (p *Parser) Program(d driver) error {
	for p.hasMore() {
		if p.check(ClassTP) {
			if err := p.parseClass(d); err != nil {
				return err
			}
			continue
		}
		if err := p.parseTopLevelFunction(d); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseClass(d driver) error {
	if _, err := p.expect(ClassTP); err != nil {
		return err
	}
	nameTok, err := p.expect(IdentifierTP)
	if err != nil {
		return err
	}
	base := ""
	if p.check(ColonTP) {
		p.advance()
		baseTok, err := p.expect(IdentifierTP)
		if err != nil {
			return err
		}
		base = baseTok.Content
	}
	if err := d.NewClass(nameTok.Content, base); err != nil {
		return err
	}
	if _, err := d.StartClassBody(nameTok.Content); err != nil {
		return err
	}
	defer d.EndClassBody()
	if _, err := p.expect(LeftBraceTP); err != nil {
		return err
	}
	for !p.check(RightBraceTP) {
		vis := Public
		switch {
		case p.check(PublicTP):
			p.advance()
		case p.check(ProtectedTP):
			p.advance()
			vis = Protected
		case p.check(PrivateTP):
			p.advance()
			vis = Private
		}
		if err := p.parseMember(d, vis, nameTok.Content); err != nil {
			return err
		}
	}
	_, err = p.expect(RightBraceTP)
	return err
}

func (p *Parser) parseMember(d driver, vis Visibility, className string) error {
	if p.check(IdentifierTP) && p.cur().Content == className && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].TP == LeftParenTP {
		p.advance()
		p.advance()
		// A constructor's parameter list is parsed in full, even though
		// Class.AddMethod will reject any params beyond the synthetic
		// this: a constructor written with explicit arguments must fail
		// with an IncompatibilityError, not a premature syntax error from
		// assuming the list is always empty.
		params, err := p.parseParams()
		if err != nil {
			return err
		}
		if _, err := p.expect(RightParenTP); err != nil {
			return err
		}
		fn, err := d.NewFunction(nil, className, params, vis)
		if err != nil {
			return err
		}
		return p.parseFunctionBody(d, fn)
	}
	retType, isVoid, err := p.parseTypeOrVoid()
	if err != nil {
		return err
	}
	nameTok, err := p.expect(IdentifierTP)
	if err != nil {
		return err
	}
	if p.check(LeftParenTP) {
		p.advance()
		params, err := p.parseParams()
		if err != nil {
			return err
		}
		if _, err := p.expect(RightParenTP); err != nil {
			return err
		}
		var ret *Datatype
		if !isVoid {
			t := retType
			ret = &t
		}
		fn, err := d.NewFunction(ret, nameTok.Content, params, vis)
		if err != nil {
			return err
		}
		return p.parseFunctionBody(d, fn)
	}
	if isVoid {
		return makeSyntaxError("void is not a valid attribute type")
	}
	if err := p.parseAttributeDecl(d, retType, nameTok.Content, vis); err != nil {
		return err
	}
	for p.check(CommaTP) {
		p.advance()
		idTok, err := p.expect(IdentifierTP)
		if err != nil {
			return err
		}
		if err := p.parseAttributeDecl(d, retType, idTok.Content, vis); err != nil {
			return err
		}
	}
	_, err = p.expect(SemiColonTP)
	return err
}

// parseAttributeDecl registers one attribute of a comma-separated
// declaration and, if followed by "= expr", records it as a default field
// initializer via d.AttributeInit.
func (p *Parser) parseAttributeDecl(d driver, t Datatype, name string, vis Visibility) error {
	attr, err := d.NewAttribute(t, name, vis)
	if err != nil {
		return err
	}
	if !p.check(AssignTP) {
		return nil
	}
	p.advance()
	val, err := p.parseExpression(d)
	if err != nil {
		return err
	}
	_, err = d.AttributeInit(attr, val)
	return err
}

func (p *Parser) parseTopLevelFunction(d driver) error {
	retType, isVoid, err := p.parseTypeOrVoid()
	if err != nil {
		return err
	}
	nameTok, err := p.expect(IdentifierTP)
	if err != nil {
		return err
	}
	if _, err := p.expect(LeftParenTP); err != nil {
		return err
	}
	params, err := p.parseParams()
	if err != nil {
		return err
	}
	if _, err := p.expect(RightParenTP); err != nil {
		return err
	}
	var ret *Datatype
	if !isVoid {
		t := retType
		ret = &t
	}
	fn, err := d.NewFunction(ret, nameTok.Content, params, Public)
	if err != nil {
		return err
	}
	return p.parseFunctionBody(d, fn)
}

func (p *Parser) parseTypeOrVoid() (Datatype, bool, error) {
	if !p.hasMore() {
		return Datatype{}, false, p.unexpected()
	}
	switch p.cur().TP {
	case IntTP:
		p.advance()
		return PrimitiveType(Int), false, nil
	case FloatTP:
		p.advance()
		return PrimitiveType(Float), false, nil
	case StringTP:
		p.advance()
		return PrimitiveType(String), false, nil
	case VoidTP:
		p.advance()
		return Datatype{}, true, nil
	case IdentifierTP:
		name := p.advance().Content
		return ClassType(name), false, nil
	default:
		return Datatype{}, false, p.unexpected()
	}
}

func (p *Parser) parseParams() ([]paramDecl, error) {
	var params []paramDecl
	if p.check(RightParenTP) {
		return params, nil
	}
	if p.check(VoidTP) && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].TP == RightParenTP {
		p.advance()
		return params, nil
	}
	for {
		t, isVoid, err := p.parseTypeOrVoid()
		if err != nil {
			return nil, err
		}
		if isVoid {
			return nil, makeSyntaxError("void parameter")
		}
		nameTok, err := p.expect(IdentifierTP)
		if err != nil {
			return nil, err
		}
		params = append(params, paramDecl{Type: t, Name: nameTok.Content})
		if p.check(CommaTP) {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseFunctionBody(d driver, fn *Function) error {
	if err := d.StartFunctionBody(fn); err != nil {
		return err
	}
	defer d.EndFunctionBody()
	block, err := p.parseBlock(d, fn.Name)
	if err != nil {
		return err
	}
	fn.SetBody(block)
	return nil
}

func (p *Parser) parseBlock(d driver, baseName string) (*BasicBlock, error) {
	if _, err := p.expect(LeftBraceTP); err != nil {
		return nil, err
	}
	block := d.NewBlock(baseName)
	for !p.check(RightBraceTP) {
		if err := p.parseStatement(d, block); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RightBraceTP); err != nil {
		return nil, err
	}
	return block, nil
}

// looksLikeDeclaration disambiguates "Foo x;"/"int x;" (a declaration)
// from "foo.bar();"/"x = 1;" (an expression statement): a primitive type
// keyword always starts a declaration; an identifier only does when
// immediately followed by another identifier (the declared name).
func (p *Parser) looksLikeDeclaration() bool {
	switch p.cur().TP {
	case IntTP, FloatTP, StringTP:
		return true
	case IdentifierTP:
		return p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].TP == IdentifierTP
	}
	return false
}

func (p *Parser) parseStatement(d driver, block *BasicBlock) error {
	if !p.hasMore() {
		return p.unexpected()
	}
	switch {
	case p.looksLikeDeclaration():
		return p.parseDeclarationStatement(d, block)
	case p.check(IfTP):
		return p.parseIf(d, block)
	case p.check(WhileTP):
		return p.parseWhile(d, block)
	case p.check(ReturnTP):
		return p.parseReturn(d, block)
	default:
		return p.parseExprStatement(d, block)
	}
}

func (p *Parser) parseDeclarationStatement(d driver, block *BasicBlock) error {
	t, isVoid, err := p.parseTypeOrVoid()
	if err != nil {
		return err
	}
	if isVoid {
		return makeSyntaxError("void is not a valid variable type")
	}
	for {
		nameTok, err := p.expect(IdentifierTP)
		if err != nil {
			return err
		}
		a, err := d.NewDeclaration(t, nameTok.Content)
		if err != nil {
			return err
		}
		block.Append(a)
		if p.check(AssignTP) {
			p.advance()
			val, err := p.parseExpression(d)
			if err != nil {
				return err
			}
			instr, err := d.Assign(NewSymbolExpr(a), val)
			if err != nil {
				return err
			}
			block.Append(instr)
		}
		if p.check(CommaTP) {
			p.advance()
			continue
		}
		break
	}
	_, err = p.expect(SemiColonTP)
	return err
}

func (p *Parser) parseIf(d driver, block *BasicBlock) error {
	p.advance()
	if _, err := p.expect(LeftParenTP); err != nil {
		return err
	}
	cond, err := p.parseExpression(d)
	if err != nil {
		return err
	}
	if _, err := p.expect(RightParenTP); err != nil {
		return err
	}
	ifBlock, err := p.parseBlock(d, "if")
	if err != nil {
		return err
	}
	var elseBlock *BasicBlock
	if p.check(ElseTP) {
		p.advance()
		elseBlock, err = p.parseBlock(d, "else")
		if err != nil {
			return err
		}
	}
	instr, err := d.CreateIf(cond, ifBlock, elseBlock)
	if err != nil {
		return err
	}
	block.Append(instr)
	return nil
}

func (p *Parser) parseWhile(d driver, block *BasicBlock) error {
	p.advance()
	if _, err := p.expect(LeftParenTP); err != nil {
		return err
	}
	cond, err := p.parseExpression(d)
	if err != nil {
		return err
	}
	if _, err := p.expect(RightParenTP); err != nil {
		return err
	}
	body, err := p.parseBlock(d, "while")
	if err != nil {
		return err
	}
	instr, err := d.CreateWhile(cond, body)
	if err != nil {
		return err
	}
	block.Append(instr)
	return nil
}

func (p *Parser) parseReturn(d driver, block *BasicBlock) error {
	p.advance()
	var val Expression
	if !p.check(SemiColonTP) {
		v, err := p.parseExpression(d)
		if err != nil {
			return err
		}
		val = v
	}
	if _, err := p.expect(SemiColonTP); err != nil {
		return err
	}
	instr, err := d.CreateReturn(val)
	if err != nil {
		return err
	}
	block.Append(instr)
	return nil
}

func (p *Parser) parseExprStatement(d driver, block *BasicBlock) error {
	expr, err := p.parseExpression(d)
	if err != nil {
		return err
	}
	var instr Instruction
	if p.check(AssignTP) {
		p.advance()
		val, err := p.parseExpression(d)
		if err != nil {
			return err
		}
		instr, err = d.Assign(expr, val)
		if err != nil {
			return err
		}
	} else {
		instr = &Assignment{Expr: expr}
	}
	block.Append(instr)
	_, err = p.expect(SemiColonTP)
	return err
}

// precedenceOf gives the binding strength of each binary operator for the
// precedence-climbing expression parser: higher binds tighter.
func precedenceOf(tp TokenType) (int, bool) {
	switch tp {
	case MultiplyTP, DivideTP:
		return 5, true
	case AddTP, MinusTP:
		return 4, true
	case LtTP, LeqTP, GtTP, GeqTP:
		return 3, true
	case EqTP, NeqTP:
		return 2, true
	case AndTP:
		return 1, true
	case OrTP:
		return 0, true
	}
	return 0, false
}

func applyOp(d driver, tp TokenType, a, b Expression) (Expression, error) {
	switch tp {
	case AddTP:
		return d.AddExpr(a, b)
	case MinusTP:
		return d.SubExpr(a, b)
	case MultiplyTP:
		return d.MulExpr(a, b)
	case DivideTP:
		return d.DivExpr(a, b)
	case EqTP:
		return d.EqExpr(a, b)
	case NeqTP:
		return d.NeqExpr(a, b)
	case LtTP:
		return d.LtExpr(a, b)
	case LeqTP:
		return d.LeqExpr(a, b)
	case GtTP:
		return d.GtExpr(a, b)
	case GeqTP:
		return d.GeqExpr(a, b)
	case AndTP:
		return d.AndExpr(a, b)
	case OrTP:
		return d.OrExpr(a, b)
	}
	return nil, makeInternalError("unrecognized binary operator token %d", tp)
}

func (p *Parser) parseExpression(d driver) (Expression, error) {
	lhs, err := p.parseUnary(d)
	if err != nil {
		return nil, err
	}
	return p.parseBinaryRHS(d, lhs, 0)
}

func (p *Parser) parseBinaryRHS(d driver, lhs Expression, minPrec int) (Expression, error) {
	for {
		if !p.hasMore() {
			return lhs, nil
		}
		prec, ok := precedenceOf(p.cur().TP)
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTP := p.advance().TP
		rhs, err := p.parseUnary(d)
		if err != nil {
			return nil, err
		}
		for p.hasMore() {
			nextPrec, ok2 := precedenceOf(p.cur().TP)
			if !ok2 || nextPrec <= prec {
				break
			}
			rhs, err = p.parseBinaryRHS(d, rhs, prec+1)
			if err != nil {
				return nil, err
			}
		}
		lhs, err = applyOp(d, opTP, lhs, rhs)
		if err != nil {
			return nil, err
		}
	}
}

func zeroLiteralFor(t Datatype) Literal {
	if t.Equal(PrimitiveType(Float)) {
		return NewFloatLiteral(0)
	}
	return NewIntLiteral(0)
}

func (p *Parser) parseUnary(d driver) (Expression, error) {
	if p.check(MinusTP) {
		p.advance()
		inner, err := p.parseUnary(d)
		if err != nil {
			return nil, err
		}
		return d.SubExpr(d.LiteralExpr(zeroLiteralFor(inner.Type())), inner)
	}
	if p.check(NotTP) {
		p.advance()
		inner, err := p.parseUnary(d)
		if err != nil {
			return nil, err
		}
		return d.NotExpr(inner)
	}
	return p.parsePrimary(d)
}

func (p *Parser) parsePrimary(d driver) (Expression, error) {
	if !p.hasMore() {
		return nil, p.unexpected()
	}
	switch p.cur().TP {
	case IntegerLiteralTP:
		tok := p.advance()
		v, err := strconv.ParseUint(tok.Content, 10, 64)
		if err != nil {
			return nil, makeLexicalError("invalid integer literal %q", tok.Content)
		}
		return d.LiteralExpr(NewIntLiteral(v)), nil
	case FloatLiteralTP:
		tok := p.advance()
		f, err := strconv.ParseFloat(tok.Content, 64)
		if err != nil {
			return nil, makeLexicalError("invalid float literal %q", tok.Content)
		}
		return d.LiteralExpr(NewFloatLiteral(f)), nil
	case StringLiteralTP:
		tok := p.advance()
		return d.LiteralExpr(NewStringLiteral(tok.Content)), nil
	case ThisTP:
		p.advance()
		expr, err := d.ThisExpr()
		if err != nil {
			return nil, err
		}
		return p.parsePostfix(d, expr)
	case SuperTP:
		p.advance()
		expr, err := d.SuperExpr()
		if err != nil {
			return nil, err
		}
		return p.parsePostfix(d, expr)
	case NewTP:
		p.advance()
		nameTok, err := p.expect(IdentifierTP)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(LeftParenTP); err != nil {
			return nil, err
		}
		args, err := p.parseArgs(d)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RightParenTP); err != nil {
			return nil, err
		}
		ctor, err := d.NewExpr(nameTok.Content)
		if err != nil {
			return nil, err
		}
		call, err := d.CallFunc(ctor, args)
		if err != nil {
			return nil, err
		}
		return p.parsePostfix(d, call)
	case LeftParenTP:
		return p.parseParenOrCast(d)
	case IdentifierTP:
		tok := p.advance()
		expr, err := d.IdentifierExpr(tok.Content)
		if err != nil {
			return nil, err
		}
		return p.parsePostfix(d, expr)
	default:
		return nil, p.unexpected()
	}
}

// parseParenOrCast disambiguates "(ClassName)expr"/"(string)intExpr" from
// a parenthesized sub-expression by a bounded lookahead: if what follows
// "(" parses as a type immediately followed by ")", and the operand after
// it parses and the driver accepts the cast, treat it as a cast; otherwise
// (a rejected cast included) backtrack and parse a parenthesized
// expression.
func (p *Parser) parseParenOrCast(d driver) (Expression, error) {
	start := p.pos
	p.advance()
	if p.check(IntTP) || p.check(FloatTP) || p.check(StringTP) || p.check(IdentifierTP) {
		t, isVoid, err := p.parseTypeOrVoid()
		if err == nil && !isVoid && p.check(RightParenTP) {
			p.advance()
			inner, err := p.parseUnary(d)
			if err == nil {
				expr, err := d.CreateCastExpr(t, inner)
				if err == nil {
					return p.parsePostfix(d, expr)
				}
			}
		}
	}
	p.pos = start
	p.advance()
	inner, err := p.parseExpression(d)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RightParenTP); err != nil {
		return nil, err
	}
	return p.parsePostfix(d, inner)
}

func (p *Parser) parsePostfix(d driver, expr Expression) (Expression, error) {
	for {
		switch {
		case p.check(DotTP):
			p.advance()
			idTok, err := p.expect(IdentifierTP)
			if err != nil {
				return nil, err
			}
			member, err := d.DotExpr(expr, idTok.Content)
			if err != nil {
				return nil, err
			}
			if p.check(LeftParenTP) {
				p.advance()
				args, err := p.parseArgs(d)
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(RightParenTP); err != nil {
					return nil, err
				}
				call, err := d.CallFunc(member, args)
				if err != nil {
					return nil, err
				}
				expr = call
				continue
			}
			expr = member
		case p.check(LeftParenTP):
			p.advance()
			args, err := p.parseArgs(d)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RightParenTP); err != nil {
				return nil, err
			}
			call, err := d.CallFunc(expr, args)
			if err != nil {
				return nil, err
			}
			expr = call
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs(d driver) ([]Expression, error) {
	args := []Expression{}
	if p.check(RightParenTP) {
		return args, nil
	}
	for {
		e, err := p.parseExpression(d)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.check(CommaTP) {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

// Parse tokenizes src, runs the index pass, then the parser pass over the
// same token stream (reusing the global table the index pass built), and
// checks that main is defined. It returns the populated context, ready for
// code generation.
func Parse(src io.Reader, verbose bool) (*Context, error) {
	tk := &Tokenizer{}
	tokens, err := tk.Tokenize(src)
	if err != nil {
		return nil, err
	}
	ctx := NewContext()
	ctx.Verbose = verbose
	p := NewParser(tokens)
	idx := newIndexDriver(ctx)
	if err := p.Program(idx); err != nil {
		return nil, err
	}
	p.Reset()
	pd := newParserDriver(ctx)
	if err := p.Program(pd); err != nil {
		return nil, err
	}
	if err := pd.EnsureMainDefined(); err != nil {
		return nil, err
	}
	return ctx, nil
}
