// Package parser builds the statement tree from the lexer's token cursor.
// It is a recursive-descent parser over the grammar of the language:
// newline-terminated statements, INDENT/DEDENT blocks, and an expression
// ladder of or / and / not / comparison / sum / term / factor.
package parser

import (
	"fmt"
	"strconv"

	"mython/internal/ast"
	"mython/internal/lexer"
	"mython/internal/runtime"
	"mython/internal/token"
)

// Error is a parse error anchored to the offending token.
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string {
	what := string(e.Tok.Type)
	if e.Tok.Literal != "" {
		what = fmt.Sprintf("%q", e.Tok.Literal)
	}
	return fmt.Sprintf("parse error at %s (offset %d): %s", what, e.Tok.Position, e.Msg)
}

type Parser struct {
	toks []token.Token
	pos  int

	// classes is the compile-time class table: parent references resolve and
	// method indexes flatten at class construction. The caller may pass a
	// table shared across parses so definitions persist between inputs.
	classes map[string]*runtime.Class
}

// New drains the lexer cursor into the parser. A nil class table starts
// empty.
func New(l *lexer.Lexer, classes map[string]*runtime.Class) *Parser {
	if classes == nil {
		classes = make(map[string]*runtime.Class)
	}
	toks := []token.Token{l.CurrentToken()}
	for !toks[len(toks)-1].Is(token.EOF) {
		toks = append(toks, l.NextToken())
	}
	return &Parser{toks: toks, classes: classes}
}

// ParseProgram consumes the whole token stream and returns the program tree
// rooted in a Compound.
func (p *Parser) ParseProgram() (ast.Statement, error) {
	var stmts []ast.Statement
	for {
		p.skipNewlines()
		if p.cur().Is(token.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return ast.NewCompound(stmts...), nil
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.pos+1 < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) skipNewlines() {
	for p.cur().Is(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) errorf(format string, a ...interface{}) error {
	return &Error{Tok: p.cur(), Msg: fmt.Sprintf(format, a...)}
}

func (p *Parser) expect(tt token.TokenType, what string) (token.Token, error) {
	if !p.cur().Is(tt) {
		return token.Token{}, p.errorf("expected %s", what)
	}
	return p.advance(), nil
}

func (p *Parser) expectChar(ch byte) error {
	if !p.cur().IsChar(ch) {
		return p.errorf("expected %q", string(ch))
	}
	p.advance()
	return nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.CLASS:
		return p.parseClassDefinition()
	case token.IF:
		return p.parseIfElse()
	case token.PRINT:
		return p.parsePrint()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		if p.startsAssignment() {
			return p.parseAssignment()
		}
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE, "end of statement"); err != nil {
		return nil, err
	}
	return expr, nil
}

// startsAssignment scans a dotted-name prefix and reports whether a bare '='
// follows. '==' lexes to its own token, so a Char '=' is unambiguous.
func (p *Parser) startsAssignment() bool {
	i := p.pos
	if !p.toks[i].Is(token.IDENT) {
		return false
	}
	i++
	for i+1 < len(p.toks) && p.toks[i].IsChar('.') && p.toks[i+1].Is(token.IDENT) {
		i += 2
	}
	return i < len(p.toks) && p.toks[i].IsChar('=')
}

func (p *Parser) parseAssignment() (ast.Statement, error) {
	ids := []string{p.advance().Literal}
	for p.cur().IsChar('.') {
		p.advance()
		name, err := p.expect(token.IDENT, "a field name")
		if err != nil {
			return nil, err
		}
		ids = append(ids, name.Literal)
	}
	if err := p.expectChar('='); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE, "end of statement"); err != nil {
		return nil, err
	}
	if len(ids) == 1 {
		return ast.NewAssignment(ids[0], rhs), nil
	}
	object := ast.NewDottedValue(ids[:len(ids)-1])
	return ast.NewFieldAssignment(*object, ids[len(ids)-1], rhs), nil
}

func (p *Parser) parseClassDefinition() (ast.Statement, error) {
	p.advance()
	name, err := p.expect(token.IDENT, "a class name")
	if err != nil {
		return nil, err
	}

	var parent *runtime.Class
	if p.cur().IsChar('(') {
		p.advance()
		parentName, err := p.expect(token.IDENT, "a base class name")
		if err != nil {
			return nil, err
		}
		parent = p.classes[parentName.Literal]
		if parent == nil {
			return nil, &Error{Tok: parentName, Msg: fmt.Sprintf("undefined base class: %s", parentName.Literal)}
		}
		if err := p.expectChar(')'); err != nil {
			return nil, err
		}
	}

	if err := p.expectChar(':'); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE, "a newline after the class header"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INDENT, "an indented class body"); err != nil {
		return nil, err
	}

	var methods []runtime.Method
	for {
		p.skipNewlines()
		if p.cur().Is(token.DEDENT) {
			p.advance()
			break
		}
		if p.cur().Is(token.EOF) {
			break
		}
		method, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	cls := runtime.NewClass(name.Literal, methods, parent)
	p.classes[name.Literal] = cls
	return ast.NewClassDefinition(runtime.Own(cls)), nil
}

func (p *Parser) parseMethod() (runtime.Method, error) {
	if _, err := p.expect(token.DEF, "a method definition"); err != nil {
		return runtime.Method{}, err
	}
	name, err := p.expect(token.IDENT, "a method name")
	if err != nil {
		return runtime.Method{}, err
	}
	if err := p.expectChar('('); err != nil {
		return runtime.Method{}, err
	}

	var params []string
	for !p.cur().IsChar(')') {
		if len(params) > 0 {
			if err := p.expectChar(','); err != nil {
				return runtime.Method{}, err
			}
		}
		param, err := p.expect(token.IDENT, "a parameter name")
		if err != nil {
			return runtime.Method{}, err
		}
		params = append(params, param.Literal)
	}
	p.advance() // ')'

	if err := p.expectChar(':'); err != nil {
		return runtime.Method{}, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return runtime.Method{}, err
	}
	return runtime.Method{
		Name:         name.Literal,
		FormalParams: params,
		Body:         ast.NewMethodBody(body),
	}, nil
}

func (p *Parser) parseIfElse() (ast.Statement, error) {
	p.advance()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectChar(':'); err != nil {
		return nil, err
	}
	then, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	var els ast.Statement
	if p.cur().Is(token.ELSE) {
		p.advance()
		if err := p.expectChar(':'); err != nil {
			return nil, err
		}
		els, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfElse(cond, then, els), nil
}

// parseSuite reads NEWLINE INDENT statements DEDENT into a Compound.
func (p *Parser) parseSuite() (ast.Statement, error) {
	if _, err := p.expect(token.NEWLINE, "a newline before an indented block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INDENT, "an indented block"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for {
		p.skipNewlines()
		if p.cur().Is(token.DEDENT) {
			p.advance()
			break
		}
		// input ending mid-block closes it without dedent tokens
		if p.cur().Is(token.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return ast.NewCompound(stmts...), nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	p.advance()
	var args []ast.Statement
	if !p.cur().Is(token.NEWLINE) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.cur().IsChar(',') {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.NEWLINE, "end of statement"); err != nil {
		return nil, err
	}
	return ast.NewPrint(args...), nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE, "end of statement"); err != nil {
		return nil, err
	}
	return ast.NewReturn(expr), nil
}

func (p *Parser) parseExpression() (ast.Statement, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Statement, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Is(token.OR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewOr(left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Statement, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Is(token.AND) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.NewAnd(left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (ast.Statement, error) {
	if p.cur().Is(token.NOT) {
		p.advance()
		arg, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewNot(arg), nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Statement, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	var cmp runtime.Comparator
	switch {
	case p.cur().Is(token.EQ):
		cmp = runtime.Equal
	case p.cur().Is(token.NOT_EQ):
		cmp = runtime.NotEqual
	case p.cur().Is(token.LT_EQ):
		cmp = runtime.LessOrEqual
	case p.cur().Is(token.GT_EQ):
		cmp = runtime.GreaterOrEqual
	case p.cur().IsChar('<'):
		cmp = runtime.Less
	case p.cur().IsChar('>'):
		cmp = runtime.Greater
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return ast.NewComparison(cmp, left, right), nil
}

func (p *Parser) parseSum() (ast.Statement, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur().IsChar('+'):
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = ast.NewAdd(left, right)
		case p.cur().IsChar('-'):
			p.advance()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = ast.NewSub(left, right)
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseTerm() (ast.Statement, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur().IsChar('*'):
			p.advance()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = ast.NewMult(left, right)
		case p.cur().IsChar('/'):
			p.advance()
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = ast.NewDiv(left, right)
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseFactor() (ast.Statement, error) {
	var node ast.Statement

	switch {
	case p.cur().Is(token.NUMBER):
		tok := p.advance()
		value, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return nil, &Error{Tok: tok, Msg: "could not parse number literal"}
		}
		node = ast.NewNumberConst(int32(value))

	case p.cur().Is(token.STRING):
		node = ast.NewStringConst(p.advance().Literal)

	case p.cur().Is(token.TRUE):
		p.advance()
		node = ast.NewBoolConst(true)

	case p.cur().Is(token.FALSE):
		p.advance()
		node = ast.NewBoolConst(false)

	case p.cur().Is(token.NONE):
		p.advance()
		node = ast.NewNoneConst()

	case p.cur().IsChar('('):
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectChar(')'); err != nil {
			return nil, err
		}
		node = inner

	case p.cur().Is(token.IDENT):
		tok := p.advance()
		name := tok.Literal
		switch {
		case name == "str" && p.cur().IsChar('('):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, &Error{Tok: tok, Msg: "str takes exactly one argument"}
			}
			node = ast.NewStringify(args[0])
		case p.cur().IsChar('('):
			cls, ok := p.classes[name]
			if !ok {
				return nil, &Error{Tok: tok, Msg: fmt.Sprintf("undefined class: %s", name)}
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			node = ast.NewInstanceOf(cls, args)
		default:
			node = ast.NewVariableValue(name)
		}

	default:
		return nil, p.errorf("unexpected token in expression")
	}

	return p.parsePostfix(node)
}

// parsePostfix applies ".name" accesses and ".name(args)" calls. Field reads
// extend a dotted name in place; on any other expression only a call is
// representable.
func (p *Parser) parsePostfix(node ast.Statement) (ast.Statement, error) {
	for p.cur().IsChar('.') {
		p.advance()
		name, err := p.expect(token.IDENT, "a field or method name")
		if err != nil {
			return nil, err
		}
		if p.cur().IsChar('(') {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			node = ast.NewMethodCall(node, name.Literal, args)
			continue
		}
		vv, ok := node.(*ast.VariableValue)
		if !ok {
			return nil, &Error{Tok: name, Msg: "field access is only supported on dotted names"}
		}
		vv.DottedIDs = append(vv.DottedIDs, name.Literal)
	}
	return node, nil
}

func (p *Parser) parseArgs() ([]ast.Statement, error) {
	if err := p.expectChar('('); err != nil {
		return nil, err
	}
	var args []ast.Statement
	for !p.cur().IsChar(')') {
		if len(args) > 0 {
			if err := p.expectChar(','); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.advance() // ')'
	return args, nil
}
