// Package parsetree implements the hand-written lexer and recursive
// descent parser that turns policy source text into rules, goals, and
// inline queries. See each parse* method for its production rule.
package parsetree

import (
	"github.com/rulekit/rulekit/rules"
	"github.com/rulekit/rulekit/term"
)

// Parser consumes policy source and yields rules and inline queries.
type parser struct {
	lex      *lexer
	cur, la  token
	filename string
	fresh    int
	pending  []rules.Goal
	err      *Error
}

func newParser(src, filename string) *parser {
	p := &parser{lex: newLexer(src, filename), filename: filename}
	p.cur = p.lex.next()
	p.la = p.lex.next()
	if p.lex.err != nil && p.err == nil {
		p.err = p.lex.err
	}
	return p
}

func (p *parser) advance() {
	p.cur = p.la
	p.la = p.lex.next()
	if p.lex.err != nil && p.err == nil {
		p.err = p.lex.err
	}
}

func (p *parser) loc() *Location {
	return &Location{File: p.filename, Row: p.cur.row, Col: p.cur.col}
}

func (p *parser) fail(code ErrCode, format string, args ...interface{}) {
	if p.err == nil {
		p.err = newError(code, p.loc(), format, args...)
	}
}

func (p *parser) expect(k tokenKind, what string) bool {
	if p.err != nil {
		return false
	}
	if p.cur.kind == tokEOF {
		p.fail(ErrUnexpectedEOF, "expected %s, found end of input", what)
		return false
	}
	if p.cur.kind != k {
		p.fail(ErrUnrecognizedToken, "expected %s", what)
		return false
	}
	return true
}

func (p *parser) freshSymbol() string {
	p.fresh++
	return "_lookup_" + itoa(p.fresh)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// checkReservedIdent raises ReservedWord if name is reserved; used
// uniformly for rule heads, body call functors, and attribute/field
// names.
func (p *parser) checkReservedIdent(name string) {
	if p.err != nil {
		return
	}
	if isReserved(name) {
		p.fail(ErrReservedWord, "%q is a reserved word and cannot be used as a predicate, method, or field name", name)
	}
}

// Parse parses a full policy source file into rules and inline queries.
// On parse error, no rules or queries are returned, so a caller that
// only commits on success applies a file's rules atomically.
func Parse(src, filename string) ([]*rules.Rule, []rules.Goal, error) {
	p := newParser(src, filename)
	var ruleList []*rules.Rule
	var queries []rules.Goal
	for p.err == nil && p.cur.kind != tokEOF {
		if p.cur.kind == tokQAssign {
			q := p.parseInlineQuery()
			if p.err != nil {
				break
			}
			queries = append(queries, q)
			continue
		}
		r := p.parseRule()
		if p.err != nil {
			break
		}
		ruleList = append(ruleList, r)
	}
	if p.err != nil {
		return nil, nil, p.err
	}
	return ruleList, queries, nil
}

// ParseGoal parses a single goal body, used by engine.NewQuery for
// ad hoc query text that is not wrapped in `?= ... ;`.
func ParseGoal(src, filename string) (rules.Goal, error) {
	p := newParser(src, filename)
	g := p.parseDisjunction()
	if p.err == nil && p.cur.kind != tokEOF {
		p.fail(ErrUnrecognizedToken, "unexpected trailing input after goal")
	}
	if p.err != nil {
		return nil, p.err
	}
	return g, nil
}

func (p *parser) parseInlineQuery() rules.Goal {
	p.advance() // consume '?='
	g := p.parseDisjunction()
	if !p.expect(tokSemi, "';'") {
		return nil
	}
	p.advance()
	return g
}

// parseRule implements `rule := head (':=' body)? ';'`.
func (p *parser) parseRule() *rules.Rule {
	head, specializers := p.parseHead()
	if p.err != nil {
		return nil
	}
	var body rules.Goal = &rules.And{}
	if p.cur.kind == tokAssign {
		p.advance()
		body = p.parseDisjunction()
	}
	if !p.expect(tokSemi, "';'") {
		return nil
	}
	p.advance()
	if len(specializers) > 0 {
		body = &rules.And{Goals: append(append([]rules.Goal{}, specializers...), body)}
	}
	return &rules.Rule{Head: head, Body: body}
}

// parseHead implements `head := name '(' args? ')'` where an arg may be
// `expr` or `name ':' pattern`.
func (p *parser) parseHead() (*term.Call, []rules.Goal) {
	if !p.expect(tokIdent, "predicate name") {
		return nil, nil
	}
	name := p.cur.text
	p.checkReservedIdent(name)
	p.advance()
	if !p.expect(tokLParen, "'('") {
		return nil, nil
	}
	p.advance()

	var args []*term.Term
	var specializers []rules.Goal
	for p.cur.kind != tokRParen {
		if p.err != nil {
			return nil, nil
		}
		if p.cur.kind == tokIdent && p.la.kind == tokColon {
			pname := p.cur.text
			p.advance() // name
			p.advance() // ':'
			pattern := p.parseExpr()
			paramTerm := term.NewTerm(term.Symbol(pname))
			args = append(args, paramTerm)
			specializers = append(specializers, &rules.Isa{Term: paramTerm, Pattern: pattern})
		} else {
			args = append(args, p.parseExpr())
		}
		if p.err != nil {
			return nil, nil
		}
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(tokRParen, "')'") {
		return nil, nil
	}
	p.advance()
	return &term.Call{Name: name, Args: args}, specializers
}

// parseDisjunction implements `disjunction := conjunction ('|' conjunction)*`.
func (p *parser) parseDisjunction() rules.Goal {
	first := p.parseConjunction()
	if p.err != nil {
		return nil
	}
	if p.cur.kind != tokPipe {
		return first
	}
	goals := []rules.Goal{first}
	for p.cur.kind == tokPipe {
		p.advance()
		goals = append(goals, p.parseConjunction())
		if p.err != nil {
			return nil
		}
	}
	return &rules.Or{Goals: goals}
}

// parseConjunction implements `conjunction := unary (',' unary)*`,
// splicing in any Lookup goals desugared from `.attr`/`.method(...)`
// postfix chains encountered while parsing each unary. A conjunction of
// exactly one goal is returned as that goal, unwrapped.
func (p *parser) parseConjunction() rules.Goal {
	var goals []rules.Goal
	for {
		save := p.pending
		p.pending = nil
		g := p.parseUnary()
		if p.err != nil {
			return nil
		}
		goals = append(goals, p.pending...)
		p.pending = save
		goals = append(goals, g)
		if p.cur.kind != tokComma {
			break
		}
		p.advance()
	}
	if len(goals) == 1 {
		return goals[0]
	}
	return &rules.And{Goals: goals}
}

// parseUnary implements `unary := '!' unary | primary`.
func (p *parser) parseUnary() rules.Goal {
	if p.cur.kind == tokBang {
		p.advance()
		return &rules.Not{Goal: p.parseUnary()}
	}
	return p.parsePrimary()
}

// parsePrimary implements:
//
//	primary := compare | call | term | '(' body ')' | 'debug' '(' string ')' | 'cut'
//
// A parenthesized body is always returned as a conjunction, wrapping a
// single goal in a one-goal *rules.And.
func (p *parser) parsePrimary() rules.Goal {
	if p.cur.kind == tokLParen {
		p.advance()
		g := p.parseDisjunction()
		if !p.expect(tokRParen, "')'") {
			return nil
		}
		p.advance()
		if _, ok := g.(*rules.And); !ok {
			g = &rules.And{Goals: []rules.Goal{g}}
		}
		return g
	}
	if p.cur.kind == tokIdent && p.cur.text == "debug" && p.la.kind == tokLParen {
		p.advance() // 'debug'
		p.advance() // '('
		if !p.expect(tokString, "debug message string") {
			return nil
		}
		msg := p.cur.text
		p.advance()
		if !p.expect(tokRParen, "')'") {
			return nil
		}
		p.advance()
		return &rules.Debug{Message: msg}
	}
	if p.cur.kind == tokIdent && p.cur.text == "cut" && p.la.kind != tokLParen && p.la.kind != tokDot {
		p.advance()
		return &rules.Cut{}
	}
	return p.parseCompareOrTerm()
}

// parseCompareOrTerm implements `compare := expr op expr` for
// op ∈ {<,<=,>,>=,==,!=,=,in} plus the `expr isa pattern` structural
// match, falling back to a bare call/term goal when no operator follows.
func (p *parser) parseCompareOrTerm() rules.Goal {
	left := p.parseExpr()
	if p.err != nil {
		return nil
	}
	switch p.cur.kind {
	case tokEqSign:
		p.advance()
		right := p.parseExpr()
		return &rules.Unify{A: left, B: right}
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		op := cmpOpFor(p.cur.kind)
		p.advance()
		right := p.parseExpr()
		return &rules.Cmp{Op: op, A: left, B: right}
	case tokIdent:
		switch p.cur.text {
		case "in":
			p.advance()
			right := p.parseExpr()
			return &rules.In{Elem: left, Collection: right}
		case "isa":
			p.advance()
			pattern := p.parseExpr()
			return &rules.Isa{Term: left, Pattern: pattern}
		}
	}
	if call, ok := left.Value.(*term.Call); ok {
		return &rules.Query{Call: call}
	}
	// A bare non-call term used as a goal succeeds iff it is the boolean
	// true; any other scalar fails the unify and backtracks.
	return &rules.Unify{A: left, B: term.NewTerm(term.Boolean(true))}
}

func cmpOpFor(k tokenKind) rules.CmpOp {
	switch k {
	case tokEq:
		return rules.CmpEQ
	case tokNe:
		return rules.CmpNE
	case tokLt:
		return rules.CmpLT
	case tokLe:
		return rules.CmpLE
	case tokGt:
		return rules.CmpGT
	case tokGe:
		return rules.CmpGE
	}
	return ""
}

// parseExpr parses a term followed by zero or more `.attr` / `.method(args)`
// postfix accesses. Each access desugars into a Lookup goal appended to
// p.pending and is replaced in the expression by a fresh result symbol.
func (p *parser) parseExpr() *term.Term {
	t := p.parsePrimaryTerm()
	for p.err == nil && p.cur.kind == tokDot {
		p.advance()
		if !p.expect(tokIdent, "attribute or method name") {
			return nil
		}
		attr := p.cur.text
		p.checkReservedIdent(attr)
		p.advance()
		var args []*term.Term
		if p.cur.kind == tokLParen {
			p.advance()
			args = p.parseExprList(tokRParen)
			if !p.expect(tokRParen, "')'") {
				return nil
			}
			p.advance()
		}
		result := p.freshSymbol()
		p.pending = append(p.pending, &rules.Lookup{
			Target:    t,
			Attribute: term.Symbol(attr),
			Args:      args,
			Result:    term.Symbol(result),
		})
		t = term.NewTerm(term.Symbol(result))
	}
	return t
}

func (p *parser) parseExprList(end tokenKind) []*term.Term {
	var out []*term.Term
	for p.cur.kind != end {
		if p.err != nil {
			return nil
		}
		out = append(out, p.parseExpr())
		if p.err != nil {
			return nil
		}
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	return out
}

// parsePrimaryTerm implements:
//
//	term := int | string | bool | symbol | list | dict | instance_literal | call
func (p *parser) parsePrimaryTerm() *term.Term {
	switch p.cur.kind {
	case tokInt:
		v := p.cur.ival
		p.advance()
		return term.NewTerm(term.Integer(v))
	case tokString:
		v := p.cur.text
		p.advance()
		return term.NewTerm(term.String(v))
	case tokBool:
		v := p.cur.bval
		p.advance()
		return term.NewTerm(term.Boolean(v))
	case tokLBrack:
		return p.parseList()
	case tokLBrace:
		return p.parseDictTerm("")
	case tokIdent:
		return p.parseIdentTerm()
	default:
		p.fail(ErrUnrecognizedToken, "expected a term")
		return nil
	}
}

func (p *parser) parseIdentTerm() *term.Term {
	name := p.cur.text
	p.advance()
	switch p.cur.kind {
	case tokLParen:
		p.checkReservedIdent(name)
		p.advance()
		args := p.parseExprList(tokRParen)
		if !p.expect(tokRParen, "')'") {
			return nil
		}
		p.advance()
		return term.NewTerm(&term.Call{Name: name, Args: args})
	case tokLBrace:
		if isUpperStart(name) {
			return p.parseDictTerm(name)
		}
	}
	return term.NewTerm(term.Symbol(name))
}

// parseList implements `list := '[' (expr (',' expr)*)? ']'`.
func (p *parser) parseList() *term.Term {
	p.advance() // '['
	elems := p.parseExprList(tokRBrack)
	if !p.expect(tokRBrack, "']'") {
		return nil
	}
	p.advance()
	if elems == nil {
		elems = []*term.Term{}
	}
	return term.NewTerm(term.List(elems))
}

// parseDictTerm implements `dict := '{' (name ':' expr (',' name ':' expr)*)? '}'`
// and, when tag != "", `instance_literal := Name dict`.
func (p *parser) parseDictTerm(tag string) *term.Term {
	p.advance() // '{'
	var entries []term.DictEntry
	for p.cur.kind != tokRBrace {
		if p.err != nil {
			return nil
		}
		if !p.expect(tokIdent, "field name") {
			return nil
		}
		key := p.cur.text
		p.checkReservedIdent(key)
		p.advance()
		if !p.expect(tokColon, "':'") {
			return nil
		}
		p.advance()
		val := p.parseExpr()
		entries = append(entries, term.DictEntry{Key: term.Symbol(key), Value: val})
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(tokRBrace, "'}'") {
		return nil
	}
	p.advance()
	dict := term.Dictionary(entries)
	if tag == "" {
		return term.NewTerm(dict)
	}
	return term.NewTerm(&term.InstanceLiteral{Tag: term.Symbol(tag), Fields: dict})
}

func isUpperStart(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}
