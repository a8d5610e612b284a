package expr

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

// ErrSyntax is returned when the input is not a valid sequence of expressions.
var ErrSyntax = errors.New("syntax error")

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read
	kind  rune   // Kind of the last token, as returned by the scanner
	pos   scanner.Position
}

// Parse parses all the expressions from the given input Reader.
// Expressions are integers, symbols, or lists of expressions between parentheses.
// A ';' starts a comment that runs until the end of the line.
func Parse(r io.Reader) ([]Expr, error) {
	p := &parser{}
	p.s.Init(r)
	p.s.Mode = scanner.ScanIdents
	p.s.IsIdentRune = isIdentRune
	p.s.Error = func(*scanner.Scanner, string) {}
	p.scan()
	var res []Expr
	for !p.eof {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// ParseString parses the expressions in s.
func ParseString(s string) ([]Expr, error) {
	return Parse(strings.NewReader(s))
}

func isIdentRune(ch rune, i int) bool {
	return ch != '(' && ch != ')' && ch != ';' && ch != scanner.EOF && unicode.IsPrint(ch) && !unicode.IsSpace(ch)
}

func (p *parser) scan() {
	for !p.eof {
		tok := p.s.Scan()
		p.pos = p.s.Position
		if tok == ';' {
			for ch := p.s.Next(); ch != '\n' && ch != scanner.EOF; ch = p.s.Next() {
			}
			continue
		}
		p.eof = tok == scanner.EOF
		p.kind = tok
		p.token = p.s.TokenText()
		return
	}
}

func (p *parser) parseExpr() (Expr, error) {
	switch p.token {
	case "(":
		start := p.pos
		p.scan()
		var l List
		for p.token != ")" {
			if p.eof {
				return nil, fmt.Errorf("%w: unclosed parenthesis opened at %v", ErrSyntax, start)
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			l = append(l, e)
		}
		p.scan()
		return l, nil
	case ")":
		return nil, fmt.Errorf("%w: unexpected ')' at %v", ErrSyntax, p.pos)
	}
	if p.kind != scanner.Ident {
		return nil, fmt.Errorf("%w: unexpected character %q at %v", ErrSyntax, p.token, p.pos)
	}
	tok := p.token
	p.scan()
	if n, err := strconv.Atoi(tok); err == nil {
		return Int(n), nil
	}
	return Symbol(tok), nil
}
