// Package calc evaluates the arithmetic typed on the amount keypad.
//
// The grammar is deliberately tiny:
//
//	expr   = term { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = [ "-" | "+" ] number
//	number = digits [ "." digits ] | "." digits
//
// Evaluation never fails from the caller's point of view: anything that does
// not parse, or divides by zero, yields 0.
package calc

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	operators = "+-*/"
	allowed   = "0123456789." + operators
)

var (
	errSyntax     = errors.New("syntax error")
	errDivByZero  = errors.New("division by zero")
	errTrailing   = errors.New("unexpected trailing input")
	errEmptyInput = errors.New("empty expression")
)

// Sanitize drops whitespace, cuts the input at the first character outside
// the keypad alphabet and strips trailing operators and decimal points.
//
//	Sanitize("5;alert(1)") == "5"
//	Sanitize("12+3*")      == "12+3"
func Sanitize(expr string) string {
	expr = strings.Join(strings.Fields(expr), "")
	if i := strings.IndexFunc(expr, func(r rune) bool { return !strings.ContainsRune(allowed, r) }); i >= 0 {
		expr = expr[:i]
	}
	return strings.TrimRight(expr, operators+".")
}

// Evaluate returns the value of expr rounded to two decimals, or zero.
func Evaluate(expr string) decimal.Decimal {
	v, err := evaluate(expr)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// EvaluateString is Evaluate rendered for the keypad display.
func EvaluateString(expr string) string {
	return Evaluate(expr).String()
}

func evaluate(expr string) (decimal.Decimal, error) {
	src := Sanitize(expr)
	if src == "" {
		return decimal.Zero, errEmptyInput
	}
	p := &parser{src: src}
	v, err := p.expr()
	if err != nil {
		return decimal.Zero, err
	}
	if p.pos != len(p.src) {
		return decimal.Zero, errTrailing
	}
	return v.Round(2), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expr() (decimal.Decimal, error) {
	left, err := p.term()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

func (p *parser) term() (decimal.Decimal, error) {
	left, err := p.factor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '*' {
			left = left.Mul(right)
			continue
		}
		if right.IsZero() {
			return decimal.Zero, errDivByZero
		}
		left = left.Div(right)
	}
}

func (p *parser) factor() (decimal.Decimal, error) {
	neg := false
	switch p.peek() {
	case '-':
		neg = true
		p.pos++
	case '+':
		p.pos++
	}
	v, err := p.number()
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		v = v.Neg()
	}
	return v, nil
}

func (p *parser) number() (decimal.Decimal, error) {
	start := p.pos
	digits, dot := 0, false
scan:
	for ; p.pos < len(p.src); p.pos++ {
		switch c := p.src[p.pos]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			break scan
		}
	}
	if digits == 0 {
		return decimal.Zero, errSyntax
	}
	lit := p.src[start:p.pos]
	if strings.HasPrefix(lit, ".") {
		lit = "0" + lit
	}
	lit = strings.TrimSuffix(lit, ".")
	return decimal.NewFromString(lit)
}
