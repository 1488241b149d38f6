// Package calc evaluates the arithmetic typed on the amount keypad, such as
// "12,50+7.5*2".
package calc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrSyntax         = errors.New("malformed expression")
	ErrDivisionByZero = errors.New("division by zero")
)

// Evaluate computes expr with the usual precedence: * and / bind tighter than
// + and -, operators are left associative and a leading minus negates.
// Commas are read as decimal points and any other character is ignored. An
// empty expression is zero. An expression still being typed, ending in an
// operator or a dot, evaluates to its leading number.
func Evaluate(expr string) (decimal.Decimal, error) {
	src := sanitize(expr)
	if src == "" {
		return decimal.Zero, nil
	}
	if strings.ContainsAny(src[len(src)-1:], "+-*/.") {
		return leadingNumber(src), nil
	}

	p := &parser{src: src}
	v, err := p.sum()
	if err != nil {
		return decimal.Zero, fmt.Errorf("Evaluate: %q: %w", expr, err)
	}
	if p.pos != len(p.src) {
		return decimal.Zero, fmt.Errorf("Evaluate: %q: unexpected %q at %d: %w", expr, p.src[p.pos], p.pos, ErrSyntax)
	}
	return v, nil
}

func sanitize(expr string) string {
	var b strings.Builder
	for _, r := range expr {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '-', r == '*', r == '/', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteByte('.')
		}
	}
	return b.String()
}

// leadingNumber parses the longest numeric prefix, or zero if there is none.
func leadingNumber(s string) decimal.Decimal {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && isDigit(s[frac]) {
			frac++
			digits++
		}
		if frac > end+1 {
			end = frac
		}
	}
	if digits == 0 {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.TrimPrefix(s[:end], "+"))
	if err != nil {
		return decimal.Zero
	}
	return v
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

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

func (p *parser) sum() (decimal.Decimal, error) {
	left, err := p.product()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.product()
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

func (p *parser) product() (decimal.Decimal, error) {
	left, err := p.unary()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '*' {
			left = left.Mul(right)
			continue
		}
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		left = left.Div(right)
	}
}

func (p *parser) unary() (decimal.Decimal, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		return v.Neg(), err
	case '+':
		p.pos++
		return p.unary()
	}
	return p.number()
}

func (p *parser) number() (decimal.Decimal, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' {
			if seenDot {
				return decimal.Zero, fmt.Errorf("second decimal point at %d: %w", p.pos, ErrSyntax)
			}
			seenDot = true
		} else if !isDigit(c) {
			break
		}
		p.pos++
	}
	lit := p.src[start:p.pos]
	if lit == "" || lit == "." {
		return decimal.Zero, fmt.Errorf("expected number at %d: %w", start, ErrSyntax)
	}
	v, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("number %q: %w", lit, ErrSyntax)
	}
	return v, nil
}
