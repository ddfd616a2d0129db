// Copyright 2026 © The Mentis Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mentis-ai/mentis/pkg/errors"
)

// ToolNameCalculator is the registry name of the arithmetic tool.
const ToolNameCalculator = "calculator"

// exprSanitizer strips everything that is not part of a basic
// arithmetic expression, so a full user sentence can be passed in.
var exprSanitizer = regexp.MustCompile(`[^0-9+\-*/().\s]`)

// Calculator evaluates basic arithmetic expressions embedded in a
// message. Evaluation errors are reported in the result text rather
// than as a tool error, so the agent can surface them to the user.
type Calculator struct{}

// NewCalculator creates the arithmetic tool.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Name implements core.Tool.
func (c *Calculator) Name() string { return ToolNameCalculator }

// Call extracts the arithmetic expression from the input message and
// evaluates it. The input must be a string.
func (c *Calculator) Call(ctx context.Context, input any) (any, error) {
	message, ok := input.(string)
	if !ok {
		return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("calculator expects a string input, got %T", input), nil)
	}

	expr := strings.TrimSpace(exprSanitizer.ReplaceAllString(message, ""))
	value, isFloat, err := evalExpression(expr)
	if err != nil {
		return fmt.Sprintf("Error calculating: %v", err), nil
	}
	return fmt.Sprintf("Result: %s", formatNumber(value, isFloat)), nil
}

// formatNumber renders the result the way a dynamically typed
// evaluator would: expressions that stayed integral print bare
// ("110"), while anything touched by division or a decimal literal
// keeps a decimal point even when the value is whole ("25.0").
func formatNumber(v float64, isFloat bool) string {
	if !isFloat && v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// evalExpression parses and evaluates the four basic operators with
// parentheses and the usual precedence. Division is float division.
// The second return reports whether the result is a float, which is
// the case as soon as a division or a decimal literal is involved.
func evalExpression(expr string) (float64, bool, error) {
	p := &exprParser{input: expr}
	p.skipSpaces()
	if p.eof() {
		return 0, false, fmt.Errorf("empty expression")
	}
	value, err := p.parseSum()
	if err != nil {
		return 0, false, err
	}
	p.skipSpaces()
	if !p.eof() {
		return 0, false, fmt.Errorf("unexpected character %q", p.input[p.pos])
	}
	return value, p.float, nil
}

type exprParser struct {
	input string
	pos   int

	// float records that a division or decimal literal occurred, which
	// taints the whole result.
	float bool
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
			p.float = true
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	p.skipSpaces()
	if p.eof() {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	if p.peek() == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for !p.eof() {
		ch := p.input[p.pos]
		if ch >= '0' && ch <= '9' {
			p.pos++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	if seenDot {
		p.float = true
	}
	return v, nil
}
