package compiler

import "github.com/mna/ploxvm/lang/token"

// prec is an operator precedence level, lowest to highest, mirroring the
// Pratt table the single-pass compiler climbs.
type prec int

//nolint:revive
const (
	precNone       prec = iota
	precAssignment      // =
	precOr              // or
	precAnd             // and
	precEquality        // == !=
	precComparison      // < > <= >=
	precTerm             // + -
	precFactor           // * /
	precUnary            // ! -
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix parseFn
	infix  parseFn
	prec   prec
}

var rules map[token.Token]rule

func init() {
	rules = map[token.Token]rule{
		token.LPAREN:     {(*Compiler).grouping, nil, precNone},
		token.MINUS:      {(*Compiler).unary, (*Compiler).binary, precTerm},
		token.PLUS:       {nil, (*Compiler).binary, precTerm},
		token.SLASH:      {nil, (*Compiler).binary, precFactor},
		token.STAR:       {nil, (*Compiler).binary, precFactor},
		token.BANG:       {(*Compiler).unary, nil, precNone},
		token.BANG_EQ:    {nil, (*Compiler).binary, precEquality},
		token.EQ_EQ:      {nil, (*Compiler).binary, precEquality},
		token.GT:         {nil, (*Compiler).binary, precComparison},
		token.GT_EQ:      {nil, (*Compiler).binary, precComparison},
		token.LT:         {nil, (*Compiler).binary, precComparison},
		token.LT_EQ:      {nil, (*Compiler).binary, precComparison},
		token.IDENTIFIER: {(*Compiler).variable, nil, precNone},
		token.STRING:     {(*Compiler).string, nil, precNone},
		token.NUMBER:     {(*Compiler).number, nil, precNone},
		token.AND:        {nil, (*Compiler).and, precAnd},
		token.OR:         {nil, (*Compiler).or, precOr},
		token.FALSE:      {(*Compiler).literal, nil, precNone},
		token.TRUE:       {(*Compiler).literal, nil, precNone},
		token.NIL:        {(*Compiler).literal, nil, precNone},
	}
}

func getRule(tok token.Token) rule {
	if r, ok := rules[tok]; ok {
		return r
	}
	return rule{prec: precNone}
}
