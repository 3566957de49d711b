package csp

import (
	"fmt"
	"strconv"
)

// Partial is the domain value of a sum auxiliary: the running total before
// and after adding one input variable.
type Partial struct {
	Before int
	After  int
}

// SumVariableName returns the name of the result variable CreateSumVariable
// registers for the given prefix.
func SumVariableName(name string) string {
	return "sum/" + name + "/aggregated"
}

func sumAuxName(name string, i int) string {
	return "sum/" + name + "/" + strconv.Itoa(i)
}

// CreateSumVariable adds a variable with domain 0..maxSum whose value, in
// every consistent assignment, equals the sum of the given variables. The
// inputs must have non-negative int domains. It returns the new variable's
// name.
func CreateSumVariable(c *CSP, name string, variables []string, maxSum int) (string, error) {
	if maxSum < 0 {
		return "", fmt.Errorf("sum %s: negative max sum %d", name, maxSum)
	}
	result := SumVariableName(name)
	if err := c.AddVariable(result, IntRange(0, maxSum)); err != nil {
		return "", fmt.Errorf("sum %s: %w", name, err)
	}

	if len(variables) == 0 {
		c.AddUnaryFactor(result, equalsInt(0))
		return result, nil
	}

	domain := make([]Value, 0, (maxSum+1)*(maxSum+2)/2)
	for before := 0; before <= maxSum; before++ {
		for after := before; after <= maxSum; after++ {
			domain = append(domain, Partial{Before: before, After: after})
		}
	}
	for i := range variables {
		if err := c.AddVariable(sumAuxName(name, i), domain); err != nil {
			return "", fmt.Errorf("sum %s: %w", name, err)
		}
	}

	c.AddUnaryFactor(sumAuxName(name, 0), startsAtZero{})
	for i, v := range variables {
		c.AddBinaryFactor(sumAuxName(name, i), v, addsInput{})
	}
	for i := 0; i+1 < len(variables); i++ {
		c.AddBinaryFactor(sumAuxName(name, i), sumAuxName(name, i+1), chainsPartials{})
	}
	c.AddBinaryFactor(sumAuxName(name, len(variables)-1), result, endsAtTotal{})

	return result, nil
}

// IntRange returns the domain lo..hi inclusive.
func IntRange(lo, hi int) []Value {
	if hi < lo {
		return nil
	}
	values := make([]Value, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		values = append(values, i)
	}
	return values
}

// Ints converts int values to a domain.
func Ints(values ...int) []Value {
	domain := make([]Value, len(values))
	for i, v := range values {
		domain[i] = v
	}
	return domain
}

type startsAtZero struct{}

func (startsAtZero) Weight(v Value) float64 {
	return Bool(v.(Partial).Before == 0)
}

type addsInput struct{}

func (addsInput) Weight(a, b Value) float64 {
	p := a.(Partial)
	return Bool(p.After == p.Before+b.(int))
}

type chainsPartials struct{}

func (chainsPartials) Weight(a, b Value) float64 {
	return Bool(a.(Partial).After == b.(Partial).Before)
}

type endsAtTotal struct{}

func (endsAtTotal) Weight(a, b Value) float64 {
	return Bool(a.(Partial).After == b.(int))
}

type equalsInt int

func (e equalsInt) Weight(v Value) float64 {
	return Bool(v.(int) == int(e))
}

// AtLeast is a unary threshold factor over an int variable.
type AtLeast int

// Weight implements UnaryFactor.
func (a AtLeast) Weight(v Value) float64 {
	return Bool(v.(int) >= int(a))
}
