// Package csp implements a weighted constraint satisfaction problem: named
// variables with finite domains, unary and binary factor tables that merge
// multiplicatively, and a backtracking solver that enumerates every
// maximum-weight assignment.
package csp

import (
	"errors"
	"fmt"
)

// Value is a domain value. Values must be comparable.
type Value = any

// ErrDuplicateVariable is returned when a variable name is registered twice.
var ErrDuplicateVariable = errors.New("variable already exists")

// UnaryFactor weighs a single variable's value. A weight of 0 forbids it.
type UnaryFactor interface {
	Weight(v Value) float64
}

// BinaryFactor weighs a pair of values of two variables.
type BinaryFactor interface {
	Weight(a, b Value) float64
}

// UnaryFunc adapts a function to UnaryFactor.
type UnaryFunc func(v Value) float64

// Weight implements UnaryFactor.
func (f UnaryFunc) Weight(v Value) float64 { return f(v) }

// BinaryFunc adapts a function to BinaryFactor.
type BinaryFunc func(a, b Value) float64

// Weight implements BinaryFactor.
func (f BinaryFunc) Weight(a, b Value) float64 { return f(a, b) }

// Bool converts a hard constraint outcome into a factor weight.
func Bool(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

type variable struct {
	name      string
	domain    []Value
	index     map[Value]int
	unary     []float64
	binary    map[int]*binaryTable
	neighbors []int
}

// binaryTable holds the nonzero entries of a binary factor, one row per
// value index of the owning variable.
type binaryTable struct {
	rows []map[int]float64
}

func (t *binaryTable) weight(i, j int) float64 {
	return t.rows[i][j]
}

// CSP is a weighted constraint satisfaction problem.
type CSP struct {
	vars  []*variable
	index map[string]int
}

// New creates an empty problem.
func New() *CSP {
	return &CSP{index: make(map[string]int)}
}

// AddVariable registers a variable with its ordered domain.
func (c *CSP) AddVariable(name string, domain []Value) error {
	if _, ok := c.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateVariable, name)
	}
	v := &variable{
		name:   name,
		domain: append([]Value(nil), domain...),
		index:  make(map[Value]int, len(domain)),
		binary: make(map[int]*binaryTable),
	}
	for i, val := range domain {
		if _, dup := v.index[val]; dup {
			panic(fmt.Sprintf("csp: duplicate value %v in domain of %s", val, name))
		}
		v.index[val] = i
	}
	c.index[name] = len(c.vars)
	c.vars = append(c.vars, v)
	return nil
}

// AddUnaryFactor evaluates f over the variable's domain and multiplies the
// result into any existing unary table.
func (c *CSP) AddUnaryFactor(name string, f UnaryFactor) {
	v := c.mustVar(name)
	table := make([]float64, len(v.domain))
	for i, val := range v.domain {
		table[i] = checkWeight(f.Weight(val))
	}
	if v.unary == nil {
		v.unary = table
		return
	}
	if len(v.unary) != len(table) {
		panic(fmt.Sprintf("csp: unary table size mismatch for %s", name))
	}
	for i := range table {
		v.unary[i] *= table[i]
	}
}

// AddBinaryFactor evaluates f over every pair of values of the two
// variables. The table is stored in both directions and merged
// multiplicatively with any existing factor between them.
func (c *CSP) AddBinaryFactor(name1, name2 string, f BinaryFactor) {
	i1, i2 := c.mustIndex(name1), c.mustIndex(name2)
	if i1 == i2 {
		panic(fmt.Sprintf("csp: binary factor on a single variable %s", name1))
	}
	v1, v2 := c.vars[i1], c.vars[i2]

	forward := &binaryTable{rows: make([]map[int]float64, len(v1.domain))}
	backward := &binaryTable{rows: make([]map[int]float64, len(v2.domain))}
	for a, val1 := range v1.domain {
		for b, val2 := range v2.domain {
			w := checkWeight(f.Weight(val1, val2))
			if w == 0 {
				continue
			}
			if forward.rows[a] == nil {
				forward.rows[a] = make(map[int]float64)
			}
			if backward.rows[b] == nil {
				backward.rows[b] = make(map[int]float64)
			}
			forward.rows[a][b] = w
			backward.rows[b][a] = w
		}
	}
	c.mergeBinary(i1, i2, forward)
	c.mergeBinary(i2, i1, backward)
}

func (c *CSP) mergeBinary(from, to int, table *binaryTable) {
	v := c.vars[from]
	existing, ok := v.binary[to]
	if !ok {
		v.binary[to] = table
		v.neighbors = append(v.neighbors, to)
		return
	}
	if len(existing.rows) != len(table.rows) {
		panic(fmt.Sprintf("csp: binary table size mismatch for %s", v.name))
	}
	for a, row := range existing.rows {
		for b, w := range row {
			merged := w * table.rows[a][b]
			if merged == 0 {
				delete(row, b)
				continue
			}
			row[b] = merged
		}
	}
}

// NumVars returns the number of variables.
func (c *CSP) NumVars() int {
	return len(c.vars)
}

// Variables returns the variable names in insertion order.
func (c *CSP) Variables() []string {
	names := make([]string, len(c.vars))
	for i, v := range c.vars {
		names[i] = v.name
	}
	return names
}

// HasVariable reports whether the name is registered.
func (c *CSP) HasVariable(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Domain returns a copy of the variable's domain.
func (c *CSP) Domain(name string) []Value {
	return append([]Value(nil), c.mustVar(name).domain...)
}

// NeighborVars returns every variable sharing a binary factor with name,
// in the order the factors were first added.
func (c *CSP) NeighborVars(name string) []string {
	v := c.mustVar(name)
	names := make([]string, len(v.neighbors))
	for i, n := range v.neighbors {
		names[i] = c.vars[n].name
	}
	return names
}

// UnaryWeight returns the merged unary weight of a value, or 1 when the
// variable has no unary factor.
func (c *CSP) UnaryWeight(name string, val Value) float64 {
	v := c.mustVar(name)
	return v.unaryAt(v.mustValue(val))
}

// BinaryWeight returns the merged binary weight between two values, or 1
// when the variables share no factor.
func (c *CSP) BinaryWeight(name1 string, val1 Value, name2 string, val2 Value) float64 {
	i1, i2 := c.mustIndex(name1), c.mustIndex(name2)
	v1, v2 := c.vars[i1], c.vars[i2]
	table, ok := v1.binary[i2]
	if !ok {
		return 1
	}
	return table.weight(v1.mustValue(val1), v2.mustValue(val2))
}

func (v *variable) unaryAt(i int) float64 {
	if v.unary == nil {
		return 1
	}
	return v.unary[i]
}

func (v *variable) mustValue(val Value) int {
	i, ok := v.index[val]
	if !ok {
		panic(fmt.Sprintf("csp: value %v not in domain of %s", val, v.name))
	}
	return i
}

func (c *CSP) mustIndex(name string) int {
	i, ok := c.index[name]
	if !ok {
		panic(fmt.Sprintf("csp: unknown variable %s", name))
	}
	return i
}

func (c *CSP) mustVar(name string) *variable {
	return c.vars[c.mustIndex(name)]
}

func checkWeight(w float64) float64 {
	if w < 0 {
		panic(fmt.Sprintf("csp: negative factor weight %v", w))
	}
	return w
}
