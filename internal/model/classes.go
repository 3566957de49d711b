package model

import "fmt"

// Classes is the selection made for one quarter: either nothing, or a pair
// of distinct courses. It is comparable and usable as a map key.
type Classes struct {
	first  string
	second string
	pair   bool
}

// NoClasses is the empty selection.
var NoClasses = Classes{}

// TakeClasses returns the selection of two courses. The pair is unordered;
// the codes are stored sorted so equal pairs compare equal.
func TakeClasses(a, b string) Classes {
	if b < a {
		a, b = b, a
	}
	return Classes{first: a, second: b, pair: true}
}

// IsEmpty reports whether nothing is taken.
func (c Classes) IsEmpty() bool {
	return !c.pair
}

// Courses returns the course codes taken, or nil for the empty selection.
func (c Classes) Courses() []string {
	if !c.pair {
		return nil
	}
	return []string{c.first, c.second}
}

// Contains reports whether the selection includes the course code.
func (c Classes) Contains(code string) bool {
	return c.pair && (c.first == code || c.second == code)
}

func (c Classes) String() string {
	if !c.pair {
		return "none"
	}
	return fmt.Sprintf("%s + %s", c.first, c.second)
}
