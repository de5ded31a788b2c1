package crypto

import (
	"errors"
	"fmt"
	"strings"
)

// CharClass is a set of character classes. The zero value, NoClass, selects nothing.
type CharClass uint8

const (
	NoClass      CharClass = 0
	LowerLetters CharClass = 1 << (iota - 1)
	UpperLetters
	Numbers
	SpecialCharacters

	AllClasses = LowerLetters | UpperLetters | Numbers | SpecialCharacters
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars    = "0123456789"
	specialChars   = "!@#$%^&*()_+-=[]{}|;:',.<>?/"
)

var ErrUnknownClass = errors.New("unknown character class")

// classOrder is the order in which alphabets are concatenated and
// guaranteed characters are drawn.
var classOrder = []CharClass{LowerLetters, UpperLetters, Numbers, SpecialCharacters}

var classNames = map[string]CharClass{
	"lower":     LowerLetters,
	"lowercase": LowerLetters,
	"upper":     UpperLetters,
	"uppercase": UpperLetters,
	"numbers":   Numbers,
	"digits":    Numbers,
	"special":   SpecialCharacters,
	"symbols":   SpecialCharacters,
}

// Has reports whether every class in other is also in c.
func (c CharClass) Has(other CharClass) bool {
	return other != NoClass && c&other == other
}

// Count returns the number of real classes in c.
func (c CharClass) Count() int {
	n := 0
	for _, cl := range classOrder {
		if c.Has(cl) {
			n++
		}
	}
	return n
}

// Alphabet returns the literal alphabet of a single class.
func (c CharClass) Alphabet() string {
	switch c {
	case LowerLetters:
		return lowercaseChars
	case UpperLetters:
		return uppercaseChars
	case Numbers:
		return numberChars
	case SpecialCharacters:
		return specialChars
	}
	return ""
}

// Names returns the canonical names of the classes in c, in class order.
func (c CharClass) Names() []string {
	names := make([]string, 0, len(classOrder))
	for _, cl := range classOrder {
		if c.Has(cl) {
			names = append(names, cl.name())
		}
	}
	return names
}

func (c CharClass) String() string {
	if c == NoClass {
		return "none"
	}
	return strings.Join(c.Names(), ",")
}

func (c CharClass) name() string {
	switch c {
	case LowerLetters:
		return "lower"
	case UpperLetters:
		return "upper"
	case Numbers:
		return "numbers"
	case SpecialCharacters:
		return "special"
	}
	return ""
}

// ParseClasses converts class names such as "lower" or "symbols" into a set.
// Names are case-insensitive. An empty list yields NoClass.
func ParseClasses(names []string) (CharClass, error) {
	var set CharClass
	for _, n := range names {
		cl, ok := classNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return NoClass, fmt.Errorf("%w: %q", ErrUnknownClass, n)
		}
		set |= cl
	}
	return set, nil
}
