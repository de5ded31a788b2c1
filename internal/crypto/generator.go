package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

var (
	ErrInvalidConfig      = errors.New("invalid generator configuration")
	ErrEmptyPool          = errors.New("no candidate characters remain after exclusion")
	ErrLengthInsufficient = errors.New("password length must be at least equal to the number of selected character groups")
	ErrRandomSource       = errors.New("reading from random source failed")
)

// EachClassMode controls whether a password is guaranteed to contain a
// character from every selected group.
type EachClassMode int

const (
	// EachClassOff draws every character from the full pool.
	EachClassOff EachClassMode = iota
	// EachClassExtra prepends one character per group on top of Length.
	EachClassExtra
	// EachClassWithin places one character per group inside Length and shuffles.
	EachClassWithin
)

var eachClassNames = map[string]EachClassMode{
	"":       EachClassOff,
	"off":    EachClassOff,
	"extra":  EachClassExtra,
	"within": EachClassWithin,
}

// ParseEachClassMode parses "off", "extra" or "within". The empty string means off.
func ParseEachClassMode(s string) (EachClassMode, bool) {
	m, ok := eachClassNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

func (m EachClassMode) String() string {
	switch m {
	case EachClassExtra:
		return "extra"
	case EachClassWithin:
		return "within"
	}
	return "off"
}

// Options configures the password generator.
type Options struct {
	Length    int
	Classes   CharClass
	Exclude   string
	Custom    string
	EachClass EachClassMode
}

// DefaultOptions returns 16 characters with all classes enabled.
func DefaultOptions() Options {
	return Options{
		Length:  16,
		Classes: AllClasses,
	}
}

// IsValid reports whether at least one class or a custom alphabet is set
// and the length is positive.
func (o Options) IsValid() bool {
	return (o.Classes.Count() > 0 || o.Custom != "") && o.Length > 0
}

// Validate checks the configuration without touching the random source.
func (o Options) Validate() error {
	if o.Classes.Count() == 0 && o.Custom == "" {
		return fmt.Errorf("%w: no character classes selected", ErrInvalidConfig)
	}
	if o.Length <= 0 {
		return fmt.Errorf("%w: length must be positive", ErrInvalidConfig)
	}
	if o.EachClass == EachClassWithin {
		if n := len(groups(o)); o.Length < n {
			return fmt.Errorf("%w: need %d, got %d", ErrLengthInsufficient, n, o.Length)
		}
	}
	return nil
}

// BuildPool returns the deduplicated union of the selected alphabets, in class
// order followed by the custom alphabet, with excluded characters removed.
func BuildPool(o Options) ([]rune, error) {
	var pool []rune
	seen := make(map[rune]bool)
	for _, g := range groups(o) {
		for _, r := range g {
			if !seen[r] {
				seen[r] = true
				pool = append(pool, r)
			}
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return pool, nil
}

// groups returns the non-empty per-class alphabets after exclusion. The custom
// alphabet counts as one group.
func groups(o Options) [][]rune {
	excluded := make(map[rune]bool, len(o.Exclude))
	for _, r := range o.Exclude {
		excluded[r] = true
	}

	alphabets := make([]string, 0, len(classOrder)+1)
	for _, cl := range classOrder {
		if o.Classes.Has(cl) {
			alphabets = append(alphabets, cl.Alphabet())
		}
	}
	if o.Custom != "" {
		alphabets = append(alphabets, o.Custom)
	}

	var out [][]rune
	for _, a := range alphabets {
		var g []rune
		for _, r := range a {
			if !excluded[r] {
				g = append(g, r)
			}
		}
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Generator draws passwords from a cryptographically secure random source.
// It holds no configuration and is safe for sequential reuse.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewGeneratorWithReader returns a Generator that reads randomness from r.
// r must be a CSPRNG outside of tests.
func NewGeneratorWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

var defaultGenerator = NewGenerator()

// Generate creates a password with the package's crypto/rand backed Generator.
func Generate(opts Options) (string, error) {
	return defaultGenerator.Generate(opts)
}

// Generate creates a random password based on the given options.
func (g *Generator) Generate(opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	pool, err := BuildPool(opts)
	if err != nil {
		return "", err
	}

	var required [][]rune
	if opts.EachClass != EachClassOff {
		required = groups(opts)
	}

	n := opts.Length
	if opts.EachClass == EachClassExtra {
		n += len(required)
	}
	result := make([]rune, 0, n)

	for _, set := range required {
		ch, err := g.randRune(set)
		if err != nil {
			return "", err
		}
		result = append(result, ch)
	}

	for len(result) < n {
		ch, err := g.randRune(pool)
		if err != nil {
			return "", err
		}
		result = append(result, ch)
	}

	if opts.EachClass == EachClassWithin {
		if err := g.shuffle(result); err != nil {
			return "", err
		}
	}

	return string(result), nil
}

// randRune picks a uniformly random rune from set.
func (g *Generator) randRune(set []rune) (rune, error) {
	i, err := g.randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func (g *Generator) randInt(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return int(v.Int64()), nil
}

// shuffle performs a Fisher-Yates shuffle using the generator's random source.
func (g *Generator) shuffle(data []rune) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := g.randInt(i + 1)
		if err != nil {
			return err
		}
		data[i], data[j] = data[j], data[i]
	}
	return nil
}
