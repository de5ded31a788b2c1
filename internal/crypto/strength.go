package crypto

import (
	"math"
	"unicode/utf8"

	"github.com/nbutton23/zxcvbn-go"
)

// Strength is a qualitative password strength label.
type Strength string

const (
	Weak       Strength = "Weak"
	Moderate   Strength = "Moderate"
	Strong     Strength = "Strong"
	VeryStrong Strength = "Very Strong"
)

// Entropy thresholds in bits. Each bound belongs to the stronger bucket.
const (
	moderateBits   = 28.0
	strongBits     = 36.0
	veryStrongBits = 60.0
)

// zxcvbn's matchers grow much faster than linearly, so only this many
// leading runes are scored. Entropy and Label always use the whole password.
const maxScoredRunes = 64

// Weights per represented class, independent of the actual alphabet used.
var charsetWeights = map[CharClass]int{
	LowerLetters:      26,
	UpperLetters:      26,
	Numbers:           10,
	SpecialCharacters: 33,
}

// StrengthReport describes the estimated strength of a password.
// Score and CrackTime come from zxcvbn and are informational only.
type StrengthReport struct {
	Entropy   float64
	Label     Strength
	Score     int
	CrackTime string
}

// Classify returns the classes represented in password. Anything that is not
// an ASCII letter or digit counts as special.
func Classify(password string) CharClass {
	var tags CharClass
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			tags |= LowerLetters
		case r >= 'A' && r <= 'Z':
			tags |= UpperLetters
		case r >= '0' && r <= '9':
			tags |= Numbers
		default:
			tags |= SpecialCharacters
		}
	}
	return tags
}

// CharsetSize sums the fixed weights of the classes in tags.
func CharsetSize(tags CharClass) int {
	size := 0
	for _, cl := range classOrder {
		if tags.Has(cl) {
			size += charsetWeights[cl]
		}
	}
	return size
}

// Entropy estimates the entropy of password in bits as
// length * log2(charset size). The empty password has zero entropy.
func Entropy(password string) float64 {
	if password == "" {
		return 0
	}
	size := CharsetSize(Classify(password))
	return float64(utf8.RuneCountInString(password)) * math.Log2(float64(size))
}

// LabelFor maps an entropy estimate to a strength label.
func LabelFor(entropy float64) Strength {
	switch {
	case entropy < moderateBits:
		return Weak
	case entropy < strongBits:
		return Moderate
	case entropy < veryStrongBits:
		return Strong
	default:
		return VeryStrong
	}
}

// AssessStrength computes the strength report for password. It never fails.
func AssessStrength(password string) StrengthReport {
	if password == "" {
		return StrengthReport{Entropy: 0, Label: Weak, Score: 0, CrackTime: "instant"}
	}

	entropy := Entropy(password)
	match := zxcvbn.PasswordStrength(scoredPrefix(password), nil)

	return StrengthReport{
		Entropy:   entropy,
		Label:     LabelFor(entropy),
		Score:     match.Score,
		CrackTime: match.CrackTimeDisplay,
	}
}

// scoredPrefix returns at most maxScoredRunes leading runes of password.
func scoredPrefix(password string) string {
	n := 0
	for i := range password {
		if n == maxScoredRunes {
			return password[:i]
		}
		n++
	}
	return password
}
