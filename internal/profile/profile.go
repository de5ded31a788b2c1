// Package profile loads saved generator settings for the passgen CLI.
package profile

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/vaultpass/passgen-go/internal/crypto"
)

var ErrUnknownEachClass = errors.New("each_class must be one of off, extra, within")

// Profile is a saved set of generator options. A nil Classes slice leaves
// the choice to the caller; an empty one selects no class.
type Profile struct {
	Length    int      `toml:"length"`
	Classes   []string `toml:"classes"`
	Exclude   string   `toml:"exclude"`
	Custom    string   `toml:"custom"`
	EachClass string   `toml:"each_class"`
}

// Load reads a profile from a TOML file. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func Load(path string) (Profile, error) {
	var p Profile
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("profile %s: unknown key %q", path, undecoded[0].String())
	}
	return p, nil
}

// Options converts the profile into generator options. Unset fields keep
// the values in base.
func (p Profile) Options(base crypto.Options) (crypto.Options, error) {
	opts := base
	if p.Length != 0 {
		opts.Length = p.Length
	}
	if p.Classes != nil {
		classes, err := crypto.ParseClasses(p.Classes)
		if err != nil {
			return crypto.Options{}, err
		}
		opts.Classes = classes
	}
	if p.Exclude != "" {
		opts.Exclude = p.Exclude
	}
	if p.Custom != "" {
		opts.Custom = p.Custom
	}
	if p.EachClass != "" {
		mode, ok := crypto.ParseEachClassMode(p.EachClass)
		if !ok {
			return crypto.Options{}, fmt.Errorf("%w: %q", ErrUnknownEachClass, p.EachClass)
		}
		opts.EachClass = mode
	}
	return opts, nil
}
