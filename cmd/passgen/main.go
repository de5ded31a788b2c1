package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/profile"
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// cliConfig holds the parsed command line.
type cliConfig struct {
	Opts        crypto.Options
	Count       int
	Copy        bool
	Interactive bool
	Verify      string
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	tty := term.IsTerminal(int(os.Stdin.Fd()))
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, tty))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, tty bool) int {
	fs := flag.NewFlagSet("passgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if cfg.Verify != "" {
		return runVerify(cfg.Verify, stdin, stdout, stderr, tty)
	}

	gen := crypto.NewGenerator()

	if cfg.Interactive {
		prompts := io.Discard
		if tty {
			prompts = stdout
		}
		if err := runInteractive(gen, cfg.Opts, stdin, stdout, prompts); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	var last string
	for i := 0; i < cfg.Count; i++ {
		password, err := gen.Generate(cfg.Opts)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		last = password
		if !cfg.Copy {
			fmt.Fprintln(stdout, password)
		}
		printStrength(stdout, password)
	}

	if cfg.Copy {
		if err := copyToClipboard(last); err != nil {
			slog.Warn("clipboard unavailable", "error", err)
			fmt.Fprintf(stderr, "error: copying to clipboard: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "copied to clipboard")
	}
	return 0
}

// parseFlags registers and parses command-line flags. Flags given explicitly
// override the profile; the profile overrides the built-in defaults.
func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, error) {
	var (
		length      int
		lower       bool
		upper       bool
		numbers     bool
		special     bool
		exclude     string
		custom      string
		each        string
		profilePath string
		cfg         = cliConfig{Count: 1}
	)

	fs.IntVar(&length, "length", 16, "password length")
	fs.IntVar(&length, "l", 16, "password length (shorthand)")
	fs.BoolVar(&lower, "lower", false, "include lowercase letters")
	fs.BoolVar(&upper, "upper", false, "include uppercase letters")
	fs.BoolVar(&numbers, "numbers", false, "include digits")
	fs.BoolVar(&special, "special", false, "include special characters")
	fs.StringVar(&exclude, "exclude", "", "characters to leave out")
	fs.StringVar(&custom, "custom", "", "additional custom alphabet")
	fs.StringVar(&each, "each", "off", "one character per class: off, extra (added to length) or within (part of length)")
	fs.IntVar(&cfg.Count, "count", 1, "number of passwords to generate")
	fs.IntVar(&cfg.Count, "c", 1, "number of passwords (shorthand)")
	fs.StringVar(&profilePath, "profile", "", "TOML profile with saved options")
	fs.BoolVar(&cfg.Copy, "copy", false, "copy the last password to the clipboard instead of printing it")
	fs.BoolVar(&cfg.Interactive, "i", false, "prompt for options interactively")
	fs.StringVar(&cfg.Verify, "verify", "", "check a password read from stdin against an Argon2id hash")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if fs.NArg() > 0 {
		return cliConfig{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if cfg.Count < 1 {
		return cliConfig{}, fmt.Errorf("count must be at least 1, got %d", cfg.Count)
	}

	opts := crypto.DefaultOptions()
	if profilePath != "" {
		p, err := profile.Load(profilePath)
		if err != nil {
			return cliConfig{}, err
		}
		if opts, err = p.Options(opts); err != nil {
			return cliConfig{}, err
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["length"] || set["l"] {
		opts.Length = length
	}
	if set["lower"] || set["upper"] || set["numbers"] || set["special"] {
		opts.Classes = crypto.NoClass
		for cl, on := range map[crypto.CharClass]bool{
			crypto.LowerLetters:      lower,
			crypto.UpperLetters:      upper,
			crypto.Numbers:           numbers,
			crypto.SpecialCharacters: special,
		} {
			if on {
				opts.Classes |= cl
			}
		}
	}
	if set["exclude"] {
		opts.Exclude = exclude
	}
	if set["custom"] {
		opts.Custom = custom
	}
	if set["each"] {
		mode, ok := crypto.ParseEachClassMode(each)
		if !ok {
			return cliConfig{}, fmt.Errorf("invalid -each value %q", each)
		}
		opts.EachClass = mode
	}

	cfg.Opts = opts
	return cfg, nil
}

// runInteractive prompts for length, classes and exclusions, then prints a
// password, until the user declines another one or input ends.
func runInteractive(gen *crypto.Generator, base crypto.Options, in io.Reader, out, prompts io.Writer) error {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(prompts, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		opts := base

		for {
			line, ok := read(fmt.Sprintf("Password length [%d]: ", opts.Length))
			if !ok {
				return scanner.Err()
			}
			if line == "" {
				break
			}
			n, err := strconv.Atoi(line)
			if err == nil && n > 0 {
				opts.Length = n
				break
			}
			fmt.Fprintln(prompts, "Please enter a positive whole number.")
		}

		for {
			line, ok := read(fmt.Sprintf("Classes (lower,upper,numbers,special) [%s]: ", opts.Classes))
			if !ok {
				return scanner.Err()
			}
			if line == "" {
				break
			}
			classes, err := crypto.ParseClasses(strings.Split(line, ","))
			if err == nil {
				opts.Classes = classes
				break
			}
			fmt.Fprintln(prompts, err)
		}

		line, ok := read(fmt.Sprintf("Exclude characters [%s]: ", opts.Exclude))
		if !ok {
			return scanner.Err()
		}
		if line != "" {
			opts.Exclude = line
		}

		password, err := gen.Generate(opts)
		switch {
		case errors.Is(err, crypto.ErrEmptyPool), errors.Is(err, crypto.ErrInvalidConfig), errors.Is(err, crypto.ErrLengthInsufficient):
			fmt.Fprintf(out, "cannot generate: %v\n", err)
		case err != nil:
			return err
		default:
			fmt.Fprintln(out, password)
			printStrength(out, password)
		}

		again, ok := read("Generate another? [y/N]: ")
		if !ok || !isYes(again) {
			return scanner.Err()
		}
	}
}

// runVerify reads one password from stdin and checks it against encodedHash.
// Exit code 0 means match, 1 means no match or a malformed hash.
func runVerify(encodedHash string, stdin io.Reader, stdout, stderr io.Writer, tty bool) int {
	password, err := readSecret(stdin, stdout, tty)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading password: %v\n", err)
		return 1
	}

	ok, err := crypto.VerifyPassword(password, encodedHash)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(stdout, "no match")
		return 1
	}
	fmt.Fprintln(stdout, "match")
	return 0
}

// readSecret reads a single line without echo when stdin is a terminal.
func readSecret(stdin io.Reader, prompts io.Writer, tty bool) (string, error) {
	if f, ok := stdin.(*os.File); ok && tty {
		fmt.Fprint(prompts, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompts)
		return string(b), err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func printStrength(w io.Writer, password string) {
	report := crypto.AssessStrength(password)
	fmt.Fprintf(w, "entropy: %.2f bits (%s)\n", report.Entropy, report.Label)
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}
