package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultpass/passgen-go/internal/crypto"
)

func parse(t *testing.T, args ...string) (cliConfig, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseFlags(fs, args)
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, crypto.DefaultOptions(), cfg.Opts)
	assert.Equal(t, 1, cfg.Count)
	assert.False(t, cfg.Copy)
	assert.False(t, cfg.Interactive)
	assert.Empty(t, cfg.Verify)
}

func TestParseFlagsExplicit(t *testing.T) {
	cfg, err := parse(t, "-l", "12", "-lower", "-numbers", "-exclude", "aeiou", "-each", "within", "-c", "3")
	require.NoError(t, err)
	assert.Equal(t, crypto.Options{
		Length:    12,
		Classes:   crypto.LowerLetters | crypto.Numbers,
		Exclude:   "aeiou",
		EachClass: crypto.EachClassWithin,
	}, cfg.Opts)
	assert.Equal(t, 3, cfg.Count)
}

func TestParseFlagsOverrideProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.toml")
	require.NoError(t, os.WriteFile(path, []byte("length = 30\nclasses = [\"upper\"]\nexclude = \"O\"\n"), 0o600))

	cfg, err := parse(t, "-profile", path, "-length", "10")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Opts.Length)
	assert.Equal(t, crypto.UpperLetters, cfg.Opts.Classes)
	assert.Equal(t, "O", cfg.Opts.Exclude)
}

func TestParseFlagsErrors(t *testing.T) {
	tests := [][]string{
		{"-each", "sometimes"},
		{"-count", "0"},
		{"-length", "abc"},
		{"stray"},
		{"-profile", "/does/not/exist.toml"},
	}

	for _, args := range tests {
		_, err := parse(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestRunPrintsPasswordsAndStrength(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-l", "12", "-lower", "-numbers", "-exclude", "aeiou", "-c", "2"}, strings.NewReader(""), &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	for _, i := range []int{0, 2} {
		assert.Len(t, lines[i], 12)
		for _, c := range lines[i] {
			assert.True(t, strings.ContainsRune("bcdfghjklmnpqrstvwxyz0123456789", c))
		}
		assert.True(t, strings.HasPrefix(lines[i+1], "entropy: "), lines[i+1])
	}
}

func TestRunEmptyPool(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-l", "100", "-numbers", "-exclude", "0123456789"}, strings.NewReader(""), &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "no candidate characters remain")
}

func TestRunNoClasses(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-lower=false"}, strings.NewReader(""), &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid generator configuration")
}

func TestRunCopy(t *testing.T) {
	orig := copyToClipboard
	t.Cleanup(func() { copyToClipboard = orig })

	var copied string
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-copy", "-l", "20"}, strings.NewReader(""), &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())

	assert.Len(t, copied, 20)
	assert.NotContains(t, stdout.String(), copied)
	assert.Contains(t, stdout.String(), "copied to clipboard")
}

func TestRunCopyFailure(t *testing.T) {
	orig := copyToClipboard
	t.Cleanup(func() { copyToClipboard = orig })
	copyToClipboard = func(string) error { return errors.New("no display") }

	var stdout, stderr bytes.Buffer
	code := run([]string{"-copy"}, strings.NewReader(""), &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "no display")
}

func TestRunInteractive(t *testing.T) {
	input := strings.Join([]string{
		"twelve", // rejected, re-prompted
		"12",
		"lower,emoji", // rejected, re-prompted
		"lower,numbers",
		"aeiou",
		"y",
		"4",
		"numbers",
		"0123456789",
		"n",
	}, "\n") + "\n"

	var out, prompts bytes.Buffer
	err := runInteractive(crypto.NewGenerator(), crypto.DefaultOptions(), strings.NewReader(input), &out, &prompts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Len(t, lines[0], 12)
	assert.True(t, strings.HasPrefix(lines[1], "entropy: "))
	assert.Contains(t, lines[2], "cannot generate")

	assert.Contains(t, prompts.String(), "Please enter a positive whole number.")
	assert.Contains(t, prompts.String(), "unknown character class")
}

func TestRunInteractiveEOF(t *testing.T) {
	var out bytes.Buffer
	err := runInteractive(crypto.NewGenerator(), crypto.DefaultOptions(), strings.NewReader(""), &out, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunVerify(t *testing.T) {
	hash, err := crypto.HashPasswordWithParams("Xk2!pQ9z", crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)

	tests := []struct {
		name     string
		stdin    string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"match", "Xk2!pQ9z\n", 0, "match\n", ""},
		{"match without trailing newline", "Xk2!pQ9z", 0, "match\n", ""},
		{"crlf line ending", "Xk2!pQ9z\r\n", 0, "match\n", ""},
		{"mismatch", "Xk2!pQ9y\n", 1, "no match\n", ""},
		{"empty input", "", 1, "", "empty password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{"-verify", hash}, strings.NewReader(tt.stdin), &stdout, &stderr, false)
			assert.Equal(t, tt.wantCode, code, stderr.String())
			assert.Equal(t, tt.wantOut, stdout.String())
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestRunVerifyMalformedHash(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-verify", "not-a-hash"}, strings.NewReader("secret\n"), &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), crypto.ErrInvalidHashFormat.Error())
}
