package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/model"
)

const defaultLength = 16

var (
	ErrLengthTooLong        = errors.New("password length exceeds the configured maximum")
	ErrNegativeLength       = errors.New("password length must not be negative")
	ErrUnknownEachClassMode = errors.New("each_class must be one of off, extra, within")
	ErrPasswordTooLong      = errors.New("password exceeds the configured maximum length")
)

// Recorder stores generation events.
type Recorder interface {
	Insert(ctx context.Context, rec *model.GenerationRecord) error
}

// GeneratorService handles password generation and strength assessment.
type GeneratorService struct {
	gen       *crypto.Generator
	maxLength int
	recorder  Recorder
	hashFunc  func(string) (string, error)
}

// NewGeneratorService creates a GeneratorService. recorder may be nil, in
// which case no history is kept.
func NewGeneratorService(gen *crypto.Generator, maxLength int, recorder Recorder) *GeneratorService {
	return &GeneratorService{
		gen:       gen,
		maxLength: maxLength,
		recorder:  recorder,
		hashFunc:  crypto.HashPassword,
	}
}

// Generate produces a password and its strength report for req.
func (s *GeneratorService) Generate(ctx context.Context, req model.GenerateRequest) (model.GenerateResponse, error) {
	opts, err := s.options(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	password, err := s.gen.Generate(opts)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	report := crypto.AssessStrength(password)
	resp := model.GenerateResponse{
		Password: password,
		Length:   utf8.RuneCountInString(password),
		Strength: strengthResponse(report),
	}

	if req.Hash {
		hash, err := s.hashFunc(password)
		if err != nil {
			return model.GenerateResponse{}, fmt.Errorf("hashing password: %w", err)
		}
		resp.Hash = hash
	}

	s.record(ctx, opts, report)

	return resp, nil
}

// Assess reports the strength of a caller-supplied password.
func (s *GeneratorService) Assess(req model.StrengthRequest) (model.StrengthResponse, error) {
	if utf8.RuneCountInString(req.Password) > s.maxLength {
		return model.StrengthResponse{}, ErrPasswordTooLong
	}
	return strengthResponse(crypto.AssessStrength(req.Password)), nil
}

// options maps an API request onto generator options.
func (s *GeneratorService) options(req model.GenerateRequest) (crypto.Options, error) {
	if req.Length < 0 {
		return crypto.Options{}, ErrNegativeLength
	}
	length := req.Length
	if length == 0 {
		length = defaultLength
	}
	if length > s.maxLength {
		return crypto.Options{}, fmt.Errorf("%w (%d)", ErrLengthTooLong, s.maxLength)
	}

	classes := crypto.AllClasses
	if req.Classes != nil {
		var err error
		if classes, err = crypto.ParseClasses(req.Classes); err != nil {
			return crypto.Options{}, err
		}
	}

	mode, ok := crypto.ParseEachClassMode(req.EachClass)
	if !ok {
		return crypto.Options{}, ErrUnknownEachClassMode
	}

	return crypto.Options{
		Length:    length,
		Classes:   classes,
		Exclude:   req.Exclude,
		Custom:    req.Custom,
		EachClass: mode,
	}, nil
}

// record stores the generation event. Failures are logged and never surface
// to the caller.
func (s *GeneratorService) record(ctx context.Context, opts crypto.Options, report crypto.StrengthReport) {
	if s.recorder == nil {
		return
	}

	rec := &model.GenerationRecord{
		Length:    opts.Length,
		Classes:   opts.Classes.String(),
		EachClass: opts.EachClass.String(),
		Entropy:   report.Entropy,
		Label:     string(report.Label),
	}
	if err := s.recorder.Insert(ctx, rec); err != nil {
		slog.Warn("recording generation failed", "error", err)
	}
}

// IsValidationError reports whether err is caused by the request rather than the server.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrLengthTooLong) ||
		errors.Is(err, ErrNegativeLength) ||
		errors.Is(err, ErrUnknownEachClassMode) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, crypto.ErrInvalidConfig) ||
		errors.Is(err, crypto.ErrLengthInsufficient) ||
		errors.Is(err, crypto.ErrUnknownClass)
}

func strengthResponse(r crypto.StrengthReport) model.StrengthResponse {
	return model.StrengthResponse{
		Entropy:   r.Entropy,
		Label:     string(r.Label),
		Score:     r.Score,
		CrackTime: r.CrackTime,
	}
}
