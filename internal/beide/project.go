package beide

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/beidekit/internal/apperr"
)

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger used for debug output while parsing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Project) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithByteOrder forces the byte order instead of detecting it from the
// file's header record.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(p *Project) {
		p.forced = order
	}
}

// Project is the in-memory model of one BeIDE project file.
type Project struct {
	logger *slog.Logger
	forced binary.ByteOrder

	src   *Source
	order binary.ByteOrder
	m     *model
	err   error
}

// New returns an empty, unset Project.
func New(opts ...Option) *Project {
	p := &Project{
		logger: slog.New(slog.DiscardHandler),
		m:      &model{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open is New followed by Load.
func Open(path string, opts ...Option) (*Project, error) {
	p := New(opts...)
	if err := p.Load(path); err != nil {
		return p, err
	}
	return p, nil
}

// Load reads and parses the file at path, replacing any previous state. On
// failure the Project is left unset and the error is also kept for Err.
func (p *Project) Load(path string) error {
	src, err := ReadSource(path)
	if err != nil {
		return p.fail(err)
	}
	return p.load(src)
}

// LoadBytes parses an in-memory project file. name only labels log output.
func (p *Project) LoadBytes(name string, data []byte) error {
	return p.load(NewSource(name, data))
}

func (p *Project) load(src *Source) error {
	order := p.forced
	if order == nil {
		order = DetectByteOrder(src)
	}
	m, err := parse(src, order, p.logger)
	if err != nil {
		p.logger.Debug("beide: load failed", slog.String("source", src.Name()), slog.String("error", err.Error()))
		return p.fail(err)
	}
	p.src, p.order, p.m, p.err = src, order, m, nil
	p.logger.Debug("beide: loaded",
		slog.String("source", src.Name()),
		slog.String("target", m.targetName),
		slog.Int("files", len(m.files)))
	return nil
}

func (p *Project) fail(err error) error {
	p.src, p.order, p.m, p.err = nil, nil, &model{}, err
	return err
}

// Reset discards the buffer and all parsed state.
func (p *Project) Reset() {
	p.src, p.order, p.m, p.err = nil, nil, &model{}, nil
}

// Err returns the error of the last load, or nil.
func (p *Project) Err() error { return p.err }

// Ready reports whether the model is usable: the last load did not fail and
// the required target name is present, whether parsed or set by hand.
func (p *Project) Ready() bool { return p.err == nil && p.m.targetName != "" }

// Source returns the loaded buffer, or nil when nothing is loaded.
func (p *Project) Source() *Source { return p.src }

// ByteOrder returns the order the last successful load was decoded with.
func (p *Project) ByteOrder() binary.ByteOrder { return p.order }

// FormatVersion returns the version from the header record, 0 if absent.
func (p *Project) FormatVersion() int32 { return p.m.version }

func (p *Project) TargetName() string     { return p.m.targetName }
func (p *Project) SetTargetName(v string) { p.m.targetName = v }

func (p *Project) TargetType() TargetType     { return p.m.targetType }
func (p *Project) SetTargetType(v TargetType) { p.m.targetType = v }

func (p *Project) SystemIncludesAsLocal() bool     { return p.m.sysIncludesAsLocal }
func (p *Project) SetSystemIncludesAsLocal(v bool) { p.m.sysIncludesAsLocal = v }

// FileDetectionMode says whether file types come from extensions or are
// forced to C or C++.
func (p *Project) FileDetectionMode() FileDetectionMode     { return p.m.fileDetection }
func (p *Project) SetFileDetectionMode(v FileDetectionMode) { p.m.fileDetection = v }

func (p *Project) LanguageOptions() LanguageOptions     { return p.m.langOpts }
func (p *Project) SetLanguageOptions(v LanguageOptions) { p.m.langOpts = v }

func (p *Project) WarningMode() WarningMode     { return p.m.warnMode }
func (p *Project) SetWarningMode(v WarningMode) { p.m.warnMode = v }

func (p *Project) Warnings() Warnings     { return p.m.warnings }
func (p *Project) SetWarnings(v Warnings) { p.m.warnings = v }

func (p *Project) CodeGenerationFlags() CodeGenFlags     { return p.m.codeGen }
func (p *Project) SetCodeGenerationFlags(v CodeGenFlags) { p.m.codeGen = v }

func (p *Project) OptimizationMode() OptimizationMode     { return p.m.optMode }
func (p *Project) SetOptimizationMode(v OptimizationMode) { p.m.optMode = v }

func (p *Project) StripFlags() StripFlags     { return p.m.strip }
func (p *Project) SetStripFlags(v StripFlags) { p.m.strip = v }

func (p *Project) ExtraCompilerOptions() string     { return p.m.compilerOpts }
func (p *Project) SetExtraCompilerOptions(v string) { p.m.compilerOpts = v }

func (p *Project) ExtraLinkerOptions() string     { return p.m.linkerOpts }
func (p *Project) SetExtraLinkerOptions(v string) { p.m.linkerOpts = v }

func (p *Project) CountSystemIncludes() int { return len(p.m.sysIncludes) }

func (p *Project) SystemIncludeAt(i int) (string, error) {
	return at(p.m.sysIncludes, i, "system include")
}

func (p *Project) AddSystemInclude(path string) {
	p.m.sysIncludes = append(p.m.sysIncludes, path)
}

func (p *Project) CountLocalIncludes() int { return len(p.m.localIncludes) }

func (p *Project) LocalIncludeAt(i int) (string, error) {
	return at(p.m.localIncludes, i, "local include")
}

func (p *Project) AddLocalInclude(path string) {
	p.m.localIncludes = append(p.m.localIncludes, path)
}

func (p *Project) CountFiles() int { return len(p.m.files) }

func (p *Project) FileAt(i int) (ProjectFile, error) {
	return at(p.m.files, i, "file")
}

func (p *Project) AddFile(f ProjectFile) {
	p.m.files = append(p.m.files, f)
}

func (p *Project) CountFileTypeRules() int { return len(p.m.rules) }

func (p *Project) FileTypeRuleAt(i int) (FileTypeRule, error) {
	return at(p.m.rules, i, "file type rule")
}

func (p *Project) AddFileTypeRule(r FileTypeRule) {
	p.m.rules = append(p.m.rules, r)
}

// SystemIncludes returns a copy of the system include paths.
func (p *Project) SystemIncludes() []string { return slices.Clone(p.m.sysIncludes) }

// LocalIncludes returns a copy of the local include paths.
func (p *Project) LocalIncludes() []string { return slices.Clone(p.m.localIncludes) }

// Files returns a copy of the project files in file order.
func (p *Project) Files() []ProjectFile { return slices.Clone(p.m.files) }

// FileTypeRules returns a copy of the file-type rules.
func (p *Project) FileTypeRules() []FileTypeRule { return slices.Clone(p.m.rules) }

func at[T any](s []T, i int, what string) (T, error) {
	var zero T
	if i < 0 || i >= len(s) {
		return zero, fmt.Errorf("beide: %s index %d outside [0, %d): %w", what, i, len(s), apperr.ErrInvalidIndex)
	}
	return s[i], nil
}
