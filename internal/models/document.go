package models

import (
	"encoding/binary"

	"github.com/starford/beidekit/internal/beide"
)

// ProjectDocument is the flattened, serializable view of a loaded project.
// Enumerations and flag sets are spelled out by name.
type ProjectDocument struct {
	Path                  string               `json:"path" yaml:"path"`
	FormatVersion         int32                `json:"format_version" yaml:"format_version"`
	ByteOrder             string               `json:"byte_order" yaml:"byte_order"`
	TargetName            string               `json:"target_name" yaml:"target_name"`
	TargetType            string               `json:"target_type" yaml:"target_type"`
	SystemIncludesAsLocal bool                 `json:"system_includes_as_local" yaml:"system_includes_as_local"`
	FileDetection         string               `json:"file_detection" yaml:"file_detection"`
	LanguageOptions       []string             `json:"language_options" yaml:"language_options"`
	WarningMode           string               `json:"warning_mode" yaml:"warning_mode"`
	Warnings              []string             `json:"warnings" yaml:"warnings"`
	CodeGeneration        []string             `json:"code_generation" yaml:"code_generation"`
	Optimization          string               `json:"optimization" yaml:"optimization"`
	Strip                 []string             `json:"strip" yaml:"strip"`

	// Flag bits with no known name, kept so nothing read from the file is lost.
	LanguageOptionsUnknown uint32 `json:"language_options_unknown,omitempty" yaml:"language_options_unknown,omitempty"`
	WarningsUnknown        uint32 `json:"warnings_unknown,omitempty" yaml:"warnings_unknown,omitempty"`
	CodeGenerationUnknown  uint32 `json:"code_generation_unknown,omitempty" yaml:"code_generation_unknown,omitempty"`
	StripUnknown           uint32 `json:"strip_unknown,omitempty" yaml:"strip_unknown,omitempty"`

	CompilerOptions       string               `json:"compiler_options" yaml:"compiler_options"`
	LinkerOptions         string               `json:"linker_options" yaml:"linker_options"`
	SystemIncludes        []string             `json:"system_includes" yaml:"system_includes"`
	LocalIncludes         []string             `json:"local_includes" yaml:"local_includes"`
	Files                 []beide.ProjectFile  `json:"files" yaml:"files"`
	FileTypeRules         []beide.FileTypeRule `json:"file_type_rules" yaml:"file_type_rules"`
}

// Describe flattens p into a ProjectDocument.
func Describe(path string, p *beide.Project) ProjectDocument {
	return ProjectDocument{
		Path:                  path,
		FormatVersion:         p.FormatVersion(),
		ByteOrder:             ByteOrderName(p.ByteOrder()),
		TargetName:            p.TargetName(),
		TargetType:            p.TargetType().String(),
		SystemIncludesAsLocal: p.SystemIncludesAsLocal(),
		FileDetection:         p.FileDetectionMode().String(),
		LanguageOptions:       nonNil(p.LanguageOptions().Names()),
		WarningMode:           p.WarningMode().String(),
		Warnings:              nonNil(p.Warnings().Names()),
		CodeGeneration:        nonNil(p.CodeGenerationFlags().Names()),
		Optimization:          p.OptimizationMode().String(),
		Strip:                 nonNil(p.StripFlags().Names()),
		CompilerOptions:       p.ExtraCompilerOptions(),
		LinkerOptions:         p.ExtraLinkerOptions(),
		SystemIncludes:        nonNil(p.SystemIncludes()),
		LocalIncludes:         nonNil(p.LocalIncludes()),
		Files:                 nonNil(p.Files()),
		FileTypeRules:         nonNil(p.FileTypeRules()),

		LanguageOptionsUnknown: p.LanguageOptions().Unknown(),
		WarningsUnknown:        p.Warnings().Unknown(),
		CodeGenerationUnknown:  p.CodeGenerationFlags().Unknown(),
		StripUnknown:           p.StripFlags().Unknown(),
	}
}

// ByteOrderName returns "big", "little" or "" for nil.
func ByteOrderName(order binary.ByteOrder) string {
	switch order {
	case binary.BigEndian:
		return "big"
	case binary.LittleEndian:
		return "little"
	case nil:
		return ""
	}
	return order.String()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
