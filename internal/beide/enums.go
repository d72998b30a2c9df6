package beide

import "fmt"

// TargetType is the kind of binary a project builds.
type TargetType uint32

const (
	TargetApplication TargetType = iota
	TargetSharedLibrary
	TargetStaticLibrary
	TargetKernelDriver
)

var targetTypeNames = []string{"application", "shared-library", "static-library", "kernel-driver"}

func (t TargetType) Valid() bool { return int(t) < len(targetTypeNames) }

func (t TargetType) String() string {
	if t.Valid() {
		return targetTypeNames[t]
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// ParseTargetType is the inverse of TargetType.String.
func ParseTargetType(s string) (TargetType, error) {
	for i, n := range targetTypeNames {
		if n == s {
			return TargetType(i), nil
		}
	}
	return 0, fmt.Errorf("beide: unknown target type %q", s)
}

// FileDetectionMode decides whether source files are typed by extension or
// forced to C or C++.
type FileDetectionMode uint32

const (
	FileTypesAutodetect FileDetectionMode = iota
	FileTypesCMode
	FileTypesCPPMode
)

var fileDetectionNames = []string{"autodetect", "c", "c++"}

func (m FileDetectionMode) Valid() bool { return int(m) < len(fileDetectionNames) }

func (m FileDetectionMode) String() string {
	if m.Valid() {
		return fileDetectionNames[m]
	}
	return fmt.Sprintf("unknown(%d)", uint32(m))
}

// WarningMode says how warnings are treated: enabled, disabled, or as errors.
type WarningMode uint32

const (
	WarnModeEnabled WarningMode = iota
	WarnModeDisabled
	WarnModeAsErrors
)

var warningModeNames = []string{"enabled", "disabled", "as-errors"}

func (m WarningMode) Valid() bool { return int(m) < len(warningModeNames) }

func (m WarningMode) String() string {
	if m.Valid() {
		return warningModeNames[m]
	}
	return fmt.Sprintf("unknown(%d)", uint32(m))
}

// OptimizationMode is the optimizer level.
type OptimizationMode uint32

const (
	OptimizeNone OptimizationMode = iota
	OptimizeSome
	OptimizeMore
	OptimizeFull
)

var optimizationNames = []string{"none", "some", "more", "full"}

func (m OptimizationMode) Valid() bool { return int(m) < len(optimizationNames) }

func (m OptimizationMode) String() string {
	if m.Valid() {
		return optimizationNames[m]
	}
	return fmt.Sprintf("unknown(%d)", uint32(m))
}
