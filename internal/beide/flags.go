package beide

import "strings"

// LanguageOptions are the C/C++ dialect switches.
type LanguageOptions uint32

const (
	LangANSICMode         LanguageOptions = 0x00000001
	LangSupportTrigraphs  LanguageOptions = 0x00000010
	LangSignedChar        LanguageOptions = 0x00000100
	LangUnsignedBitfields LanguageOptions = 0x00001000
	LangConstCharLiterals LanguageOptions = 0x00010000
)

// Warnings selects individual compiler warnings.
type Warnings uint32

const (
	WarnStrictANSI            Warnings = 0x00000001
	WarnLocalShadow           Warnings = 0x00000002
	WarnIncompatibleCast      Warnings = 0x00000004
	WarnCastQualifiers        Warnings = 0x00000008
	WarnConfusingCast         Warnings = 0x00000010
	WarnCantInline            Warnings = 0x00000020
	WarnExternToInline        Warnings = 0x00000040
	WarnOverloadedVirtuals    Warnings = 0x00000080
	WarnCCasts                Warnings = 0x00000100
	WarnEffectiveCPP          Warnings = 0x00000200
	WarnMissingParentheses    Warnings = 0x00001000
	WarnInconsistentReturn    Warnings = 0x00002000
	WarnMissingEnumCases      Warnings = 0x00004000
	WarnUnusedVars            Warnings = 0x00008000
	WarnUninitAutoVars        Warnings = 0x00010000
	WarnInitReordering        Warnings = 0x00020000
	WarnNonvirtualDestructors Warnings = 0x00040000
	WarnUnrecognizedPragmas   Warnings = 0x00080000
	WarnSignedUnsignedComp    Warnings = 0x00100000
	WarnCharSubscripts        Warnings = 0x00200000
	WarnPrintfFormatting      Warnings = 0x00400000
	WarnTrigraphsUsed         Warnings = 0x00800000

	// WarnAllCommonErrors is the IDE's "all common errors" preset.
	WarnAllCommonErrors Warnings = 0x00FFF000
)

// CodeGenFlags control code generation.
type CodeGenFlags uint32

const (
	CodeGenNoPIC             CodeGenFlags = 0x00000001
	CodeGenExplicitTemplates CodeGenFlags = 0x00000002
	CodeGenIgnoreInlining    CodeGenFlags = 0x00000004
	CodeGenProfiling         CodeGenFlags = 0x00000008
	CodeGenDebugging         CodeGenFlags = 0x00000010
	CodeGenOptimizeSize      CodeGenFlags = 0x00000020
)

// StripFlags control symbol stripping at link time.
type StripFlags uint32

const (
	StripAllSymbols      StripFlags = 1
	StripAllLocalSymbols StripFlags = 2
)

// Valid-bit masks.
const (
	languageOptionsMask = LangANSICMode | LangSupportTrigraphs | LangSignedChar | LangUnsignedBitfields | LangConstCharLiterals
	warningsMask        = Warnings(0x000003FF) | WarnAllCommonErrors
	codeGenMask         = CodeGenFlags(0x0000003F)
	stripMask           = StripAllSymbols | StripAllLocalSymbols
)

type flagName struct {
	bit  uint32
	name string
}

var languageOptionNames = []flagName{
	{uint32(LangANSICMode), "ansi-c"},
	{uint32(LangSupportTrigraphs), "trigraphs"},
	{uint32(LangSignedChar), "signed-char"},
	{uint32(LangUnsignedBitfields), "unsigned-bitfields"},
	{uint32(LangConstCharLiterals), "const-char-literals"},
}

var warningNames = []flagName{
	{uint32(WarnStrictANSI), "strict-ansi"},
	{uint32(WarnLocalShadow), "local-shadow"},
	{uint32(WarnIncompatibleCast), "incompatible-cast"},
	{uint32(WarnCastQualifiers), "cast-qualifiers"},
	{uint32(WarnConfusingCast), "confusing-cast"},
	{uint32(WarnCantInline), "cant-inline"},
	{uint32(WarnExternToInline), "extern-to-inline"},
	{uint32(WarnOverloadedVirtuals), "overloaded-virtuals"},
	{uint32(WarnCCasts), "c-casts"},
	{uint32(WarnEffectiveCPP), "effective-c++"},
	{uint32(WarnMissingParentheses), "missing-parentheses"},
	{uint32(WarnInconsistentReturn), "inconsistent-return"},
	{uint32(WarnMissingEnumCases), "missing-enum-cases"},
	{uint32(WarnUnusedVars), "unused-vars"},
	{uint32(WarnUninitAutoVars), "uninit-auto-vars"},
	{uint32(WarnInitReordering), "init-reordering"},
	{uint32(WarnNonvirtualDestructors), "nonvirtual-destructors"},
	{uint32(WarnUnrecognizedPragmas), "unrecognized-pragmas"},
	{uint32(WarnSignedUnsignedComp), "signed-unsigned-comparison"},
	{uint32(WarnCharSubscripts), "char-subscripts"},
	{uint32(WarnPrintfFormatting), "printf-formatting"},
	{uint32(WarnTrigraphsUsed), "trigraphs-used"},
}

var codeGenNames = []flagName{
	{uint32(CodeGenNoPIC), "no-pic"},
	{uint32(CodeGenExplicitTemplates), "explicit-templates"},
	{uint32(CodeGenIgnoreInlining), "ignore-inlining"},
	{uint32(CodeGenProfiling), "profiling"},
	{uint32(CodeGenDebugging), "debugging"},
	{uint32(CodeGenOptimizeSize), "optimize-size"},
}

var stripNames = []flagName{
	{uint32(StripAllSymbols), "all-symbols"},
	{uint32(StripAllLocalSymbols), "local-symbols"},
}

// names lists the set bits of v found in table, in table order.
func names(v uint32, table []flagName) []string {
	out := []string{}
	for _, f := range table {
		if v&f.bit != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

func joinNames(v uint32, table []flagName) string {
	n := names(v, table)
	if len(n) == 0 {
		return "none"
	}
	return strings.Join(n, "|")
}

func (o LanguageOptions) Has(f LanguageOptions) bool { return o&f == f }
func (o LanguageOptions) Valid() bool                { return o&^languageOptionsMask == 0 }
func (o LanguageOptions) Unknown() uint32            { return uint32(o &^ languageOptionsMask) }
func (o LanguageOptions) Names() []string            { return names(uint32(o), languageOptionNames) }
func (o LanguageOptions) String() string             { return joinNames(uint32(o), languageOptionNames) }

func (w Warnings) Has(f Warnings) bool { return w&f == f }
func (w Warnings) Valid() bool         { return w&^warningsMask == 0 }
func (w Warnings) Unknown() uint32     { return uint32(w &^ warningsMask) }
func (w Warnings) Names() []string     { return names(uint32(w), warningNames) }
func (w Warnings) String() string      { return joinNames(uint32(w), warningNames) }

func (c CodeGenFlags) Has(f CodeGenFlags) bool { return c&f == f }
func (c CodeGenFlags) Valid() bool             { return c&^codeGenMask == 0 }
func (c CodeGenFlags) Unknown() uint32         { return uint32(c &^ codeGenMask) }
func (c CodeGenFlags) Names() []string         { return names(uint32(c), codeGenNames) }
func (c CodeGenFlags) String() string          { return joinNames(uint32(c), codeGenNames) }

func (s StripFlags) Has(f StripFlags) bool { return s&f == f }
func (s StripFlags) Valid() bool           { return s&^stripMask == 0 }
func (s StripFlags) Unknown() uint32       { return uint32(s &^ stripMask) }
func (s StripFlags) Names() []string       { return names(uint32(s), stripNames) }
func (s StripFlags) String() string        { return joinNames(uint32(s), stripNames) }
