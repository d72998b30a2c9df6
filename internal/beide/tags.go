package beide

import "fmt"

// Tag is a record identifier, conventionally a four-character code.
type Tag uint32

// FourCC packs a four-character code such as "TNam" into a Tag. It panics if
// code is not exactly four bytes long.
func FourCC(code string) Tag {
	if len(code) != 4 {
		panic(fmt.Sprintf("beide: four-character code %q has length %d", code, len(code)))
	}
	return Tag(uint32(code[0])<<24 | uint32(code[1])<<16 | uint32(code[2])<<8 | uint32(code[3]))
}

// String renders printable codes as 'TNam' and anything else in hex.
func (t Tag) String() string {
	b := []byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(t))
		}
	}
	return "'" + string(b) + "'"
}

// Known record identifiers.
var (
	TagHeader = FourCC("MIDE")

	TagTargetName         = FourCC("TNam")
	TagTargetType         = FourCC("TTyp")
	TagSysIncludesAsLocal = FourCC("SIaL")
	TagFileDetection      = FourCC("FDet")
	TagLanguageOptions    = FourCC("LOpt")
	TagWarningMode        = FourCC("WMod")
	TagWarnings           = FourCC("Warn")
	TagCodeGeneration     = FourCC("CGen")
	TagOptimization       = FourCC("OMod")
	TagStripFlags         = FourCC("Strp")
	TagCompilerOptions    = FourCC("CmpO")
	TagLinkerOptions      = FourCC("LnkO")

	TagSystemIncludes = FourCC("SInc")
	TagLocalIncludes  = FourCC("LInc")
	TagIncludePath    = FourCC("IPth")

	TagFiles        = FourCC("Fils")
	TagFileEntry    = FourCC("FEnt")
	TagFilePath     = FourCC("FPth")
	TagFileMimeType = FourCC("FMim")
	TagFileGroup    = FourCC("FGrp")

	TagFileTypeRules = FourCC("FRul")
	TagRule          = FourCC("Rule")
	TagRuleMimeType  = FourCC("RMim")
	TagRuleExtension = FourCC("RExt")
	TagRuleResources = FourCC("RRes")
	TagRuleTool      = FourCC("RTol")
)
