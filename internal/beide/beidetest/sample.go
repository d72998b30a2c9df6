package beidetest

import "encoding/binary"

// Values written by Sample.
const (
	SampleTargetType      = 0      // application
	SampleFileDetection   = 2      // C++
	SampleLanguageOptions = 0x0101 // ANSI C, signed char
	SampleWarningMode     = 2      // as errors
	SampleWarnings        = 0x00FFF002
	SampleCodeGen         = 0x12 // explicit templates, debugging
	SampleOptimization    = 3
	SampleStrip           = 2
	SampleCompilerOptions = "-Wall -DDEBUG"
	SampleLinkerOptions   = "-lbe -ltracker"
)

// SampleFile mirrors one entry written by Sample.
type SampleFile struct {
	Path, MimeType, Group string
}

var (
	SampleSystemIncludes = []string{"/boot/develop/headers/be", "/boot/develop/headers/posix"}
	SampleLocalIncludes  = []string{"src", "src/ui", "src"}
	SampleFiles          = []SampleFile{
		{"src/App.cpp", "text/x-source-code", "Sources"},
		{"src/ui/MainWindow.cpp", "text/x-source-code", "Sources"},
		{"src/App.h", "text/x-source-code", "Headers"},
		{"MyApp.rsrc", "application/x-be-resource", "Resources"},
	}
)

// Sample builds a complete project named targetName with the values above.
func Sample(order binary.ByteOrder, targetName string) *Builder {
	b := New(order).
		Header(1).
		String("TNam", targetName).
		Int("TTyp", SampleTargetType).
		Int("SIaL", 1).
		Int("FDet", SampleFileDetection).
		Int("LOpt", SampleLanguageOptions).
		Int("WMod", SampleWarningMode).
		Int("Warn", SampleWarnings).
		Int("CGen", SampleCodeGen).
		Int("OMod", SampleOptimization).
		Int("Strp", SampleStrip).
		String("CmpO", SampleCompilerOptions).
		String("LnkO", SampleLinkerOptions)

	b.List("SInc", func(c *Builder) {
		for _, p := range SampleSystemIncludes {
			c.String("IPth", p)
		}
	})
	b.List("LInc", func(c *Builder) {
		for _, p := range SampleLocalIncludes {
			c.String("IPth", p)
		}
	})
	b.List("Fils", func(c *Builder) {
		for _, f := range SampleFiles {
			c.List("FEnt", func(e *Builder) {
				e.String("FPth", f.Path).String("FMim", f.MimeType).String("FGrp", f.Group)
			})
		}
	})
	b.List("FRul", func(c *Builder) {
		c.List("Rule", func(r *Builder) {
			r.String("RMim", "text/x-source-code").String("RExt", "cpp").Int("RRes", 0).String("RTol", "mwcc")
		})
		c.List("Rule", func(r *Builder) {
			r.String("RMim", "application/x-be-resource").String("RExt", "rsrc").Int("RRes", 1).String("RTol", "xres")
		})
	})
	return b
}
