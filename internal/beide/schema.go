package beide

// kind is the payload shape of a known record.
type kind int

const (
	kindInt kind = iota
	kindBool
	kindFlags
	kindString
	kindList
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "int32"
	case kindBool:
		return "bool"
	case kindFlags:
		return "flags"
	case kindString:
		return "string"
	case kindList:
		return "list"
	}
	return "unknown"
}

// field binds a known top-level tag to the model. Exactly one of setInt,
// setString and decodeList is set, matching kind.
type field struct {
	name     string
	tag      Tag
	kind     kind
	required bool

	setInt     func(*model, int32)
	setString  func(*model, string)
	decodeList func(decoder, record, *model) error
}

// schema lists the known top-level records in parse order. Newly understood
// tags are added here.
var schema = []field{
	{name: "target name", tag: TagTargetName, kind: kindString, required: true,
		setString: func(m *model, v string) { m.targetName = v }},
	{name: "target type", tag: TagTargetType, kind: kindInt,
		setInt: func(m *model, v int32) { m.targetType = TargetType(v) }},
	{name: "system includes as local", tag: TagSysIncludesAsLocal, kind: kindBool,
		setInt: func(m *model, v int32) { m.sysIncludesAsLocal = v != 0 }},
	{name: "file detection mode", tag: TagFileDetection, kind: kindInt,
		setInt: func(m *model, v int32) { m.fileDetection = FileDetectionMode(v) }},
	{name: "language options", tag: TagLanguageOptions, kind: kindFlags,
		setInt: func(m *model, v int32) { m.langOpts = LanguageOptions(uint32(v)) }},
	{name: "warning mode", tag: TagWarningMode, kind: kindInt,
		setInt: func(m *model, v int32) { m.warnMode = WarningMode(v) }},
	{name: "warnings", tag: TagWarnings, kind: kindFlags,
		setInt: func(m *model, v int32) { m.warnings = Warnings(uint32(v)) }},
	{name: "code generation", tag: TagCodeGeneration, kind: kindFlags,
		setInt: func(m *model, v int32) { m.codeGen = CodeGenFlags(uint32(v)) }},
	{name: "optimization mode", tag: TagOptimization, kind: kindInt,
		setInt: func(m *model, v int32) { m.optMode = OptimizationMode(v) }},
	{name: "strip flags", tag: TagStripFlags, kind: kindFlags,
		setInt: func(m *model, v int32) { m.strip = StripFlags(uint32(v)) }},
	{name: "extra compiler options", tag: TagCompilerOptions, kind: kindString,
		setString: func(m *model, v string) { m.compilerOpts = v }},
	{name: "extra linker options", tag: TagLinkerOptions, kind: kindString,
		setString: func(m *model, v string) { m.linkerOpts = v }},
	{name: "system includes", tag: TagSystemIncludes, kind: kindList,
		decodeList: func(d decoder, rec record, m *model) error {
			paths, err := d.stringList(rec, TagIncludePath)
			m.sysIncludes = append(m.sysIncludes, paths...)
			return err
		}},
	{name: "local includes", tag: TagLocalIncludes, kind: kindList,
		decodeList: func(d decoder, rec record, m *model) error {
			paths, err := d.stringList(rec, TagIncludePath)
			m.localIncludes = append(m.localIncludes, paths...)
			return err
		}},
	{name: "project files", tag: TagFiles, kind: kindList, decodeList: decodeFiles},
	{name: "file type rules", tag: TagFileTypeRules, kind: kindList, decodeList: decodeRules},
}

// known reports whether tag is a top-level tag the parser consumes.
func known(tag Tag) bool {
	if tag == TagHeader {
		return true
	}
	for _, f := range schema {
		if f.tag == tag {
			return true
		}
	}
	return false
}

// decode materializes rec into m.
func (f field) decode(d decoder, rec record, m *model) error {
	switch f.kind {
	case kindInt, kindBool, kindFlags:
		v, _, err := d.readInt32(rec.payload, rec.end)
		if err != nil {
			return tagged(err, f.tag)
		}
		f.setInt(m, v)
	case kindString:
		v, _, err := d.readString(rec.payload, rec.end)
		if err != nil {
			return tagged(err, f.tag)
		}
		f.setString(m, v)
	case kindList:
		if err := f.decodeList(d, rec, m); err != nil {
			return tagged(err, f.tag)
		}
	}
	return nil
}

// stringList collects the string payload of every child tagged child.
func (d decoder) stringList(rec record, child Tag) ([]string, error) {
	var out []string
	err := d.walk(rec.payload, rec.end, func(c record) error {
		if c.tag != child {
			return nil
		}
		s, _, err := d.readString(c.payload, c.end)
		if err != nil {
			return tagged(err, c.tag)
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

// stringFields reads the string children of an entry into the slots named by
// dst. Missing children leave their slot empty; the first occurrence wins.
func (d decoder) stringFields(rec record, dst map[Tag]*string) error {
	seen := make(map[Tag]bool, len(dst))
	return d.walk(rec.payload, rec.end, func(c record) error {
		slot, ok := dst[c.tag]
		if !ok || seen[c.tag] {
			return nil
		}
		s, _, err := d.readString(c.payload, c.end)
		if err != nil {
			return tagged(err, c.tag)
		}
		*slot = s
		seen[c.tag] = true
		return nil
	})
}

func decodeFiles(d decoder, rec record, m *model) error {
	return d.walk(rec.payload, rec.end, func(c record) error {
		if c.tag != TagFileEntry {
			return nil
		}
		var f ProjectFile
		err := d.stringFields(c, map[Tag]*string{
			TagFilePath:     &f.Path,
			TagFileMimeType: &f.MimeType,
			TagFileGroup:    &f.Group,
		})
		if err != nil {
			return err
		}
		m.files = append(m.files, f)
		return nil
	})
}

func decodeRules(d decoder, rec record, m *model) error {
	d.onSkip = nil
	return d.walk(rec.payload, rec.end, func(c record) error {
		if c.tag != TagRule {
			return nil
		}
		var r FileTypeRule
		err := d.stringFields(c, map[Tag]*string{
			TagRuleMimeType:  &r.MimeType,
			TagRuleExtension: &r.Extension,
			TagRuleTool:      &r.ToolName,
		})
		if err != nil {
			return err
		}
		res, found, err := d.findTag(TagRuleResources, c.payload, c.end)
		if err != nil {
			return err
		}
		if found {
			v, _, err := d.readInt32(res.payload, res.end)
			if err != nil {
				return tagged(err, TagRuleResources)
			}
			r.HasResources = v != 0
		}
		m.rules = append(m.rules, r)
		return nil
	})
}
