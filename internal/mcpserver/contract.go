package mcpserver

// FormatNotes describes the BeIDE project file layout as far as beidekit
// understands it, for LLM consumers reading project dumps.
const FormatNotes = `# BeIDE Project File Notes

BeIDE stored build settings in a binary project file (usually ` + "`*.proj`" + `).
The layout is only partially known; beidekit reads the parts below and skips
everything else.

## Records

Every record is:

` + "```" + `
[tag: 4-byte code][length: signed 32-bit][payload: length bytes]
` + "```" + `

- Tags are four-character codes such as ` + "`TNam`" + ` (target name).
- A payload is a 32-bit integer, a NUL-terminated string, or a nested list
  of records.
- An optional leading ` + "`MIDE`" + ` record holds the format version and marks the
  byte order. Files without it are read big-endian.
- Unknown records are skipped by their length. A length running past the end
  of the file makes the whole file invalid.

## Fields

| tag | meaning | kind |
|---|---|---|
| TNam | target name (required) | string |
| TTyp | target type: application, shared-library, static-library, kernel-driver | int |
| SIaL | treat system includes as local | int (bool) |
| FDet | file type detection: autodetect, c, c++ | int |
| LOpt | language option flags | int (flags) |
| WMod | warning mode: enabled, disabled, as-errors | int |
| Warn | warning flags | int (flags) |
| CGen | code generation flags | int (flags) |
| OMod | optimization: none, some, more, full | int |
| Strp | strip flags | int (flags) |
| CmpO | extra compiler options | string |
| LnkO | extra linker options | string |
| SInc / LInc | system / local include paths, one ` + "`IPth`" + ` child each | list |
| Fils | project files, one ` + "`FEnt`" + ` child with ` + "`FPth`" + `, ` + "`FMim`" + `, ` + "`FGrp`" + ` | list |
| FRul | file type rules, one ` + "`Rule`" + ` child with ` + "`RMim`" + `, ` + "`RExt`" + `, ` + "`RRes`" + `, ` + "`RTol`" + ` | list |

## Using the tools

- ` + "`list_projects`" + ` shows every catalogued project. Entries with ` + "`ready: false`" + `
  failed to load; ` + "`error`" + ` says why.
- ` + "`read_project`" + ` parses one file and returns it as json, yaml, table or markdown.
- ` + "`list_project_files`" + ` lists a project's files from the catalog without re-reading it.
- ` + "`find_usages`" + ` answers "which projects build this source file?".
- File paths inside a project are relative to the project folder and use
  forward slashes.
`
