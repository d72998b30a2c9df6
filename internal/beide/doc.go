// Package beide reads BeIDE project files into an in-memory Project model.
//
// # File Layout
//
// The format is only partially reverse-engineered. A project file is a flat
// sequence of tagged records:
//
//	[tag u32][length i32][payload: length bytes]
//
// Tags are four-character codes such as 'TNam'. A payload is a 32-bit
// integer, a NUL-terminated string, or a nested sequence of records (include
// lists, file entries, file-type rules). A leading 'MIDE' record carries the
// format version and doubles as the byte-order marker; files without it are
// read big-endian unless WithByteOrder says otherwise.
//
// The reader extracts the records it understands in a fixed order and skips
// everything else by its declared length, so undocumented records never
// desynchronize the scan. A declared length running past the end of the
// buffer fails the whole load.
//
// # Usage
//
//	p, err := beide.Open("MyApp.proj")
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < p.CountFiles(); i++ {
//	    f, _ := p.FileAt(i)
//	    fmt.Println(f.Path, f.Group)
//	}
//
// # Thread Safety
//
// A Project is not safe for concurrent use. Load and Reset must not run
// concurrently with reads of the same instance.
package beide
