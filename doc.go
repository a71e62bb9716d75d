// Package upk reads, edits and writes Unreal Engine 3 package files.
//
// A package starts with a summary (section.Summary) followed by three
// tables: names, imports and exports. Imports and exports refer to each other
// through signed indices (object.Index): 0 is no object, N > 0 is
// export N-1 and N < 0 is import ^N. Load reads the tables and links them so
// every resource knows its outer, and every export its class, super and
// archetype.
//
// # Basic Usage
//
//	pkg, err := upk.LoadFile("Startup.upk", upk.WithAutoDecompress(true))
//	if err != nil {
//	    return err
//	}
//	mesh, err := pkg.FindObject("Startup.Meshes.Rock")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(mesh.Class(), mesh.FullName())
//
// Replacing an export's data appends the new bytes at the end of the file:
//
//	exp := mesh.(*object.Export)
//	if err := pkg.ReplaceExportData(exp, newData); err != nil {
//	    return err
//	}
//	err = pkg.SaveFile("Startup_patched.upk")
//
// # Compression
//
// Compressed packages store everything after the summary as zlib chunks (see
// the chunk package). Load stops after the summary of such a package; call
// Decompress, or load with WithAutoDecompress, before touching the tables.
// Package.Compress produces the compressed form of a loaded package.
//
// # Errors
//
// Errors wrap the sentinels of the errs package. An operation that leaves a
// package half-modified marks it failed; later calls return
// errs.ErrPackageFailed wrapping the original cause.
package upk
