// Package fs abstracts the file operations [blobstore.LocalStore] performs
// so that state persistence can be tested against injected I/O failures.
//
// [LocalFS] forwards to package os. [FaultyFS] wraps another [FileSystem]
// and fails writes, syncs, closes, renames or removes for file names that
// contain a configured pattern:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("STATE-000002", fs.Fault{FailAfterBytes: 10})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Blob writes go through [WriteFileAtomic]: a crash or injected failure
// leaves either the previous blob or the new one, never a torn file.
//
// Operations take no context.Context; local file I/O is not interruptible.
package fs
