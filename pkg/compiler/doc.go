// Package compiler turns a directory of SVG sources into an icon registry.
//
// The flow is split in two steps:
//
//	sources, err := compiler.Discover(ctx, "icons")
//	result, err := compiler.NewAssembler(opts).Assemble(ctx, sources)
//
// [Discover] lists and reads the files, [Assembler.Assemble] normalizes each
// source, derives its id and tags and inserts the records in input order.
// Assembly is all-or-nothing: any malformed source or duplicate id aborts
// the run and no registry is returned.
//
// After a successful assembly, sources that use the tagged naming
// convention are copied through an [Archiver] under their canonical
// {id}_s24.{ext} name. Archive failures are logged and counted but never
// fail the run.
package compiler
