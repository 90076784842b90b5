// Package icon defines the compiled icon registry and its runtime API.
//
// A [Registry] is an ordered, immutable mapping from icon id to [Record].
// It is produced once per compile by a [Builder] and then only read: the
// serializer walks it in insertion order and the runtime operations below
// look icons up in it.
//
// # Rendering
//
// [Render] and [RenderToText] turn a record into an <svg> element. Caller
// attributes are merged over [DefaultAttributes] and a class derived from
// the icon id, with the precedence
//
//	defaults < derived class < caller options
//
// # Searching
//
// [Registry.Search] performs a case-insensitive substring match on tags or
// ids. A search without any mode returns a single diagnostic placeholder
// (see [NoSearchMode]) instead of an empty result; callers should check
// [Record.IsDiagnostic].
//
// # Placeholders
//
// [Registry.Replace] swaps an <i pangolin="id"> placeholder element of an
// HTML document for the rendered icon, forwarding all placeholder
// attributes as render options. [Registry.ReplaceAll] does so for a whole
// document.
package icon
