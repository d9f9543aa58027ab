// Package sitetree models the content tree that cache purges are planned against.
//
// A site tree is a read-only snapshot of pages linked by parent identifiers.
// The planner never queries a live content store; it reads through the Tree
// interface, which MemoryTree implements for snapshots loaded from files or
// from a content server.
//
// Key responsibilities:
//   - Node snapshots (identifier, parent, slug, title, navigation label)
//   - Immediate child/parent lookups
//   - URL resolution from the slug chain, guarded against parent cycles
package sitetree
