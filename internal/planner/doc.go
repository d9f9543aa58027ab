// Package planner decides which CDN cache entries a content change invalidates.
//
// The planner is a pure function of a ChangeEvent and a read-only site tree
// snapshot. It performs no I/O and returns either a PurgePlan or nil, the
// explicit "nothing to purge" outcome. Submitting the plan is the caller's job.
//
// Key responsibilities:
//   - Skip pages that had no prior published state
//   - Escalate to a full purge when a critical field (slug, navigation label,
//     title) changed, or when a page was unpublished
//   - Otherwise collect the page URL plus its descendants' URLs depth-first
//   - Fail the whole plan on tree cycles or missing nodes, never emit a subset
package planner
