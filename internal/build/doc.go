// Package build provides the canonical site load pipeline for docsite.
//
// A load reads the site configuration, resolves presets, initializes every
// declared plugin and theme, and runs them. The docs metadata published by
// the content plugins is collected into the result and optionally recorded
// in a metadata store. All execution paths (CLI, watch mode, tests) should
// route through Service.
package build
