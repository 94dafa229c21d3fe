// Package module resolves and loads presets, plugins and themes.
//
// Resolution behaves like a require() rooted at the site configuration file:
// the project, not docsite itself, decides which modules are installed.
// Requests are resolved in this order:
//
//   - Relative or absolute paths name a manifest file or a directory
//     containing module.yaml.
//   - Bare names look for <siteDir>/modules/<name>/module.yaml.
//   - Bare names registered as built-ins resolve to "builtin:<name>".
//
// Loaded modules are cached by resolved ID. LoadFresh drops the cached entry
// first so edited manifests are picked up by live reload.
package module
