// Package watch implements live reload for a site: it watches the site
// configuration and the on-disk module manifests, and reruns the load
// pipeline when they change. An optional scheduler refreshes the docs
// metadata periodically so last update data follows new commits.
package watch
