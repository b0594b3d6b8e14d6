// Package web embeds the single-page UI: the pad, the sliders, the status
// badges, and the capture glue that talks to the daemon's API.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
