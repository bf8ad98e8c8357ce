// Package web embeds the browser UI served at the server root.
package web

import "embed"

// Content is the static lookup, calculator and feed page.
//
//go:embed index.html app.js styles.css
var Content embed.FS
