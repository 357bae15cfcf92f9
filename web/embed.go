// Package web embeds the console's templates and static assets so the
// binaries ship self-contained.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html templates/pages/*/*.html
var Templates embed.FS

// Static holds the stylesheet and other assets served under /static/.
//
//go:embed static/**/*
var Static embed.FS
