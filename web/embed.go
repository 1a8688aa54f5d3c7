package web

import "embed"

// Templates embeds the layouts, partials and pages parsed by the view engine.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds stylesheets served under /static.
//
//go:embed static/**/*
var Static embed.FS
