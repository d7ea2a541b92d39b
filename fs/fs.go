// Package appfs embeds the static files shipped with the binaries.
package appfs

import "embed"

// templates/email/* also matches the _base layouts, which a directory pattern would skip.
//go:embed assets migrations/*.sql templates/email/*
var FS embed.FS
