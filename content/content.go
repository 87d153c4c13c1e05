// Package content carries the embedded world definition. The Lua files are
// compiled once at startup by the loader; shipping them inside the binary
// keeps the game a single file.
package content

import "embed"

//go:embed *.lua
var Files embed.FS
