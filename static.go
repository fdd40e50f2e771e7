package main

import (
	"embed"
	"io/fs"
)

// webFiles contains the page template, fragments and static assets.
//
//go:embed web/*
var webFiles embed.FS

// webRoot returns the embedded web directory as the root of a file system.
func webRoot() fs.FS {
	sub, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}
