// Package ui embeds the single-page query form served at "/".
package ui

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// Index returns the query form page
func Index() []byte {
	return indexHTML
}
