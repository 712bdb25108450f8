// Package templates embeds the built-in Quarkus blueprint family.
package templates

import "embed"

// Root is the directory inside FS that holds the family manifest.
const Root = "quarkus"

//go:embed quarkus
var FS embed.FS
