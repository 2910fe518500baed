// Package cli has shared utilities and application logic for the pac CLI
package cli

import (
	"fmt"
	"io"
	"strings"
)

const (
	indentation = "  "
	bullet      = "- "
)

// Indented

func IndentedFprintf(indent int, w io.Writer, format string, a ...any) {
	fmt.Fprint(w, strings.Repeat(indentation, indent))
	fmt.Fprintf(w, format, a...)
}

func IndentedFprintln(indent int, w io.Writer, a ...any) {
	fmt.Fprint(w, strings.Repeat(indentation, indent))
	fmt.Fprintln(w, a...)
}

// Bulleted

func BulletedFprintln(indent int, w io.Writer, a ...any) {
	fmt.Fprint(w, strings.Repeat(indentation, indent))
	fmt.Fprint(w, bullet)
	fmt.Fprintln(w, a...)
}
