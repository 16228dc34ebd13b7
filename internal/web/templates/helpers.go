// Package templates holds the templ components for the server-rendered
// pages. Edit the .templ files and run `templ generate`; the *_templ.go
// files are generated.
package templates

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schedulizer/internal/facultyload"
)

func summary(faculty, imports int) string {
	return fmt.Sprintf("%d faculty from %d import(s).", faculty, imports)
}

// cellLookupURL points at the API that resolves a report cell back to its
// section.
func cellLookupURL(column facultyload.Column, name string) templ.SafeURL {
	q := url.Values{"column": {string(column)}, "value": {name}}
	return templ.URL("/api/faculty-loads/cell?" + q.Encode())
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
