// Package templates embeds the transactional email layouts.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// BookingEmail is the HTML layout for booking status emails.
var BookingEmail = template.Must(template.ParseFS(files, "booking_email.html"))
