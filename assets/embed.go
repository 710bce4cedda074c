package assets

import (
	_ "embed"
	"strings"
)

//go:embed extra_lines.txt
var extraLines string

//go:embed images.txt
var images string

// ExtraLines returns the rotating flavour lines shown under the countdown.
func ExtraLines() []string { return lines(extraLines) }

// ImageURLs returns the pictures a countdown may be sent with.
func ImageURLs() []string { return lines(images) }

func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
