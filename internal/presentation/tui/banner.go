package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Boardwalk ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Alternating square colours, echoing the board itself
	lines := []string{
		" _                         _               _ _",
		"| |__   ___   __ _ _ __ __| |_      ____ _| | | __",
		"| '_ \\ / _ \\ / _` | '__/ _` \\ \\ /\\ / / _` | | |/ /",
		"| |_) | (_) | (_| | | | (_| |\\ V  V / (_| | |   <",
		"|_.__/ \\___/ \\__,_|_|  \\__,_| \\_/\\_/ \\__,_|_|_|\\_\\",
	}
	colors := []string{"#f0d9b5", "#b58863"}

	fmt.Fprintln(w)
	for i, l := range lines {
		fmt.Fprintln(w, p.String(l).Foreground(p.Color(colors[i%2])))
	}
	fmt.Fprintln(w)
}
