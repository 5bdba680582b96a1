// Package colorize highlights nasm-syntax 8086 listings for the terminal.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether highlighting is on. It is off when noColor is
// set or SIM86_NO_COLOR is present in the environment.
func Enabled(noColor bool) bool {
	return !noColor && os.Getenv("SIM86_NO_COLOR") == ""
}

// getAssemblyLexer returns the nasm lexer, falling back to gas
func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"nasm", "gas"} {
		if lexer := lexers.Get(name); lexer != nil {
			return chroma.Coalesce(lexer)
		}
	}
	return nil
}

// getListingStyle returns the listing style with fallbacks
func getListingStyle() *chroma.Style {
	for _, name := range []string{ListingDark.Name, "dracula", "monokai"} {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Listing highlights a whole listing. On failure the input is returned
// unchanged together with the error.
func Listing(code string, noColor bool) (string, error) {
	if !Enabled(noColor) {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getListingStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// Line highlights a single listing line, keeping it on one line.
func Line(line string, noColor bool) string {
	out, err := Listing(line, noColor)
	if err != nil {
		return line
	}
	// the lexer terminates its input with a newline
	return strings.ReplaceAll(out, "\n", "")
}
