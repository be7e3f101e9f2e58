package theme

import (
	"os"
	"strconv"
)

// Glyphs drawn by the TUI. InitSymbols fills them from the Unicode or the
// ASCII column of the glyphs table.
var (
	SymbolSuccess  string
	SymbolError    string
	SymbolInfo     string
	SymbolSpinner  string
	SymbolArrowR   string
	SymbolBullet   string
	SymbolEllipsis string
	SymbolCursor   string
)

// Role labels. They are plain words and need no fallback.
var (
	SymbolUser = "You"
	SymbolBot  = "Trigram"
)

type glyph struct {
	dst     *string
	unicode string
	ascii   string
}

var glyphs = []glyph{
	{&SymbolSuccess, "✓", "[OK]"},
	{&SymbolError, "✗", "[ERR]"},
	{&SymbolInfo, "●", "[i]"},
	{&SymbolSpinner, "⏳", "[...]"},
	{&SymbolArrowR, "→", "->"},
	{&SymbolBullet, "•", "*"},
	{&SymbolEllipsis, "…", "..."},
	{&SymbolCursor, "▌", "_"},
}

// ASCIIOnly reports whether glyphs should fall back to ASCII.
// TEXTGEN_ASCII_SYMBOLS decides when it parses as a bool; otherwise the
// Linux virtual console and dumb terminals get ASCII.
func ASCIIOnly() bool {
	if v, err := strconv.ParseBool(os.Getenv("TEXTGEN_ASCII_SYMBOLS")); err == nil {
		return v
	}
	switch os.Getenv("TERM") {
	case "linux", "dumb":
		return true
	}
	return false
}

// InitSymbols sets the Symbol* glyphs for the current environment. It runs
// at init and again from the chat command once flags are applied.
func InitSymbols() {
	ascii := ASCIIOnly()
	for _, g := range glyphs {
		if ascii {
			*g.dst = g.ascii
		} else {
			*g.dst = g.unicode
		}
	}
}

func init() {
	InitSymbols()
}
