package tui

import (
	"strings"
	"sync"
)

// Fonts differ in what they render cleanly, so every drawn affordance has a
// unicode and an ascii variant.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference takes the [view] glyphs setting (already merged with
// TIMELINE_TUI_GLYPHS). Unknown values are ignored.
func applyGlyphPreference(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii rune) rune {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphHandle() rune     { return pick('▐', '|') }
func glyphDisabled() rune   { return pick('░', '.') }
func glyphBandH() rune      { return pick('┄', '-') }
func glyphBandV() rune      { return pick('┆', ':') }
func glyphBandCorner() rune { return pick('┼', '+') }
func glyphTick() rune       { return pick('╵', '|') }
func glyphStripe() rune     { return pick('╱', '/') }

func glyphRowDisabled() string {
	if glyphs() == glyphSetASCII {
		return "x "
	}
	return "⊘ "
}

func glyphEllipsis() string {
	if glyphs() == glyphSetASCII {
		return "~"
	}
	return "…"
}
