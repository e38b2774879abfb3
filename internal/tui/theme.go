package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Everything must stay readable on light and dark terminals, so
// colors are adaptive and faint is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     lipgloss.TerminalColor = ac("240", "243")
	colorSurfaceFg lipgloss.TerminalColor = ac("235", "252")
	colorRowAltBg  lipgloss.TerminalColor = ac("254", "234")
	colorAccent    lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg  lipgloss.TerminalColor = ac("255", "255")

	colorItemBg     lipgloss.TerminalColor = ac("110", "24")
	colorItemFg     lipgloss.TerminalColor = ac("235", "255")
	colorSelectedBg lipgloss.TerminalColor = ac("27", "33")
	colorDisabledBg lipgloss.TerminalColor = ac("250", "238")
	colorHandleBg   lipgloss.TerminalColor = ac("24", "75")
	colorFlashBg    lipgloss.TerminalColor = ac("178", "136")
	colorBandFg     lipgloss.TerminalColor = ac("27", "111")
)

type styleKey uint8

const (
	stEmpty styleKey = iota
	stRowAlt
	stRowDisabled
	stItem
	stItemSelected
	stItemDisabled
	stItemLive
	stItemFlash
	stHandle
	stBand
)

// cellStyles maps every canvas style key onto a lip gloss style.
func cellStyles() map[styleKey]lipgloss.Style {
	base := lipgloss.NewStyle()
	return map[styleKey]lipgloss.Style{
		stEmpty:        base,
		stRowAlt:       base.Background(colorRowAltBg),
		stRowDisabled:  faintIfDark(base.Foreground(colorMuted)),
		stItem:         base.Background(colorItemBg).Foreground(colorItemFg),
		stItemSelected: base.Background(colorSelectedBg).Foreground(colorAccentFg).Bold(true),
		stItemDisabled: faintIfDark(base.Background(colorDisabledBg).Foreground(colorMuted)),
		stItemLive:     base.Background(colorSelectedBg).Foreground(colorAccentFg).Italic(true),
		stItemFlash:    base.Background(colorFlashBg).Foreground(colorItemFg),
		stHandle:       base.Background(colorHandleBg).Foreground(colorAccentFg),
		stBand:         base.Foreground(colorBandFg).Bold(true),
	}
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSurfaceFg).Bold(true)
}

func styleRowLabel(disabled bool) lipgloss.Style {
	if disabled {
		return styleMuted().Strikethrough(true)
	}
	return lipgloss.NewStyle().Foreground(colorSurfaceFg)
}

func styleStatus() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

// applyColorProfilePreference honours NO_COLOR and otherwise trusts the
// terminal, upgrading the profile when TERM or COLORTERM promise more than
// the detector reports.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference pins background detection when TIMELINE_TUI_THEME or
// COLORFGBG say which background we are on.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TIMELINE_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	// COLORFGBG is "fg;bg"; xterm palette entries 0-6 are dark.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
