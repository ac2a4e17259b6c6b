package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Empty    rune // · empty canvas cell
	Shape    rune // ░ idle shape
	Playing  rune // █ shape under a playhead
	Playhead rune // │ global playhead column
	SoloLine rune // ┃ solo playhead inside a shape
	Cursor   rune // + cursor on empty canvas
	Selected rune // ▓ selected idle shape
}

// New builds a theme. A nil palette uses Default.
func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Empty:    '·',
			Shape:    '░',
			Playing:  '█',
			Playhead: '│',
			SoloLine: '┃',
			Cursor:   '+',
			Selected: '▓',
		},
	}
}

// Load returns the theme for a GPL path, or the built-in palette when path is empty
func Load(path string) (*Theme, error) {
	if path == "" {
		return New(nil), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0
	RoleMuted    = 0.2
	RoleShape    = 0.3
	RoleFG       = 0.4
	RolePlayhead = 0.5
	RoleCursor   = 0.6
	RolePlaying  = 0.7
	RoleWarning  = 0.8
	RoleAccent   = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Shape() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleShape))
}

func (t *Theme) Playhead() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RolePlayhead))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

// Playing is the accent used for shapes that are sounding
func (t *Theme) Playing() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RolePlaying))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

// Instrument gives each instrument its own idle colour
func (t *Theme) Instrument(instrument int) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Index(instrument + 2))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
