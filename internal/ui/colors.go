package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tvtrack/internal/models"
)

var (
	darkPalette  = NewPalette("#CBA6F7", "#A6E3A1", "#F38BA8", "#FAB387", "#6C7086", "#313244", "#CDD6F4")
	lightPalette = NewPalette("#8839EF", "#40A02B", "#D20F39", "#FE640B", "#8C8FA1", "#DCE0E8", "#4C4F69")
)

// paletteFor returns the stylesheet of theme, defaulting to dark.
func paletteFor(theme models.Theme) *Palette {
	if theme == models.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	accent lipgloss.Color
	muted  lipgloss.Color

	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	banner lipgloss.Style
	card   lipgloss.Style
	text   lipgloss.Style
}

// NewPalette builds a stylesheet from accent (title), success, error, warning, help, surface and text colors.
func NewPalette(t, s, e, w, h, surface, text string) *Palette {
	return &Palette{
		accent: lipgloss.Color(t),
		muted:  lipgloss.Color(h),
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		banner: NewBold(text).Background(lipgloss.Color(surface)).Padding(0, 1),
		card: NewStyle(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t)).
			Padding(0, 1),
		text: NewStyle(text),
	}
}

// Delegate returns a list delegate colored with the palette.
func (p *Palette) Delegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(p.accent).BorderLeftForeground(p.accent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(p.accent).BorderLeftForeground(p.accent)
	d.Styles.NormalDesc = d.Styles.NormalDesc.Foreground(p.muted)
	return d
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
