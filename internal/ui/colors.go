package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorBrand = lipgloss.Color("#FF0033")
	colorOK    = lipgloss.Color("#04B575")
	colorError = lipgloss.Color("#FF0000")
	colorWarn  = lipgloss.Color("#FFA500")
	colorMuted = lipgloss.Color("#626262")
)

var styles = newPalette()

// palette holds the styles every view renders with.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func newPalette() palette {
	return palette{
		title: fg(colorBrand).Bold(true).MarginBottom(1),
		ok:    fg(colorOK).Bold(true),
		err:   fg(colorError).Bold(true),
		warn:  fg(colorWarn),
		help:  fg(colorMuted).Italic(true),
	}
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// newDelegate is the default list delegate with the selection drawn in brand red.
func newDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorBrand).BorderLeftForeground(colorBrand)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorMuted).BorderLeftForeground(colorBrand)
	return d
}
