package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/treediff/pkg/diffpreview"
)

// Some predefined colors

var (
	ColorRed         = lipgloss.Color("1")
	ColorGreen       = lipgloss.Color("2")
	ColorBlack       = lipgloss.Color("0")
	ColorWhite       = lipgloss.Color("7")
	ColorBrightBlue  = lipgloss.Color("33")
	ColorLightGray   = lipgloss.Color("243")
	ColorGray        = lipgloss.Color("238")
	ColorMutedPurple = lipgloss.Color("92")
	ColorOrange      = lipgloss.Color("214")
)

type Theme struct {
	ListRevisionTextStyle     lipgloss.Style
	ListCurrentArrowTextStyle lipgloss.Style
	ListSourceTextStyle       lipgloss.Style

	AddedTextStyle   lipgloss.Style
	DeletedTextStyle lipgloss.Style
	UpdatedTextStyle lipgloss.Style

	AlertContainerStyle lipgloss.Style

	MutedTextStyle   lipgloss.Style
	ErrorTextStyle   lipgloss.Style
	PrimaryTextStyle lipgloss.Style

	BreadcrumbBarStyle lipgloss.Style
	HelpBarStyle       lipgloss.Style
	CountsBarStyle     lipgloss.Style

	// Preview is used to render trees.
	Preview diffpreview.Theme
}

var DarkTheme = Theme{
	ListRevisionTextStyle: lipgloss.NewStyle().
		Foreground(ColorMutedPurple),
	ListCurrentArrowTextStyle: lipgloss.NewStyle().
		Foreground(ColorBrightBlue),
	ListSourceTextStyle: lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true),

	AddedTextStyle: lipgloss.NewStyle().
		Foreground(ColorGreen),
	DeletedTextStyle: lipgloss.NewStyle().
		Foreground(ColorRed),
	UpdatedTextStyle: lipgloss.NewStyle().
		Foreground(ColorOrange),

	AlertContainerStyle: lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorRed).
		Padding(2, 4),

	MutedTextStyle: lipgloss.NewStyle().
		Foreground(ColorLightGray),
	ErrorTextStyle: lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true),
	PrimaryTextStyle: lipgloss.NewStyle().
		Foreground(ColorBrightBlue),

	BreadcrumbBarStyle: lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorBrightBlue).
		Foreground(ColorWhite),
	HelpBarStyle: lipgloss.NewStyle().
		Padding(0, 1),
	CountsBarStyle: lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorGray).
		Foreground(ColorWhite),

	Preview: diffpreview.DarkTheme,
}
