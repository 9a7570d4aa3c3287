package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	status lipgloss.Style

	filled lipgloss.Style
	empty  lipgloss.Style
	gap    lipgloss.Style
	cursor lipgloss.Style

	filledGlyph string
	emptyGlyph  string
	gapGlyph    string
	cursorGlyph string
	// cursorEmptyGlyph marks the cursor over an unfilled cell.
	cursorEmptyGlyph string
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:       plain.Bold(true),
			label:       plain,
			status:      plain,
			filled:      plain,
			empty:       plain,
			gap:         plain,
			cursor:      plain,
			filledGlyph: "#",
			emptyGlyph:  ".",
			gapGlyph:    "_",
			cursorGlyph: "@",

			cursorEmptyGlyph: "+",
		}
	}
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		label:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		filled:      lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		empty:       lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		gap:         lipgloss.NewStyle().Foreground(lipgloss.Color("95")),
		cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		filledGlyph: "■",
		emptyGlyph:  "■",
		gapGlyph:    "■",
		cursorGlyph: "▣",

		cursorEmptyGlyph: "□",
	}
}
