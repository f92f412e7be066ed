package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const maxRecipeLines = 14

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("fridgechef")
	if m.online != nil {
		if *m.online {
			header += " " + successStyle.Render("connected")
		} else {
			header += " " + errorStyle.Render("offline")
		}
	}
	if m.loading {
		header += " " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")
	b.WriteString(m.search.View() + "\n\n")

	fridge := paneStyle.Render(infoStyle.Render(fmt.Sprintf("Fridge (%d)", len(m.fridge))) + "\n\n" + m.table.View())
	recipes := paneStyle.Width(44).Render(infoStyle.Render("Recipes") + "\n\n" + m.recipesView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, fridge, " ", recipes) + "\n")

	if m.receipt != "" {
		b.WriteString("\n" + paneStyle.Render(infoStyle.Render("Receipt")+"\n\n"+clip(m.receipt)) + "\n")
	}

	if m.focus == focusReceipt {
		b.WriteString("\n" + m.receiptPath.View() + "\n")
	}

	if m.focus == focusAdd {
		b.WriteString("\n" + titleStyle.Render("Add ingredient") + "\n")
		for _, f := range m.addFields {
			b.WriteString(f.View() + "\n")
		}
	}

	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render(m.error) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + successStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(m.help()))
	return docStyle.Render(b.String())
}

func (m Model) help() string {
	switch m.focus {
	case focusSearch:
		return "type to filter • enter/esc: back to list"
	case focusAdd:
		return "tab: next field • enter: next/submit • esc: cancel"
	case focusReceipt:
		return "enter: upload • esc: cancel"
	default:
		return "/: search • a: add • d: remove selected • u: upload receipt • r: refresh • q: quit"
	}
}

func (m Model) recipesView() string {
	if m.recipes.Text != "" {
		return clip(m.recipes.Text)
	}
	if len(m.recipes.Meals) == 0 {
		return helpStyle.Render("Add ingredients to get suggestions")
	}

	var b strings.Builder
	for i, meal := range m.recipes.Meals {
		if i == maxRecipeLines/2 {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(m.recipes.Meals)-i))
			break
		}
		b.WriteString(fmt.Sprintf("• %s\n  %s\n", meal.Title, helpStyle.Render(meal.SourceLink)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// clip cuts text to maxRecipeLines lines
func clip(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxRecipeLines {
		lines = append(lines[:maxRecipeLines], "…")
	}
	return strings.Join(lines, "\n")
}
