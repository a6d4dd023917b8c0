package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB74D"))
)

// printError writes a styled error to stderr
func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
}

// renderTable lays out rows under headers with a rounded border
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// changeStyle colors a line diff by its change type
func changeStyle(changeType string) lipgloss.Style {
	switch changeType {
	case "added":
		return addedStyle
	case "removed":
		return removedStyle
	default:
		return changedStyle
	}
}
