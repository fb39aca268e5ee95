// Package ui holds the color themes shared by the frontends: ANSI escape
// codes for the line-oriented displays and lipgloss colors for the
// dashboard. The active theme is process-wide and chosen once by InitTheme.
package ui
