// Package ui prints the progress lines a backup run shows on stdout.
//
// Messages are fixed strings ("Getting posts 0 to 49.", "Backup
// Complete") so scripts can follow a run. Styling via lipgloss is only
// applied on a terminal.
package ui
