// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

// FormatTask formats a task as a numbered title line followed by its
// description on an indented line.
// Format: "{N:>4}  {TITLE}\n      {DESCRIPTION}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, normalize(task.Title))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintf(w, "      %s\n", oneLine(desc))
	}
}

// FormatTasks formats tasks numbered from 1.
func FormatTasks(w io.Writer, tasks []service.Task) {
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// normalize normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalize(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
