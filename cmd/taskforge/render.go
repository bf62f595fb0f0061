package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/basket/taskforge/internal/service"
	"github.com/basket/taskforge/internal/task"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		task.StatusCancelled:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// wantJSON is true when -json was passed or stdout is not a terminal, so
// pipes and the automation wrapper always get machine-readable output.
func wantJSON(jsonFlag bool) bool {
	return jsonFlag || !isatty.IsTerminal(os.Stdout.Fd())
}

func emitJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail(err)
	}
	return 0
}

func renderTaskLine(t *task.Task) string {
	status := statusStyles[t.Status].Render(string(t.Status))
	line := fmt.Sprintf("%s  %-12s %s", numberStyle.Render(fmt.Sprintf("%-8s", t.Number)), status, t.Name)
	if len(t.Dependencies) > 0 {
		line += dimStyle.Render(fmt.Sprintf("  (deps: %s)", strings.Join(t.Dependencies, ", ")))
	}
	return line
}

func renderTaskDetail(t *task.Task) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Task %s: %s", t.Number, t.Name)) + "\n")
	b.WriteString(fmt.Sprintf("  status:   %s\n", statusStyles[t.Status].Render(string(t.Status))))
	b.WriteString(fmt.Sprintf("  priority: %d\n", t.Priority))
	if t.Description != "" {
		b.WriteString(fmt.Sprintf("  description: %s\n", t.Description))
	}
	if len(t.Dependencies) > 0 {
		b.WriteString(fmt.Sprintf("  dependencies: %s\n", strings.Join(t.Dependencies, ", ")))
	}
	if t.TestingStrategy != "" {
		b.WriteString(fmt.Sprintf("  testing: %s\n", t.TestingStrategy))
	}
	if t.Notes != "" {
		b.WriteString(fmt.Sprintf("  notes: %s\n", t.Notes))
	}
	if t.CompletionNotes != "" {
		b.WriteString(fmt.Sprintf("  completion notes: %s\n", t.CompletionNotes))
	}
	if t.CompletionPercentage != nil {
		b.WriteString(fmt.Sprintf("  progress: %d%%\n", *t.CompletionPercentage))
	}
	for _, f := range t.Files {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  file: %s", f)) + "\n")
	}
	for _, d := range t.DocsReferences {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  doc: %s", d)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStats(st *service.Stats) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Task statistics") + "\n")
	b.WriteString(fmt.Sprintf("  total:        %d\n", st.Total))
	for _, status := range []task.Status{task.StatusPending, task.StatusInProgress, task.StatusCompleted, task.StatusCancelled} {
		b.WriteString(fmt.Sprintf("  %-13s %d\n", string(status)+":", st.ByStatus[status]))
	}
	b.WriteString(fmt.Sprintf("  completion:   %d%%\n", st.CompletionRate))
	b.WriteString(fmt.Sprintf("  top-level:    %d\n", st.TopLevel))
	b.WriteString(fmt.Sprintf("  leaf:         %d\n", st.Leaf))
	b.WriteString(fmt.Sprintf("  with deps:    %d\n", st.WithDependencies))
	b.WriteString(fmt.Sprintf("  ready:        %d\n", st.Ready))
	b.WriteString(fmt.Sprintf("  blocked:      %d", st.Blocked))
	return b.String()
}
