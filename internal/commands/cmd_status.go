package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

type StatusCmd struct {
	flags *Flags
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show tasks grouped by status",
		UsageText: "homekeep status",
		Action:    cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	app, closeApp, err := Open(cmd.flags)
	if err != nil {
		return err
	}
	defer closeApp()

	now := app.Now()
	dash, err := app.Tasks.Dashboard(ctx, now)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	renderDashboard(c.Root().Writer, dash, now)
	return nil
}

func renderDashboard(w io.Writer, dash service.Dashboard, now time.Time) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("HomeKeep")+" "+mutedStyle.Render(now.Format(model.MediumDateLayout)))

	if dash.Total() == 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("No tasks yet. Add some with 'homekeep library --toggle <name>'."))
		return
	}

	for _, section := range []struct {
		status model.Status
		tasks  []model.Task
	}{
		{model.StatusOverdue, dash.Overdue},
		{model.StatusDueSoon, dash.DueSoon},
		{model.StatusGood, dash.Good},
	} {
		if len(section.tasks) == 0 {
			continue
		}
		title := fmt.Sprintf("%s (%d)", strings.ToUpper(section.status.String()), len(section.tasks))
		_, _ = fmt.Fprintln(w, headerStyle.Foreground(statusColor(section.status)).Render(title))
		for _, task := range section.tasks {
			_, _ = fmt.Fprintln(w, formatTaskLine(task, now))
		}
	}

	_, _ = fmt.Fprintln(w)
	summary := fmt.Sprintf("%d of %d tasks need attention", dash.Attention, dash.Total())
	if dash.Attention == 0 {
		summary = "Everything is on track"
	}
	_, _ = fmt.Fprintln(w, mutedStyle.Render(summary))
}

func formatTaskLine(task model.Task, now time.Time) string {
	status := model.StatusAt(task, now)
	parts := []string{
		statusBadge(status),
		idStyle.Render(service.ShortID(task.ID)),
		task.Name,
		mutedStyle.Render("· " + model.DueDescription(task, now) + " · " + task.Frequency.Description()),
	}
	return "  " + strings.Join(parts, " ")
}
