package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"homekeep/internal/model"
)

type LibraryCmd struct {
	flags *Flags

	// flags
	toggle string
}

// NewLibraryCmd creates a new library command
func NewLibraryCmd(flags *Flags) *LibraryCmd {
	return &LibraryCmd{flags: flags}
}

// Register adds the library command to the application
func (cmd *LibraryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "library",
		Usage:     "Browse preloaded maintenance tasks",
		UsageText: "homekeep library [query] [--toggle NAME]",
		Description: `Lists the built-in task templates, optionally filtered by a case-insensitive
search on the name. Templates already added are marked with a check.

Use --toggle with an exact template name to add it, or remove it if added.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "toggle",
				Usage:       "add or remove the template with this name",
				Destination: &cmd.toggle,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LibraryCmd) run(ctx context.Context, c *cli.Command) error {
	app, closeApp, err := Open(cmd.flags)
	if err != nil {
		return err
	}
	defer closeApp()

	out := c.Root().Writer

	if cmd.toggle != "" {
		tpl, ok := model.FindTemplate(cmd.toggle)
		if !ok {
			return fmt.Errorf("no template named %q", cmd.toggle)
		}
		task, err := app.Tasks.ToggleTemplate(ctx, tpl, app.Now())
		if err != nil {
			return err
		}
		if task == nil {
			_, _ = fmt.Fprintf(out, "Removed %s\n", tpl.Name)
		} else {
			_, _ = fmt.Fprintf(out, "Added %s (%s), due %s\n",
				task.Name, task.Frequency.Description(), task.NextDueDate.In(app.Loc).Format(model.MediumDateLayout))
		}
		return nil
	}

	templates := model.SearchTemplates(strings.Join(c.Args().Slice(), " "))
	if len(templates) == 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render("No templates match."))
		return nil
	}

	tasks, err := app.Tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	added := make(map[string]bool)
	for _, t := range tasks {
		if t.IsPreloaded {
			added[t.Name] = true
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tNAME\tEVERY\tNOTES")
	for _, tpl := range templates {
		mark := " "
		if added[tpl.Name] {
			mark = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, tpl.Name, tpl.Frequency.Description(), tpl.Notes)
	}
	return w.Flush()
}
