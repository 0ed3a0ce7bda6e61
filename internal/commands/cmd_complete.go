package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

type CompleteCmd struct {
	flags *Flags
}

// NewCompleteCmd creates a new complete command
func NewCompleteCmd(flags *Flags) *CompleteCmd {
	return &CompleteCmd{flags: flags}
}

// Register adds the complete command to the application
func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "complete",
		Usage:     "Mark a task done",
		UsageText: "homekeep complete <id>",
		Description: `Records a completion now and advances the task's due date.

The id may be shortened to any unique prefix, as shown by 'homekeep status'.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *CompleteCmd) run(ctx context.Context, c *cli.Command) error {
	ref := c.Args().First()
	if ref == "" {
		return fmt.Errorf("task id is required")
	}

	app, closeApp, err := Open(cmd.flags)
	if err != nil {
		return err
	}
	defer closeApp()

	task, err := app.Tasks.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	task, err = app.Tasks.Complete(ctx, task.ID, app.Now())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s done, next due %s\n",
		idStyle.Render(service.ShortID(task.ID)), task.Name, task.NextDueDate.In(app.Loc).Format(model.MediumDateLayout))
	return nil
}
