package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"homekeep/internal/service"
)

type RemindersCmd struct {
	flags *Flags
}

// NewRemindersCmd creates a new reminders command
func NewRemindersCmd(flags *Flags) *RemindersCmd {
	return &RemindersCmd{flags: flags}
}

// Register adds the reminders command to the application
func (cmd *RemindersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "reminders",
		Usage:     "List pending reminders",
		UsageText: "homekeep reminders",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RemindersCmd) run(ctx context.Context, c *cli.Command) error {
	app, closeApp, err := Open(cmd.flags)
	if err != nil {
		return err
	}
	defer closeApp()

	pending, err := app.Reminders.Pending(ctx)
	if err != nil {
		return err
	}
	out := c.Root().Writer
	if len(pending) == 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render("No pending reminders."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TASK\tFIRES\tMESSAGE")
	for _, r := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			service.ShortID(r.TaskID), r.FireAt.In(app.Loc).Format("Jan 2, 2006 15:04"), r.Body)
	}
	return w.Flush()
}
