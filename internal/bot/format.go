package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homekeep/internal/model"
	"homekeep/internal/service"
)

const (
	btnSkip          = "⏭️ Skip"
	btnConfirm       = "✅ Confirm"
	btnCancel        = "↩️ Cancel"
	btnCancelDialog  = "⏪ Stop input"
	iconGood         = "🟢"
	iconDue          = "⏳"
	iconOverdue      = "⚠️"
	menuLabelNewTask = "➕ New task"
	menuLabelTasks   = "📋 Tasks"
	menuLabelLibrary = "📚 Library"
	menuLabelHelp    = "ℹ️ Help"
)

const commandList = "• /tasks — tasks grouped by status\n" +
	"• /library [search] — add or remove common maintenance tasks\n" +
	"• /newtask — add a custom task step by step\n" +
	"• /complete &lt;id&gt; — mark a task done\n" +
	"• /delete &lt;id&gt; — delete a task\n" +
	"• /frequency &lt;id&gt; &lt;n&gt; &lt;unit&gt; — change how often a task repeats\n" +
	"• /notes &lt;id&gt; &lt;text&gt; — set a task's notes\n" +
	"• /settings — reminder time and lead time\n" +
	"• /report — today's digest\n" +
	"• /stop — stop receiving reminders\n" +
	"• /cancel — cancel the current input"

// symbolEmoji maps template icon names to what chat clients can render.
var symbolEmoji = map[string]string{
	"air.conditioner.horizontal": "❄️",
	"ant":                        "🐜",
	"arrow.3.trianglepath":       "♻️",
	"arrow.down.to.line":         "⬇️",
	"dishwasher":                 "🍽",
	"door.garage.closed":         "🚗",
	"drop":                       "💧",
	"drop.triangle":              "🌧",
	"flame":                      "🔥",
	"flame.circle":               "🪵",
	"house":                      "🏠",
	"house.lodge":                "🏡",
	"oven":                       "🍳",
	"rectangle.split.3x3":        "🪟",
	"refrigerator":               "🧊",
	"sensor":                     "🚨",
	"snowflake":                  "⛄️",
	"washer":                     "🧺",
	"wind":                       "🌬",
	"wrench":                     "🔧",
}

func escape(s string) string {
	return html.EscapeString(s)
}

func taskEmoji(icon string) string {
	if e, ok := symbolEmoji[icon]; ok {
		return e
	}
	return symbolEmoji[model.DefaultIcon]
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusOverdue:
		return iconOverdue
	case model.StatusDueSoon:
		return iconDue
	default:
		return iconGood
	}
}

func leadTimeLabel(days int) string {
	switch days {
	case 0:
		return "on the due date"
	case 1:
		return "1 day before"
	default:
		return fmt.Sprintf("%d days before", days)
	}
}

func completedText(task model.Task, loc *time.Location) string {
	return fmt.Sprintf("✅ \"%s\" done. Next due %s.",
		escape(task.Name), task.NextDueDate.In(loc).Format(model.MediumDateLayout))
}

func reminderText(r model.Reminder) string {
	return fmt.Sprintf("🔔 <b>%s</b>\n%s", escape(r.Title), escape(r.Body))
}

func resolveErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrAmbiguousTask):
		return "That ID matches more than one task. Use more characters."
	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found."
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

// renderTaskList lays tasks out in Overdue, Due soon, Good sections with one
// row of buttons per task.
func renderTaskList(tasks []model.Task, now time.Time) (string, [][]tgbotapi.InlineKeyboardButton) {
	d := service.Classify(tasks, now)

	var builder strings.Builder
	builder.WriteString("📋 <b>Maintenance tasks</b>\n")
	if d.Attention > 0 {
		fmt.Fprintf(&builder, "%d of %d need attention.\n", d.Attention, d.Total())
	}
	builder.WriteByte('\n')

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, section := range []struct {
		title string
		tasks []model.Task
	}{
		{"Overdue", d.Overdue},
		{"Due soon", d.DueSoon},
		{"Good", d.Good},
	} {
		if len(section.tasks) == 0 {
			continue
		}
		fmt.Fprintf(&builder, "<b>%s</b>\n", section.title)
		for _, task := range section.tasks {
			builder.WriteString(formatTask(task, now))
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(task.Name, 24), cbCompletePrefix+task.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+task.ID),
			))
		}
		builder.WriteByte('\n')
	}
	return strings.TrimSpace(builder.String()), buttons
}

func formatTask(task model.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s <b>%s</b> <code>%s</code>\n",
		statusIcon(model.StatusAt(task, now)), taskEmoji(task.Icon), escape(task.Name), service.ShortID(task.ID))
	fmt.Fprintf(&b, "   🗓 %s · %s\n", model.DueDescription(task, now), task.Frequency.Description())
	if task.LastCompletedDate != nil {
		fmt.Fprintf(&b, "   ✅ Last done %s\n", task.LastCompletedDate.In(now.Location()).Format(model.MediumDateLayout))
	}
	if notes := task.NotesText(); notes != "" {
		fmt.Fprintf(&b, "   📝 %s\n", escape(notes))
	}
	return b.String()
}

// addedTemplates returns the names of templates already added as tasks.
func addedTemplates(tasks []model.Task) map[string]bool {
	added := make(map[string]bool)
	for _, t := range tasks {
		if t.IsPreloaded {
			added[t.Name] = true
		}
	}
	return added
}

func renderLibrary(templates []model.Template, added map[string]bool) (string, [][]tgbotapi.InlineKeyboardButton) {
	var builder strings.Builder
	builder.WriteString("📚 <b>Task library</b>\nTap a template to add it, tap again to remove it.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, tpl := range templates {
		mark := "➕"
		if added[tpl.Name] {
			mark = "✔️"
		}
		fmt.Fprintf(&builder, "%s %s <b>%s</b> · %s\n", mark, taskEmoji(tpl.Icon), escape(tpl.Name), tpl.Frequency.Description())
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+shortTitle(tpl.Name, 28), cbTemplatePrefix+strconv.Itoa(templateIndex(tpl.Name))),
		))
	}
	return strings.TrimSpace(builder.String()), buttons
}

// templateIndex is the template's position in the full library, stable across
// searches so callback data stays short.
func templateIndex(name string) int {
	for i, tpl := range model.Templates() {
		if tpl.Name == name {
			return i
		}
	}
	return -1
}

func templateByIndex(raw string) (model.Template, error) {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return model.Template{}, err
	}
	all := model.Templates()
	if i < 0 || i >= len(all) {
		return model.Template{}, fmt.Errorf("template index %d out of range", i)
	}
	return all[i], nil
}

// parseFrequencyArgs reads "6 months", "2 weeks" or "seasonal".
func parseFrequencyArgs(args []string) (model.Frequency, error) {
	if len(args) == 1 {
		kind, err := model.ParseFrequencyKind(args[0])
		if err != nil {
			return model.Frequency{}, err
		}
		return model.Every(1, kind), nil
	}
	if len(args) != 2 {
		return model.Frequency{}, fmt.Errorf("expected a number and a unit")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return model.Frequency{}, fmt.Errorf("interval must be a whole number of 1 or more")
	}
	kind, err := model.ParseFrequencyKind(args[1])
	if err != nil {
		return model.Frequency{}, err
	}
	f := model.Every(n, kind)
	return f, f.Validate()
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelLibrary),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func frequencyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, kind := range model.FrequencyKinds {
		row = append(row, tgbotapi.NewKeyboardButton(kind.DisplayName()))
	}
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(row...),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop input"
}
