package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"homekeep/internal/model"
	"homekeep/internal/notify"
	"homekeep/internal/repository"
	"homekeep/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageFrequency
	stageInterval
	stageNotes
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbTemplatePrefix = "tpl:"
)

type conversationState struct {
	stage  conversationStage
	params model.TaskParams
}

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	taskID string
	action confirmationAction
}

// Bot is the household's chat front end and the reminder delivery transport.
type Bot struct {
	api           *tgbotapi.BotAPI
	users         *repository.UserRepository
	tasks         *service.TaskService
	loc           *time.Location
	log           zerolog.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

var _ notify.Sender = (*Bot)(nil)

func New(token string, users *repository.UserRepository, tasks *service.TaskService, loc *time.Location, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return &Bot{
		api:           api,
		users:         users,
		tasks:         tasks,
		loc:           loc,
		log:           log,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.loc)
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Debug().Int64("user", msg.From.ID).Str("command", msg.Command()).Msg("command received")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debug().Int64("user", msg.From.ID).Int("stage", int(state.stage)).Msg("conversation step")
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Try /newtask to add a task or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "library":
		return b.handleLibrary(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "frequency":
		return b.handleFrequency(ctx, msg)
	case "notes":
		return b.handleNotes(ctx, msg)
	case "settings":
		return b.handleSettings(msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "stop":
		return b.handleStop(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep track of recurring home maintenance and remind you before things are due.</b>\n\n%s",
		escape(name), commandList,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Commands</b>\n"+commandList)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	tasks, err := b.tasks.List(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, service.DailySummary(tasks, b.now()))
}

func (b *Bot) handleSettings(msg *tgbotapi.Message) error {
	prefs := b.tasks.Preferences()
	text := fmt.Sprintf(
		"⚙️ <b>Reminder settings</b>\n• Time of day: %02d:%02d\n• Lead time: %s\n• Time zone: %s\n\n"+
			"Edit the <code>reminders</code> section of the config file to change them.",
		prefs.ReminderHour, prefs.ReminderMinute, leadTimeLabel(prefs.DaysBeforeDue), escape(b.loc.String()),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.users.Unsubscribe(ctx, msg.From.ID); err != nil {
		return err
	}
	b.clearConversation(msg.From.ID)
	b.clearConfirmation(msg.From.ID)
	b.log.Info().Int64("user", msg.From.ID).Msg("user unsubscribed")
	return b.sendTextWithRemove(msg.Chat.ID, "🔕 You will no longer receive reminders. Send /start to subscribe again.")
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name can't be empty.", cancelKeyboard())
		}
		state.params.Name = text
		state.stage = stageFrequency
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 <b>Step 2:</b> how often does it repeat?", frequencyKeyboard())
	case stageFrequency:
		kind, err := model.ParseFrequencyKind(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the options below.", frequencyKeyboard())
		}
		if kind == model.FrequencySeasonal {
			state.params.Frequency = model.Every(1, kind)
			state.stage = stageNotes
			return b.sendWithReplyMarkup(msg.Chat.ID, "📝 <b>Step 3:</b> any notes? (or Skip)", skipKeyboard())
		}
		state.params.Frequency.Kind = kind
		state.stage = stageInterval
		return b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("🔢 <b>Step 3:</b> every how many %s?", kind.PluralUnit()), cancelKeyboard())
	case stageInterval:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Send a whole number of 1 or more.", cancelKeyboard())
		}
		state.params.Frequency.Interval = n
		state.stage = stageNotes
		return b.sendWithReplyMarkup(msg.Chat.ID, "📝 <b>Step 4:</b> any notes? (or Skip)", skipKeyboard())
	case stageNotes:
		if !isSkipInput(text) {
			state.params.Notes = text
		}
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.params)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Conversation reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, params model.TaskParams) error {
	now := b.now()
	task, err := b.tasks.Create(ctx, params, now)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	fmt.Fprintf(&summary, "• <b>ID:</b> <code>%s</code>\n", service.ShortID(task.ID))
	fmt.Fprintf(&summary, "• <b>Name:</b> %s\n", escape(task.Name))
	fmt.Fprintf(&summary, "• <b>Repeats:</b> %s\n", task.Frequency.Description())
	fmt.Fprintf(&summary, "• <b>Next due:</b> %s\n", task.NextDueDate.In(b.loc).Format(model.MediumDateLayout))
	if notes := task.NotesText(); notes != "" {
		fmt.Fprintf(&summary, "• <b>Notes:</b> %s\n", escape(notes))
	}
	if err := b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	return b.sendTaskList(ctx, msg.Chat.ID)
}

func (b *Bot) handleLibrary(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return err
	}
	return b.sendLibrary(ctx, msg.Chat.ID, msg.CommandArguments())
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	task, ok, err := b.resolveArg(ctx, msg, "/complete a1b2c3d4")
	if !ok {
		return err
	}

	task, err = b.tasks.Complete(ctx, task.ID, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, completedText(*task, b.loc))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	task, ok, err := b.resolveArg(ctx, msg, "/delete a1b2c3d4")
	if !ok {
		return err
	}

	if err := b.tasks.Delete(ctx, task.ID, b.now()); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not delete the task: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Task \"%s\" deleted.", escape(task.Name)))
}

// handleFrequency changes a task's recurrence: /frequency <id> <n> <unit>.
func (b *Bot) handleFrequency(ctx context.Context, msg *tgbotapi.Message) error {
	const usage = "Usage: /frequency a1b2c3d4 6 months (or /frequency a1b2c3d4 seasonal)"
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 2 {
		return b.sendText(msg.Chat.ID, usage)
	}
	freq, err := parseFrequencyArgs(fields[1:])
	if err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error())+"\n"+usage)
	}

	task, err := b.tasks.Resolve(ctx, fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, resolveErrorText(err))
	}
	task, err = b.tasks.Update(ctx, task.ID, service.TaskUpdate{Frequency: &freq}, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not update the task: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🔁 \"%s\" now repeats: %s. Next due %s.",
		escape(task.Name), task.Frequency.Description(), task.NextDueDate.In(b.loc).Format(model.MediumDateLayout)))
}

// handleNotes replaces a task's notes: /notes <id> <text>. Empty text clears them.
func (b *Bot) handleNotes(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	ref, notes, _ := strings.Cut(args, " ")
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Usage: /notes a1b2c3d4 Use the 16x25 filter")
	}

	task, err := b.tasks.Resolve(ctx, ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, resolveErrorText(err))
	}
	notes = strings.TrimSpace(notes)
	if _, err := b.tasks.Update(ctx, task.ID, service.TaskUpdate{Notes: &notes}, b.now()); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not update the task: %s", escape(err.Error())))
	}
	if notes == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 Notes cleared for \"%s\".", escape(task.Name)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 Notes saved for \"%s\".", escape(task.Name)))
}

// resolveArg resolves the command argument to a task. When ok is false the
// user has already been answered and err is the send result.
func (b *Bot) resolveArg(ctx context.Context, msg *tgbotapi.Message, example string) (*model.Task, bool, error) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return nil, false, b.sendText(msg.Chat.ID, "Give the task ID: "+example)
	}
	if _, err := b.ensureUser(ctx, msg); err != nil {
		return nil, false, err
	}
	task, err := b.tasks.Resolve(ctx, args)
	if err != nil {
		return nil, false, b.sendText(msg.Chat.ID, resolveErrorText(err))
	}
	return task, true, nil
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDelete {
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID)
		}
		return b.completeTaskAndRefresh(ctx, msg.Chat.ID, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		prompt := "Confirm or cancel completing the task."
		if req.action == actionDelete {
			prompt = "Confirm or cancel deleting the task."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

// SendDigest sends the daily summary to every subscriber.
func (b *Bot) SendDigest(ctx context.Context, now time.Time) error {
	users, err := b.users.ListAll(ctx)
	if err != nil {
		return err
	}
	tasks, err := b.tasks.List(ctx)
	if err != nil {
		return err
	}
	text := service.DailySummary(tasks, now.In(b.loc))
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(user.ChatID, text); err != nil {
			b.log.Warn().Err(err).Int64("user", user.TelegramID).Msg("send digest")
		}
	}
	b.log.Info().Int("users", len(users)).Int("tasks", len(tasks)).Msg("digest sent")
	return nil
}

// Deliver broadcasts a fired reminder to every subscriber. It fails only when
// nobody could be reached, so a partial outage does not resend to everyone.
func (b *Bot) Deliver(ctx context.Context, reminder model.Reminder) error {
	users, err := b.users.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		b.log.Warn().Str("task", reminder.TaskID).Msg("reminder fired with no subscribers")
		return nil
	}

	text := reminderText(reminder)
	var errs []error
	for _, user := range users {
		msg := tgbotapi.NewMessage(user.ChatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", cbCompletePrefix+reminder.TaskID),
		))
		if _, err := b.api.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", user.TelegramID, err))
		}
	}
	if len(errs) == len(users) {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		b.log.Warn().Err(err).Str("task", reminder.TaskID).Msg("deliver reminder")
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	from := msg.From
	return b.users.UpsertFromTelegram(ctx, from.ID, msg.Chat.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.tasks.List(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks yet. Add one with /newtask or pick from /library.")
	}

	now := b.now()
	text, buttons := renderTaskList(tasks, now)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) sendLibrary(ctx context.Context, chatID int64, query string) error {
	templates := model.SearchTemplates(query)
	if len(templates) == 0 {
		return b.sendText(chatID, fmt.Sprintf("No templates match \"%s\".", escape(strings.TrimSpace(query))))
	}

	tasks, err := b.tasks.List(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}

	text, buttons := renderLibrary(templates, addedTemplates(tasks))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack")
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	b.log.Debug().Int64("user", cb.From.ID).Str("data", data).Msg("callback received")

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		return b.askConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbCompletePrefix), actionComplete)
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix), actionDelete)
	case strings.HasPrefix(data, cbTemplatePrefix):
		return b.toggleTemplate(ctx, chatID, strings.TrimPrefix(data, cbTemplatePrefix))
	default:
		return nil
	}
}

func (b *Bot) askConfirmation(ctx context.Context, chatID, userID int64, taskID string, action confirmationAction) error {
	task, err := b.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return err
	}

	text := fmt.Sprintf("Mark \"%s\" as done?", escape(task.Name))
	if action == actionDelete {
		text = fmt.Sprintf("Delete \"%s\"?", escape(task.Name))
	}
	b.setConfirmation(userID, confirmationRequest{taskID: task.ID, action: action})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) completeTaskAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.tasks.Complete(ctx, taskID, b.now())
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return b.sendTextWithRemove(chatID, "Task not found or already deleted.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.sendTextWithRemove(chatID, completedText(*task, b.loc)); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return b.sendTextWithRemove(chatID, "Task not found or already deleted.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	if err := b.tasks.Delete(ctx, taskID, b.now()); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Task \"%s\" deleted.", escape(task.Name))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID)
}

func (b *Bot) toggleTemplate(ctx context.Context, chatID int64, raw string) error {
	tpl, err := templateByIndex(raw)
	if err != nil {
		return nil
	}

	task, err := b.tasks.ToggleTemplate(ctx, tpl, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not update the library: %s", escape(err.Error())))
	}

	var text string
	if task == nil {
		text = fmt.Sprintf("➖ Removed \"%s\" from your tasks.", escape(tpl.Name))
	} else {
		text = fmt.Sprintf("➕ Added \"%s\", due %s.", escape(task.Name), task.NextDueDate.In(b.loc).Format(model.MediumDateLayout))
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendLibrary(ctx, chatID, "")
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, msg)
	case strings.ToLower(menuLabelLibrary):
		return true, b.handleLibrary(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}
