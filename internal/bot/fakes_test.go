package bot

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sentMessage struct {
	ChatID    int64
	MessageID int // Не ноль, если сообщение редактировалось
	Text      string
	Markdown  bool
	Keyboard  *tgbotapi.InlineKeyboardMarkup
}

type fakeTelegram struct {
	mu        sync.Mutex
	sent      []sentMessage
	answers   map[string]string
	failChats map[int64]bool

	messages  chan models.Message
	callbacks chan models.CallbackQuery
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		answers:   make(map[string]string),
		failChats: make(map[int64]bool),
		messages:  make(chan models.Message, 8),
		callbacks: make(chan models.CallbackQuery, 8),
	}
}

func (f *fakeTelegram) record(m sentMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChats[m.ChatID] {
		return errors.New("telegram: Forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	return f.record(sentMessage{ChatID: chatID, Text: text})
}

func (f *fakeTelegram) SendMarkdownMessage(chatID int64, text string) error {
	return f.record(sentMessage{ChatID: chatID, Text: text, Markdown: true})
}

func (f *fakeTelegram) SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	return f.record(sentMessage{ChatID: chatID, Text: text, Keyboard: &keyboard})
}

func (f *fakeTelegram) EditMessageWithInlineKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	return f.record(sentMessage{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: &keyboard})
}

func (f *fakeTelegram) AnswerCallback(callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers[callbackID] = text
	return nil
}

func (f *fakeTelegram) StartBot(ctx context.Context) (chan models.Message, chan models.CallbackQuery, error) {
	return f.messages, f.callbacks, nil
}

func (f *fakeTelegram) all() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTelegram) answer(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.answers[id]
	return text, ok
}

// scriptedFlow отвечает заранее заданными ответами и запоминает события
type scriptedFlow struct {
	mu      sync.Mutex
	events  []booking.Event
	replies map[booking.Action]booking.Reply
	err     error
	active  *models.Booking
}

func newScriptedFlow() *scriptedFlow {
	return &scriptedFlow{replies: make(map[booking.Action]booking.Reply)}
}

func (f *scriptedFlow) Handle(_ context.Context, ev booking.Event) (booking.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if f.err != nil {
		return booking.Reply{}, f.err
	}
	if r, ok := f.replies[ev.Action]; ok {
		return r, nil
	}
	return booking.Reply{Ignored: true}, nil
}

func (f *scriptedFlow) ActiveBooking(context.Context, int64) (*models.Booking, error) {
	return f.active, nil
}

func (f *scriptedFlow) Location() *time.Location { return time.UTC }

func (f *scriptedFlow) handled() []booking.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]booking.Event(nil), f.events...)
}

type fakeAdmins struct {
	mu         sync.Mutex
	ids        []int64
	usernames  map[string]bool
	remembered []int64
}

func (a *fakeAdmins) IsAdmin(username string, userID int64) bool {
	if a.usernames[username] {
		return true
	}
	for _, id := range a.ids {
		if id == userID {
			return true
		}
	}
	return false
}

func (a *fakeAdmins) Remember(_ context.Context, userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remembered = append(a.remembered, userID)
}

func (a *fakeAdmins) All(context.Context) []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range append(append([]int64(nil), a.ids...), a.remembered...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type fakeReminderRepo struct {
	mu       sync.Mutex
	bookings []models.Booking
	marked   []int64
	markErr  error
	from, to time.Time
}

func (r *fakeReminderRepo) DueReminders(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.from, r.to = from, to
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ReminderSent || !b.Status.Occupies() {
			continue
		}
		if b.StartTS.Before(from) || !b.StartTS.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeReminderRepo) MarkReminderSent(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	r.marked = append(r.marked, id)
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			r.bookings[i].ReminderSent = true
		}
	}
	return nil
}
