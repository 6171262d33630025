package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"photostudio-bot/internal/models"

	"go.uber.org/zap/zaptest"
)

var errDiskGone = errors.New("disk gone")

type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*models.Booking
	fail     error
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[int64]*models.Booking{}}
}

func (r *memRepo) add(b models.Booking) int64 {
	id, _ := r.Insert(context.Background(), b)
	return id
}

func (r *memRepo) Insert(_ context.Context, b models.Booking) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	r.nextID++
	b.ID = r.nextID
	r.bookings[b.ID] = &b
	return b.ID, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) GetActiveForUser(_ context.Context, userID int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var found *models.Booking
	for _, b := range r.bookings {
		if b.UserID != userID || !b.Status.Occupies() {
			continue
		}
		if found == nil || b.StartTS.After(found.StartTS) || (b.StartTS.Equal(found.StartTS) && b.ID > found.ID) {
			found = b
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (r *memRepo) ListBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []models.Booking
	for _, b := range r.bookings {
		if !b.StartTS.Before(from) && b.StartTS.Before(to) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTS.Before(out[j].StartTS) })
	return out, nil
}

func (r *memRepo) ExistsAt(_ context.Context, start time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return false, r.fail
	}
	for _, b := range r.bookings {
		if b.Status.Occupies() && b.StartTS.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) UpdateTimeCategoryLocation(_ context.Context, id int64, start time.Time, category string, loc *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	b.StartTS = start
	b.Category = category
	b.ReminderSent = false
	if loc != nil {
		b.Location = loc
	}
	return nil
}

func (r *memRepo) SetStatus(_ context.Context, id int64, status models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if b, ok := r.bookings[id]; ok {
		b.Status = status
	}
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

type memDialogues struct {
	mu      sync.Mutex
	pending map[int64]models.PendingReservation
	resched map[int64]models.RescheduleIntent
}

func newMemDialogues() *memDialogues {
	return &memDialogues{
		pending: map[int64]models.PendingReservation{},
		resched: map[int64]models.RescheduleIntent{},
	}
}

func (d *memDialogues) LoadPending(_ context.Context, userID int64) (*models.PendingReservation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (d *memDialogues) SavePending(_ context.Context, userID int64, p models.PendingReservation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[userID] = p
	return nil
}

func (d *memDialogues) ClearPending(_ context.Context, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, userID)
	return nil
}

func (d *memDialogues) LoadReschedule(_ context.Context, userID int64) (*models.RescheduleIntent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.resched[userID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (d *memDialogues) SaveReschedule(_ context.Context, userID int64, r models.RescheduleIntent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resched[userID] = r
	return nil
}

func (d *memDialogues) ClearReschedule(_ context.Context, userID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.resched, userID)
	return nil
}

type staticCategories []models.Category

func (c staticCategories) Categories(context.Context) ([]models.Category, error) {
	return c, nil
}

// coordsResolver понимает только строку "53.2, 50.1"
type coordsResolver struct{}

func (coordsResolver) Resolve(_ context.Context, in models.LocationInput) (*models.Location, error) {
	if in.Geo != nil {
		return &models.Location{Lat: in.Geo.Lat, Lon: in.Geo.Lon, Text: "geo"}, nil
	}
	if in.Text == "53.2, 50.1" {
		return &models.Location{Lat: 53.2, Lon: 50.1, Text: in.Text, Source: in.Text}, nil
	}
	return nil, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *recordingNotifier) kinds() []NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

// Среда, 5 марта 2025, полдень UTC
var testNow = time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

const (
	thursday  = "2025-03-06"
	saturday  = "2025-03-08"
	sunday    = "2025-03-09"
	wednesday = "2025-03-12"
)

var testCategories = staticCategories{
	{Label: "👨‍👩‍👧‍👦 Семейная", Slug: "family"},
	{Label: "💕 Love Story", Slug: "love_story"},
	{Label: "👤 Индивидуальная", Slug: "personal"},
}

type fixture struct {
	repo      *memRepo
	dialogues *memDialogues
	notifier  *recordingNotifier
	manager   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemRepo(),
		dialogues: newMemDialogues(),
		notifier:  &recordingNotifier{},
	}
	f.manager = NewManager(f.repo, f.dialogues, testCategories, coordsResolver{}, f.notifier, zaptest.NewLogger(t), Options{
		Now:        func() time.Time { return testNow },
		CityName:   "Самара",
		CityMapURL: "https://yandex.ru/maps/?ll=50.100202,53.195878&z=12",
	})
	return f
}

func at(date string, hour int) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour)
}

func (f *fixture) handle(t *testing.T, ev Event) Reply {
	t.Helper()
	if ev.UserID == 0 {
		ev.UserID = 42
	}
	if ev.ChatID == 0 {
		ev.ChatID = ev.UserID
	}
	if ev.Username == "" {
		ev.Username = "client"
	}
	r, err := f.manager.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("handle %s: %v", ev.Action, err)
	}
	return r
}

// book проходит весь диалог записи от выбора даты до подтверждения
func (f *fixture) book(t *testing.T, userID int64, date string, hour int, slug string) Reply {
	t.Helper()
	f.handle(t, Event{UserID: userID, Action: ActionStart})
	f.handle(t, Event{UserID: userID, Action: ActionPickDate, Date: date})
	f.handle(t, Event{UserID: userID, Action: ActionPickHour, Date: date, Hour: hour})
	f.handle(t, Event{UserID: userID, Action: ActionPickCategory, Date: date, Hour: hour, Category: slug})
	f.handle(t, Event{UserID: userID, Action: ActionSkipLocation})
	return f.handle(t, Event{UserID: userID, Action: ActionConfirm})
}

func findChoice(rows [][]Choice, match func(Choice) bool) (Choice, bool) {
	for _, row := range rows {
		for _, c := range row {
			if match(c) {
				return c, true
			}
		}
	}
	return Choice{}, false
}
