package booking

import (
	"fmt"
	"time"

	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"
)

const (
	datesPerRow      = 5
	hoursPerRow      = 3
	categoriesPerRow = 2
)

func (m *Manager) datePickerReply(text string) Reply {
	first, last := m.horizonBounds()

	var rows [][]Choice
	var row []Choice
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		row = append(row, Choice{
			Label:  d.Format("02.01"),
			Action: ActionPickDate,
			Date:   d.Format(utils.DateLayout),
		})
		if len(row) == datesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Choice{{Label: btnCancel, Action: ActionCancel}})

	return Reply{Stage: StageSelectingDate, Text: text, Choices: rows}
}

func hourChoices(day time.Time, slots []HourSlot) [][]Choice {
	date := day.Format(utils.DateLayout)

	var rows [][]Choice
	var row []Choice
	for _, s := range slots {
		label := fmt.Sprintf("%02d:00", s.Hour)
		c := Choice{Label: label, Action: ActionPickHour, Date: date, Hour: s.Hour}
		if s.Taken {
			c = Choice{Label: label + takenHourLabel, Action: ActionTakenHour}
		}
		row = append(row, c)
		if len(row) == hoursPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, backAndCancel()...)
}

func categoryChoices(date string, hour int, cats []models.Category) [][]Choice {
	var rows [][]Choice
	var row []Choice
	for _, c := range cats {
		row = append(row, Choice{
			Label:    c.Label,
			Action:   ActionPickCategory,
			Date:     date,
			Hour:     hour,
			Category: c.Slug,
		})
		if len(row) == categoriesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, backAndCancel()...)
}

func (m *Manager) locationChoices() [][]Choice {
	var rows [][]Choice
	if m.cityMapURL != "" {
		rows = append(rows, []Choice{{Label: btnOpenMap, URL: m.cityMapURL}})
	}
	rows = append(rows, []Choice{{Label: btnSkipLoc, Action: ActionSkipLocation}})
	return append(rows, backAndCancel()...)
}

func confirmChoices() [][]Choice {
	return [][]Choice{
		{{Label: btnConfirm, Action: ActionConfirm}},
		{{Label: btnChange, Action: ActionBackToDate}},
		{{Label: btnCancel, Action: ActionCancel}},
	}
}

func backAndCancel() [][]Choice {
	return [][]Choice{
		{{Label: btnBack, Action: ActionBackToDate}},
		{{Label: btnCancel, Action: ActionCancel}},
	}
}

func (m *Manager) bookingCard(b models.Booking) Reply {
	category := b.Category
	if category == "" {
		category = "—"
	}
	text := fmt.Sprintf(msgBookingCard, utils.FormatTimeDate(b.StartTS.In(m.loc)), category)
	if b.Location != nil {
		text += "\n📍 Локация: " + b.Location.MapURL()
		if b.Location.Address != "" {
			text += "\nАдрес: " + b.Location.Address
		}
	}

	return Reply{
		Stage: StageIdle,
		Text:  text,
		Choices: [][]Choice{
			{{Label: btnReschedule, Action: ActionReschedule, BookingID: b.ID}},
			{{Label: btnCancelBook, Action: ActionCancelBooking, BookingID: b.ID}},
			{{Label: btnMenu, Action: ActionMenu}},
		},
	}
}
