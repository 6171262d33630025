package booking

import "time"

// HourRange - интервал часов начала съёмки, обе границы включительно
type HourRange struct {
	From int
	To   int
}

// WeeklySchedule - какие часы предлагаются в каждый день недели
type WeeklySchedule map[time.Weekday]HourRange

// NewWeeklySchedule строит расписание: будни (пн-пт) и выходные (сб-вс)
func NewWeeklySchedule(weekdays, weekends HourRange) WeeklySchedule {
	s := make(WeeklySchedule, 7)
	for d := time.Monday; d <= time.Friday; d++ {
		s[d] = weekdays
	}
	s[time.Saturday] = weekends
	s[time.Sunday] = weekends
	return s
}

// DefaultSchedule - будни 18-21, выходные 10-21
func DefaultSchedule() WeeklySchedule {
	return NewWeeklySchedule(HourRange{From: 18, To: 21}, HourRange{From: 10, To: 21})
}

// OfferedHours возвращает часы по возрастанию для дня недели даты
func (s WeeklySchedule) OfferedHours(day time.Time) []int {
	r, ok := s[day.Weekday()]
	if !ok || r.From > r.To {
		return nil
	}
	hours := make([]int, 0, r.To-r.From+1)
	for h := r.From; h <= r.To; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Offers проверяет, предлагается ли час в этот день
func (s WeeklySchedule) Offers(day time.Time, hour int) bool {
	r, ok := s[day.Weekday()]
	return ok && hour >= r.From && hour <= r.To
}
