// Package slots считает свободные слоты врача на день: шаблон минус занятые,
// минус уже прошедшее время, если день сегодняшний
package slots

import (
	"sort"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
)

// BookedSet занятые слоты врача на конкретную дату (и режим)
type BookedSet map[model.SlotTime]struct{}

// NewBookedSet собирает множество из списка времён
func NewBookedSet(times ...model.SlotTime) BookedSet {
	set := make(BookedSet, len(times))
	for _, t := range times {
		set[t] = struct{}{}
	}
	return set
}

// BookedOn отбирает занятые слоты на дату. mode == "" означает все режимы
func BookedOn(booked []model.BookedSlot, date time.Time, mode model.Mode) BookedSet {
	set := make(BookedSet)
	for _, b := range booked {
		if !model.SameDate(b.Date, date) {
			continue
		}
		if mode != "" && b.Type != mode {
			continue
		}
		set[b.Time] = struct{}{}
	}
	return set
}

func (s BookedSet) Has(t model.SlotTime) bool {
	_, ok := s[t]
	return ok
}

// Sorted список занятых слотов по возрастанию
func (s BookedSet) Sorted() []model.SlotTime {
	out := make([]model.SlotTime, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	Sort(out)
	return out
}

// Available возвращает отсортированные слоты шаблона, которые не заняты и,
// если date - сегодняшний день по now, не раньше текущего времени.
// Для пустого шаблона результат - пустой срез, не nil
func Available(template []model.SlotTime, booked BookedSet, date, now time.Time) []model.SlotTime {
	out := make([]model.SlotTime, 0, len(template))
	if len(template) == 0 {
		return out
	}

	sameDay := model.SameDate(date, now)
	current, _ := model.SlotTimeFromMinutes(now.Hour()*60 + now.Minute())

	seen := make(map[model.SlotTime]struct{}, len(template))
	for _, t := range template {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}

		if booked.Has(t) {
			continue
		}
		if sameDay && t.Before(current) {
			continue
		}
		out = append(out, t)
	}

	Sort(out)
	return out
}

// Window слоты для последовательной видеоконсультации: свободные слоты, начинающиеся
// не раньше reference+consultation и не позже reference+2*consultation.
// Прошедшие даты ничего не дают
func Window(template []model.SlotTime, booked BookedSet, date, now time.Time, reference model.SlotTime, consultation time.Duration) []model.SlotTime {
	if model.DateOf(date).Before(model.DateOf(now)) {
		return []model.SlotTime{}
	}

	step := int(consultation / time.Minute)
	from := reference.Minutes() + step
	to := from + step

	candidates := Available(template, booked, date, now)
	out := candidates[:0]
	for _, t := range candidates {
		if m := t.Minutes(); m >= from && m <= to {
			out = append(out, t)
		}
	}
	return out
}

// Sort упорядочивает по часу, затем по минуте
func Sort(times []model.SlotTime) {
	sort.Slice(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})
}
