package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SlotTime время начала слота в формате "HH:MM" (24 часа)
type SlotTime struct {
	hour   int
	minute int
}

// ParseSlotTime разбирает строку "HH:MM"
func ParseSlotTime(s string) (SlotTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return SlotTime{}, fmt.Errorf("invalid slot time %q: want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return SlotTime{}, fmt.Errorf("invalid slot time %q: want HH:MM", s)
		}
	}

	hour, err := strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return SlotTime{}, fmt.Errorf("invalid slot time %q: bad hour", s)
	}

	minute, err := strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return SlotTime{}, fmt.Errorf("invalid slot time %q: bad minute", s)
	}

	return SlotTime{hour: hour, minute: minute}, nil
}

// MustSlotTime как ParseSlotTime, но паникует на ошибке
func MustSlotTime(s string) SlotTime {
	t, err := ParseSlotTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// SlotTimeFromMinutes собирает время из количества минут от полуночи
func SlotTimeFromMinutes(total int) (SlotTime, bool) {
	if total < 0 || total >= 24*60 {
		return SlotTime{}, false
	}
	return SlotTime{hour: total / 60, minute: total % 60}, true
}

// ParseSlotTimes разбирает список строк, первая ошибка прерывает разбор
func ParseSlotTimes(values []string) ([]SlotTime, error) {
	out := make([]SlotTime, 0, len(values))
	for _, v := range values {
		t, err := ParseSlotTime(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// SlotTimeStrings обратное преобразование для хранения и ответов
func SlotTimeStrings(values []SlotTime) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.String())
	}
	return out
}

func (t SlotTime) Hour() int    { return t.hour }
func (t SlotTime) Minute() int  { return t.minute }
func (t SlotTime) Minutes() int { return t.hour*60 + t.minute }

// Before сравнивает по часу, затем по минуте
func (t SlotTime) Before(other SlotTime) bool {
	if t.hour != other.hour {
		return t.hour < other.hour
	}
	return t.minute < other.minute
}

func (t SlotTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

func (t SlotTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SlotTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSlotTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScheduleTemplate недельный шаблон доступности врача по режимам приёма.
// Один шаблон на врача, обновляется на месте
type ScheduleTemplate struct {
	ID              uuid.UUID  `json:"id"`
	DoctorProfileID uuid.UUID  `json:"doctorProfileId"`
	OnlineSlots     []SlotTime `json:"onlineSlots"`
	HomeSlots       []SlotTime `json:"homeSlots"`
	DeskSlots       []SlotTime `json:"deskSlots"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// EmptySchedule шаблон по умолчанию, когда врач ещё ничего не настроил
func EmptySchedule(doctorProfileID uuid.UUID) *ScheduleTemplate {
	return &ScheduleTemplate{
		DoctorProfileID: doctorProfileID,
		OnlineSlots:     []SlotTime{},
		HomeSlots:       []SlotTime{},
		DeskSlots:       []SlotTime{},
	}
}

// SlotsFor возвращает список слотов для режима приёма
func (s *ScheduleTemplate) SlotsFor(mode Mode) []SlotTime {
	if s == nil {
		return nil
	}
	switch mode {
	case ModeVideoConsult:
		return s.OnlineSlots
	case ModeHomeVisit:
		return s.HomeSlots
	case ModeClinicVisit:
		return s.DeskSlots
	default:
		return nil
	}
}
