package model

import "time"

// DaySlots свободные и занятые слоты врача на один день
type DaySlots struct {
	Date                time.Time  `json:"date"`
	AvailableSlotsVideo []SlotTime `json:"availableSlotsVideo"`
	AvailableSlotsDesk  []SlotTime `json:"availableSlotsDesk"`
	AvailableSlotsHome  []SlotTime `json:"availableSlotsHome"`
	BookedSlots         []SlotTime `json:"bookedSlots"`
}
