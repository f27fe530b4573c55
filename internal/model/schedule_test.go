package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotTime(t *testing.T) {
	valid := map[string]int{"00:00": 0, "09:30": 570, "23:59": 1439}
	for in, minutes := range valid {
		got, err := ParseSlotTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, minutes, got.Minutes())
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"", "9:30", "24:00", "12:60", "12-30", "ab:cd", "12:3", " 9:30"} {
		_, err := ParseSlotTime(in)
		assert.Error(t, err, in)
	}
}

func TestSlotTime_Before(t *testing.T) {
	assert.True(t, MustSlotTime("09:00").Before(MustSlotTime("09:30")))
	assert.True(t, MustSlotTime("09:45").Before(MustSlotTime("10:00")))
	assert.False(t, MustSlotTime("10:00").Before(MustSlotTime("10:00")))
}

func TestSlotTime_JSON(t *testing.T) {
	var got struct {
		Slot SlotTime `json:"slot"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"slot":"07:05"}`), &got))
	assert.Equal(t, "07:05", got.Slot.String())

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slot":"07:05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"slot":"7:5"}`), &got))
}

func TestScheduleTemplate_SlotsFor(t *testing.T) {
	s := &ScheduleTemplate{
		DoctorProfileID: uuid.New(),
		OnlineSlots:     []SlotTime{MustSlotTime("10:00")},
		HomeSlots:       []SlotTime{MustSlotTime("11:00")},
		DeskSlots:       []SlotTime{MustSlotTime("12:00")},
	}
	assert.Equal(t, "10:00", s.SlotsFor(ModeVideoConsult)[0].String())
	assert.Equal(t, "11:00", s.SlotsFor(ModeHomeVisit)[0].String())
	assert.Equal(t, "12:00", s.SlotsFor(ModeClinicVisit)[0].String())
	assert.Nil(t, s.SlotsFor(Mode("OTHER")))

	var nilTemplate *ScheduleTemplate
	assert.Nil(t, nilTemplate.SlotsFor(ModeVideoConsult))
}

func TestDoctorProfile_OffersMode(t *testing.T) {
	d := &DoctorProfile{Mode: ModeHomeVisit}
	assert.True(t, d.OffersMode(ModeHomeVisit))
	assert.False(t, d.OffersMode(ModeVideoConsult))
	assert.False(t, d.OffersMode(ModeClinicVisit))

	d.IsAvailableForDesk = true
	assert.True(t, d.OffersMode(ModeClinicVisit))

	// CLINIC_VISIT в основном режиме не открывает ни видео, ни desk
	d = &DoctorProfile{Mode: ModeClinicVisit}
	assert.False(t, d.OffersMode(ModeVideoConsult))
	assert.False(t, d.OffersMode(ModeClinicVisit))
}

func TestAppointmentStatus_CanTransition(t *testing.T) {
	assert.True(t, AppointmentStatusPending.CanTransition(AppointmentStatusApproved))
	assert.True(t, AppointmentStatusPending.CanTransition(AppointmentStatusRejected))
	assert.False(t, AppointmentStatusApproved.CanTransition(AppointmentStatusRejected))
	assert.False(t, AppointmentStatusRejected.CanTransition(AppointmentStatusApproved))
	assert.False(t, AppointmentStatusPending.CanTransition(AppointmentStatusPending))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-06-10", "2024-06-10T00:00:00.000Z", "2024-06-10T00:00:00+05:30"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-06-10", got.Format("2006-01-02"))
	}
	for _, in := range []string{"", "10/06/2024", "2024-13-01"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}
