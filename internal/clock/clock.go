// Package clock даёт единый источник "текущего времени" в зоне, заданной конфигом.
// Калькулятор слотов и проверка доступности получают время только отсюда
package clock

import (
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
)

type Clock interface {
	Now() time.Time
}

type system struct {
	loc *time.Location
}

// New системные часы, показания переводятся в loc
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return system{loc: loc}
}

func (c system) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed часы, которые всегда показывают t
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today сегодняшняя дата по часам c
func Today(c Clock) time.Time {
	return model.DateOf(c.Now())
}
