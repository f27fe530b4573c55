package bot

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/service"
)

var modeTitles = map[model.Mode]string{
	model.ModeVideoConsult: "📹 Видеоконсультация",
	model.ModeHomeVisit:    "🏠 Выезд на дом",
	model.ModeClinicVisit:  "🏥 Приём в клинике",
}

var statusTitles = map[model.AppointmentStatus]string{
	model.AppointmentStatusPending:  "⏳ Ожидает решения",
	model.AppointmentStatusApproved: "✅ Подтверждена",
	model.AppointmentStatusRejected: "❌ Отклонена",
}

func modeTitle(m model.Mode) string {
	if t, ok := modeTitles[m]; ok {
		return t
	}
	return string(m)
}

func statusTitle(s model.AppointmentStatus) string {
	if t, ok := statusTitles[s]; ok {
		return t
	}
	return string(s)
}

// formatAppointment карточка заявки для сообщения врачу
func formatAppointment(a *model.Appointment) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📅 %s в %s\n", a.AppointmentSlotDate.Format("02.01.2006"), a.AppointmentSlotTime)
	fmt.Fprintf(&sb, "%s\n", modeTitle(a.Type))

	if a.Patient != nil {
		name := strings.TrimSpace(a.Patient.FirstName + " " + a.Patient.LastName)
		fmt.Fprintf(&sb, "👤 %s", name)
		if a.Patient.Contact != "" {
			fmt.Fprintf(&sb, ", %s", a.Patient.Contact)
		}
		sb.WriteString("\n")
	}
	if a.IsForOthers && a.OthersContact != nil {
		fmt.Fprintf(&sb, "👥 За другого: %s, %s\n", a.OthersContact.Name, a.OthersContact.Contact)
	}
	if a.Reason != "" {
		fmt.Fprintf(&sb, "📝 %s\n", a.Reason)
	}
	if a.CurrentLocation != nil {
		fmt.Fprintf(&sb, "📍 %.5f, %.5f\n", a.CurrentLocation.Lat, a.CurrentLocation.Long)
	}
	fmt.Fprintf(&sb, "Статус: %s", statusTitle(a.Status))

	return sb.String()
}

// formatDashboard сводка по записям врача
func formatDashboard(d *service.Dashboard) string {
	var sb strings.Builder

	sb.WriteString("📊 Сводка по записям\n\n")
	fmt.Fprintf(&sb, "Всего: %d\n", d.Total)
	fmt.Fprintf(&sb, "⏳ Ожидают: %d\n", d.Pending)
	fmt.Fprintf(&sb, "✅ Подтверждены: %d\n", d.Approved)
	fmt.Fprintf(&sb, "❌ Отклонены: %d\n", d.Rejected)

	fmt.Fprintf(&sb, "\n🗓 Сегодня: %d", len(d.Today))
	for _, a := range d.Today {
		fmt.Fprintf(&sb, "\n  • %s %s", a.AppointmentSlotTime, modeTitle(a.Type))
	}
	fmt.Fprintf(&sb, "\n\n🔜 Предстоящие: %d", len(d.Upcoming))

	return sb.String()
}
