package bot

import (
	"bytes"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 110
	leftLabelsWidth  = 80
	legendWidth      = 170
	dayPaddingX      = 6
	laneGap          = 3
	minSlotHeight    = 10.0
	slotBorderRadius = 5.0
	maxDays          = 7
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 8
	defaultMaxHour   = 20
	slotMinutes      = 30
)

// Константы шрифтов
const (
	titleFontSize     = 26.0
	dayFontSize       = 22.0
	hourLabelFontSize = 16.0
	slotTimeFontSize  = 13.0
	legendFontSize    = 14.0
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{225, 225, 225, 255}

	videoColor      = color.RGBA{120, 170, 230, 230}
	deskColor       = color.RGBA{133, 193, 85, 220}
	homeColor       = color.RGBA{240, 190, 90, 230}
	bookedColor     = color.RGBA{255, 182, 193, 255}
	slotTextColor   = color.RGBA{20, 24, 28, 230}
	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// slotKind дорожка внутри колонки дня
type slotKind int

const (
	kindVideo slotKind = iota
	kindDesk
	kindHome
	kindBooked
)

const laneCount = 3

var kindColors = map[slotKind]color.RGBA{
	kindVideo:  videoColor,
	kindDesk:   deskColor,
	kindHome:   homeColor,
	kindBooked: bookedColor,
}

// hourRange диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

var (
	fontsOnce   sync.Once
	parsedFonts map[fontStyle]*opentype.Font
)

// loadFont ставит Go-шрифт нужного размера, basicfont как fallback
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	fontsOnce.Do(func() {
		parsedFonts = make(map[fontStyle]*opentype.Font)
		for s, data := range map[fontStyle][]byte{fontRegular: goregular.TTF, fontBold: gobold.TTF} {
			if f, err := opentype.Parse(data); err == nil {
				parsedFonts[s] = f
			}
		}
	})

	if f, ok := parsedFonts[style]; ok {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// GenerateAvailabilityImage рисует до семи дней плана: свободные слоты по режимам
// в отдельных дорожках, занятые поверх на всю ширину колонки
func GenerateAvailabilityImage(title string, days []model.DaySlots) ([]byte, error) {
	if len(days) > maxDays {
		days = days[:maxDays]
	}

	hours := calculateHourRange(days)

	dc := createCanvas()
	columns := max(len(days), 1)
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / columns
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, title, days)
	drawHourLabels(dc, hours, cellHeight)
	for i, day := range days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i)
		drawDayHeader(dc, day.Date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		drawDaySlots(dc, day, x, y, dayWidth, hours, cellHeight)
	}
	drawLegend(dc, leftLabelsWidth+columns*dayWidth)

	return encodeImage(dc)
}

// calculateHourRange определяет диапазон часов по всем слотам плана
func calculateHourRange(days []model.DaySlots) hourRange {
	minHour, maxHour := 24, 0

	for _, day := range days {
		for _, list := range [][]model.SlotTime{
			day.AvailableSlotsVideo, day.AvailableSlotsDesk, day.AvailableSlotsHome, day.BookedSlots,
		} {
			for _, t := range list {
				endMinutes := t.Minutes() + slotMinutes
				endH := endMinutes / 60
				if endMinutes%60 > 0 {
					endH++
				}
				minHour = min(minHour, t.Hour())
				maxHour = max(maxHour, endH)
			}
		}
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(minHour-hourPaddingTop, 0)
	end := min(maxHour+hourPaddingBot, 24)

	return hourRange{start: start, end: end, total: end - start}
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader имя врача и период
func drawHeader(dc *gg.Context, title string, days []model.DaySlots) {
	if len(days) > 0 {
		title += "   " + days[0].Date.Format("02.01") + " - " + days[len(days)-1].Date.Format("02.01")
	}

	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, 20, float64(headerHeight)/4, 0, 0.5)
}

// drawHourLabels колонка с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, fontRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i < hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(formatHour(hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func formatHour(h int) string {
	t, _ := model.SlotTimeFromMinutes(h * 60)
	return t.String()
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int) {
	if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader день недели и дата над колонкой
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, fontBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawDaySlots свободные слоты по дорожкам режимов, затем занятые на всю ширину
func drawDaySlots(dc *gg.Context, day model.DaySlots, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	inner := float64(dayWidth - dayPaddingX*2)
	laneWidth := (inner - float64(laneGap*(laneCount-1))) / float64(laneCount)

	lanes := []struct {
		kind  slotKind
		slots []model.SlotTime
	}{
		{kindVideo, day.AvailableSlotsVideo},
		{kindDesk, day.AvailableSlotsDesk},
		{kindHome, day.AvailableSlotsHome},
	}
	for i, lane := range lanes {
		laneX := x + dayPaddingX + float64(i)*(laneWidth+laneGap)
		for _, t := range lane.slots {
			drawSlot(dc, t, lane.kind, laneX, y, laneWidth, hours, cellHeight)
		}
	}

	for _, t := range day.BookedSlots {
		drawSlot(dc, t, kindBooked, x+dayPaddingX, y, inner, hours, cellHeight)
	}
}

func drawSlot(dc *gg.Context, t model.SlotTime, kind slotKind, x, y, width float64, hours hourRange, cellHeight float64) {
	start := float64(t.Minutes())/60.0 - float64(hours.start)
	slotY := y + start*cellHeight
	slotHeight := max(float64(slotMinutes)/60.0*cellHeight, minSlotHeight)

	fill := kindColors[kind]
	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x, slotY+1, width, slotHeight-2, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, slotY+1, width, slotHeight-2, slotBorderRadius)
	dc.Stroke()

	if slotHeight > 16 {
		loadFont(dc, slotTimeFontSize, fontRegular)
		dc.SetColor(slotTextColor)
		dc.DrawStringAnchored(t.String(), x+4, slotY+slotHeight/2, 0, 0.4)
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawLegend легенда справа от колонок
func drawLegend(dc *gg.Context, left int) {
	items := []struct {
		label string
		kind  slotKind
	}{
		{"Видео", kindVideo},
		{"Клиника", kindDesk},
		{"На дому", kindHome},
		{"Занято", kindBooked},
	}

	const boxW, boxH = 20.0, 14.0
	lx := float64(left + 15)
	ly := float64(imageHeight) - 140.0

	for _, item := range items {
		dc.SetColor(kindColors[item.kind])
		dc.DrawRoundedRectangle(lx, ly, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendFontSize, fontRegular)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, lx+boxW+8, ly+boxH/2+1, 0, 0.2)
		ly += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// короткие дни недели
func weekdayShort(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
		time.Sunday:    "Вс",
	}
	return weekdays[weekday]
}
