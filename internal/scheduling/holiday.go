package scheduling

import (
	"sort"
	"time"

	"github.com/derslik/derslik-api/internal/models"
)

// HolidayInfo classifies a date against the national table and the user's
// custom holiday list.
type HolidayInfo struct {
	IsHoliday bool   `json:"is_holiday"`
	Name      string `json:"name,omitempty"`
	IsCustom  bool   `json:"is_custom,omitempty"`
}

// DatedHoliday is a resolved national holiday for a concrete year.
type DatedHoliday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

type monthDay struct {
	month time.Month
	day   int
}

// Fixed-date national holidays, the same every year.
var fixedHolidays = map[monthDay]string{
	{time.January, 1}:  "Yılbaşı",
	{time.April, 23}:   "Ulusal Egemenlik ve Çocuk Bayramı",
	{time.May, 1}:      "Emek ve Dayanışma Günü",
	{time.May, 19}:     "Atatürk'ü Anma, Gençlik ve Spor Bayramı",
	{time.July, 15}:    "Demokrasi ve Milli Birlik Günü",
	{time.August, 30}:  "Zafer Bayramı",
	{time.October, 29}: "Cumhuriyet Bayramı",
}

// Religious holidays follow the lunar calendar and shift yearly; the dates
// are precomputed per year rather than derived at runtime.
var movableHolidays = map[int]map[monthDay]string{
	2023: {
		{time.April, 21}: "Ramazan Bayramı", {time.April, 22}: "Ramazan Bayramı", {time.April, 23}: "Ramazan Bayramı",
		{time.June, 28}: "Kurban Bayramı", {time.June, 29}: "Kurban Bayramı", {time.June, 30}: "Kurban Bayramı", {time.July, 1}: "Kurban Bayramı",
	},
	2024: {
		{time.April, 10}: "Ramazan Bayramı", {time.April, 11}: "Ramazan Bayramı", {time.April, 12}: "Ramazan Bayramı",
		{time.June, 16}: "Kurban Bayramı", {time.June, 17}: "Kurban Bayramı", {time.June, 18}: "Kurban Bayramı", {time.June, 19}: "Kurban Bayramı",
	},
	2025: {
		{time.March, 30}: "Ramazan Bayramı", {time.March, 31}: "Ramazan Bayramı", {time.April, 1}: "Ramazan Bayramı",
		{time.June, 6}: "Kurban Bayramı", {time.June, 7}: "Kurban Bayramı", {time.June, 8}: "Kurban Bayramı", {time.June, 9}: "Kurban Bayramı",
	},
	2026: {
		{time.March, 20}: "Ramazan Bayramı", {time.March, 21}: "Ramazan Bayramı", {time.March, 22}: "Ramazan Bayramı",
		{time.May, 27}: "Kurban Bayramı", {time.May, 28}: "Kurban Bayramı", {time.May, 29}: "Kurban Bayramı", {time.May, 30}: "Kurban Bayramı",
	},
	2027: {
		{time.March, 9}: "Ramazan Bayramı", {time.March, 10}: "Ramazan Bayramı", {time.March, 11}: "Ramazan Bayramı",
		{time.May, 16}: "Kurban Bayramı", {time.May, 17}: "Kurban Bayramı", {time.May, 18}: "Kurban Bayramı", {time.May, 19}: "Kurban Bayramı",
	},
}

// NationalHolidayName looks up the date in the national table.
func NationalHolidayName(date time.Time) (string, bool) {
	key := monthDay{date.Month(), date.Day()}
	if name, ok := fixedHolidays[key]; ok {
		return name, true
	}
	if year, ok := movableHolidays[date.Year()]; ok {
		if name, ok := year[key]; ok {
			return name, true
		}
	}
	return "", false
}

// NationalHolidaysForYear returns the full resolved table for a year, ordered
// by date.
func NationalHolidaysForYear(year int) []DatedHoliday {
	var out []DatedHoliday
	for key, name := range fixedHolidays {
		out = append(out, DatedHoliday{Date: time.Date(year, key.month, key.day, 0, 0, 0, 0, time.Local), Name: name})
	}
	for key, name := range movableHolidays[year] {
		out = append(out, DatedHoliday{Date: time.Date(year, key.month, key.day, 0, 0, 0, 0, time.Local), Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ClassifyHoliday reports whether the date is a holiday. When the date is
// both national and custom the custom description wins for display, but the
// holiday status is the same either way.
func ClassifyHoliday(date time.Time, custom []models.CustomHoliday) HolidayInfo {
	info := HolidayInfo{}
	if name, ok := NationalHolidayName(date); ok {
		info.IsHoliday = true
		info.Name = name
	}
	for _, h := range custom {
		if SameDate(h.Date, date) {
			info.IsHoliday = true
			info.Name = h.Description
			info.IsCustom = true
			break
		}
	}
	return info
}
