package export

import (
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/derslik/derslik-api/internal/models"
)

// ICSExporter renders lessons into an iCalendar feed. Recurring series whose
// instances still follow a regular cadence are collapsed into a single VEVENT
// with an RRULE; series with moved or skipped instances fall back to plain
// per-instance events.
type ICSExporter struct{}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

// Feed serializes the lessons into an ICS payload.
func (e *ICSExporter) Feed(lessons []models.Lesson, name string) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	singles, series := splitSeries(lessons)

	for _, lesson := range singles {
		addEvent(cal, lesson, "")
	}

	for _, instances := range series {
		sort.Slice(instances, func(i, j int) bool {
			return instances[i].SequenceNumber < instances[j].SequenceNumber
		})
		if ruleValue, ok := inferRule(instances); ok {
			addEvent(cal, instances[0], ruleValue)
			continue
		}
		for _, lesson := range instances {
			addEvent(cal, lesson, "")
		}
	}

	return []byte(cal.Serialize()), nil
}

func addEvent(cal *ics.Calendar, lesson models.Lesson, ruleValue string) {
	ev := cal.AddEvent(lesson.ID)
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(lesson.StartTime)
	ev.SetEndAt(lesson.EndTime)
	ev.SetSummary(lesson.Title)
	if lesson.Description != nil && *lesson.Description != "" {
		ev.SetDescription(*lesson.Description)
	}
	if ruleValue != "" {
		ev.AddRrule(ruleValue)
	}
}

func splitSeries(lessons []models.Lesson) ([]models.Lesson, map[string][]models.Lesson) {
	var singles []models.Lesson
	series := make(map[string][]models.Lesson)
	for _, lesson := range lessons {
		if lesson.IsRecurring() {
			id := *lesson.SeriesID
			series[id] = append(series[id], lesson)
		} else {
			singles = append(singles, lesson)
		}
	}
	return singles, series
}

// inferRule reconstructs a recurrence rule from stored series instances. The
// rule is only trusted when replaying it reproduces every stored start, so a
// series with a moved instance never gets a lying RRULE.
func inferRule(instances []models.Lesson) (string, bool) {
	if len(instances) < 2 {
		return "", false
	}

	head := instances[0]
	gap := instances[1].StartTime.Sub(head.StartTime)

	var candidates []rrule.ROption
	if gap > 0 && gap%(24*time.Hour) == 0 {
		days := int(gap / (24 * time.Hour))
		if days%7 == 0 {
			candidates = append(candidates, rrule.ROption{Freq: rrule.WEEKLY, Interval: days / 7})
		}
		candidates = append(candidates, rrule.ROption{Freq: rrule.DAILY, Interval: days})
	}
	if months := monthGap(head.StartTime, instances[1].StartTime); months > 0 {
		candidates = append(candidates, rrule.ROption{Freq: rrule.MONTHLY, Interval: months})
	}

	for _, opt := range candidates {
		opt.Dtstart = head.StartTime
		opt.Count = len(instances)
		r, err := rrule.NewRRule(opt)
		if err != nil {
			continue
		}
		if matchesAll(r, instances) {
			return fmt.Sprintf("FREQ=%s;INTERVAL=%d;COUNT=%d", freqName(opt.Freq), opt.Interval, opt.Count), true
		}
	}
	return "", false
}

func matchesAll(r *rrule.RRule, instances []models.Lesson) bool {
	occurrences := r.All()
	if len(occurrences) != len(instances) {
		return false
	}
	for i, occ := range occurrences {
		if !occ.Equal(instances[i].StartTime) {
			return false
		}
	}
	return true
}

func monthGap(a, b time.Time) int {
	if a.Day() != b.Day() || a.Hour() != b.Hour() || a.Minute() != b.Minute() {
		return 0
	}
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func freqName(f rrule.Frequency) string {
	switch f {
	case rrule.DAILY:
		return "DAILY"
	case rrule.WEEKLY:
		return "WEEKLY"
	case rrule.MONTHLY:
		return "MONTHLY"
	default:
		return "DAILY"
	}
}
