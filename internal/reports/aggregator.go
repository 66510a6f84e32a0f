// Package reports turns a patient's flat care-event history into per-day
// series for charting: liquid volume, meal intake percentage, medication
// doses, and bathroom events.
package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/bedside-care/bedside/internal/models"
)

// DayStats is one calendar day's aggregated care activity
type DayStats struct {
	Date        string  `json:"date"` // local calendar date, YYYY-MM-DD
	LiquidsMl   int     `json:"liquids_ml"`
	MealPercent float64 `json:"meal_percent"`
	Medications int     `json:"medications"`
	Bathroom    int     `json:"bathroom"`
}

// Report carries the day series plus the overall average of each series
// across all days present in the input.
type Report struct {
	Days           []DayStats `json:"days"`
	AvgLiquidsMl   float64    `json:"avg_liquids_ml"`
	AvgMealPercent float64    `json:"avg_meal_percent"`
	AvgMedications float64    `json:"avg_medications"`
	AvgBathroom    float64    `json:"avg_bathroom"`
}

type dayAccum struct {
	liquids     int
	mealSum     int
	mealCount   int
	medications int
	bathroom    int
}

// Aggregate buckets events into per-day stats. Pure function: same input,
// same output. Days are keyed by the event's calendar date in loc; a nil
// loc uses the system local zone, matching the original client-local
// bucketing.
func Aggregate(events []models.CareEvent, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}

	buckets := make(map[string]*dayAccum)
	for _, e := range events {
		day := e.OccurredAt.In(loc).Format("2006-01-02")
		acc, ok := buckets[day]
		if !ok {
			acc = &dayAccum{}
			buckets[day] = acc
		}

		switch classify(e) {
		case models.EventDrink:
			if e.VolumeMl != nil {
				acc.liquids += *e.VolumeMl
			}
		case models.EventMeal:
			if e.MealPercent != nil {
				acc.mealSum += *e.MealPercent
				acc.mealCount++
			}
		case models.EventMed:
			acc.medications++
		case models.EventBathroom:
			acc.bathroom++
		}
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	report := Report{Days: make([]DayStats, 0, len(days))}
	var liquidsTotal, mealTotal, medTotal, bathroomTotal float64
	for _, day := range days {
		acc := buckets[day]
		stats := DayStats{
			Date:        day,
			LiquidsMl:   acc.liquids,
			Medications: acc.medications,
			Bathroom:    acc.bathroom,
		}
		if acc.mealCount > 0 {
			stats.MealPercent = float64(acc.mealSum) / float64(acc.mealCount)
		}
		report.Days = append(report.Days, stats)

		liquidsTotal += float64(acc.liquids)
		mealTotal += stats.MealPercent
		medTotal += float64(acc.medications)
		bathroomTotal += float64(acc.bathroom)
	}

	if n := float64(len(days)); n > 0 {
		report.AvgLiquidsMl = liquidsTotal / n
		report.AvgMealPercent = mealTotal / n
		report.AvgMedications = medTotal / n
		report.AvgBathroom = bathroomTotal / n
	}
	return report
}

// classify routes an event into a series. When the stored type is missing or
// unrecognized, fall back to scanning the free-text notes for the keywords
// caregivers actually write. Drain ("dreno") output lands in the liquid
// series alongside drinks.
func classify(e models.CareEvent) models.EventType {
	switch e.Type {
	case models.EventDrink, models.EventMeal, models.EventMed, models.EventBathroom:
		return e.Type
	}

	if e.Notes == nil {
		return models.EventNote
	}
	notes := strings.ToLower(*e.Notes)
	switch {
	case strings.Contains(notes, "líquido"), strings.Contains(notes, "liquido"), strings.Contains(notes, "dreno"):
		return models.EventDrink
	case strings.Contains(notes, "medicamento"):
		return models.EventMed
	}
	return models.EventNote
}
