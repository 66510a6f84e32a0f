package reports

import (
	"testing"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

func event(day time.Time, typ models.EventType) models.CareEvent {
	return models.CareEvent{
		ID:         "e-" + day.Format("150405.000000000") + string(typ),
		PatientID:  "p1",
		Type:       typ,
		OccurredAt: day,
	}
}

func TestAggregateVolumeAndDoses(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	drink1 := event(day, models.EventDrink)
	drink1.VolumeMl = intp(200)
	drink2 := event(day.Add(4*time.Hour), models.EventDrink)
	drink2.VolumeMl = intp(300)
	med := event(day.Add(time.Hour), models.EventMed)
	med.MedName = strp("dipyrone")

	report := Aggregate([]models.CareEvent{drink1, drink2, med}, time.UTC)
	require.Len(t, report.Days, 1)
	assert.Equal(t, "2025-03-10", report.Days[0].Date)
	assert.Equal(t, 500, report.Days[0].LiquidsMl)
	assert.Equal(t, 1, report.Days[0].Medications)
}

func TestAggregateMealsAndBathroom(t *testing.T) {
	day := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	meal1 := event(day, models.EventMeal)
	meal1.MealPercent = intp(100)
	meal2 := event(day.Add(6*time.Hour), models.EventMeal)
	meal2.MealPercent = intp(50)
	bathroom := event(day.Add(2*time.Hour), models.EventBathroom)

	report := Aggregate([]models.CareEvent{meal1, meal2, bathroom}, time.UTC)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 75.0, report.Days[0].MealPercent)
	assert.Equal(t, 1, report.Days[0].Bathroom)
}

func TestAggregateOverallAverages(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	d1 := event(day1, models.EventDrink)
	d1.VolumeMl = intp(400)
	d2 := event(day2, models.EventDrink)
	d2.VolumeMl = intp(600)
	m1 := event(day1, models.EventMed)
	m1.MedName = strp("dipyrone")

	report := Aggregate([]models.CareEvent{d1, d2, m1}, time.UTC)
	require.Len(t, report.Days, 2)
	assert.Equal(t, 500.0, report.AvgLiquidsMl)
	assert.Equal(t, 0.5, report.AvgMedications)
}

func TestAggregateIsPure(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	d := event(day, models.EventDrink)
	d.VolumeMl = intp(250)
	events := []models.CareEvent{d, event(day, models.EventBathroom)}

	first := Aggregate(events, time.UTC)
	second := Aggregate(events, time.UTC)
	assert.Equal(t, first, second)
}

func TestAggregateKeywordFallback(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// untyped events classified by their free-text notes
	liquid := event(day, "")
	liquid.VolumeMl = intp(150)
	liquid.Notes = strp("ofrecido líquido por sonda")
	drain := event(day.Add(time.Hour), "")
	drain.VolumeMl = intp(80)
	drain.Notes = strp("salida de dreno")
	med := event(day.Add(2*time.Hour), "")
	med.Notes = strp("medicamento administrado")
	noise := event(day.Add(3*time.Hour), "")
	noise.Notes = strp("visita familiar")

	report := Aggregate([]models.CareEvent{liquid, drain, med, noise}, time.UTC)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 230, report.Days[0].LiquidsMl)
	assert.Equal(t, 1, report.Days[0].Medications)
}

func TestAggregateBucketsByLocalDate(t *testing.T) {
	// 23:30 UTC on the 10th is already the 11th in UTC+3
	loc := time.FixedZone("UTC+3", 3*60*60)
	d := event(time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), models.EventDrink)
	d.VolumeMl = intp(100)

	report := Aggregate([]models.CareEvent{d}, loc)
	require.Len(t, report.Days, 1)
	assert.Equal(t, "2025-03-11", report.Days[0].Date)
}

func TestAggregateEmptyInput(t *testing.T) {
	report := Aggregate(nil, time.UTC)
	assert.Empty(t, report.Days)
	assert.Zero(t, report.AvgLiquidsMl)
}
