package services

import (
	"testing"
	"time"

	"breakdesk/models"

	"github.com/stretchr/testify/assert"
)

func completedBreak(breakType models.BreakType, start time.Time, minutes int) models.BreakRequest {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return models.BreakRequest{
		Type:      breakType,
		Status:    models.BreakCompleted,
		StartedAt: &start,
		EndedAt:   &end,
	}
}

func TestSummarizeEntitlementsPoolsByType(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	morning := now.Add(-5 * time.Hour)

	requests := []models.BreakRequest{
		completedBreak(models.BreakCoffee, morning, 10),
		completedBreak(models.BreakWC, morning.Add(time.Hour), 5),
		completedBreak(models.BreakLunch, morning.Add(2*time.Hour), 40),
	}

	ent := summarizeEntitlements(requests, 30, 60, now)

	assert.Equal(t, 15, ent.MicroUsed, "coffee and wc share the micro pool")
	assert.Equal(t, 40, ent.LunchUsed)
	assert.Equal(t, 15, ent.MicroRemaining)
	assert.Equal(t, 20, ent.LunchRemaining)
	assert.False(t, ent.OverLimit)
}

func TestSummarizeEntitlementsOpenBreakChargedToNow(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	start := now.Add(-12 * time.Minute)

	requests := []models.BreakRequest{
		{Type: models.BreakCoffee, Status: models.BreakActive, StartedAt: &start},
	}

	ent := summarizeEntitlements(requests, 30, 60, now)

	assert.Equal(t, 12, ent.MicroUsed)
	assert.Equal(t, 18, ent.MicroRemaining)
}

func TestSummarizeEntitlementsSkipsDeniedAndUnstarted(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	start := now.Add(-20 * time.Minute)

	requests := []models.BreakRequest{
		{Type: models.BreakCoffee, Status: models.BreakDenied, StartedAt: &start, EndedAt: &now},
		{Type: models.BreakLunch, Status: models.BreakPending},
		{Type: models.BreakLunch, Status: models.BreakApproved},
	}

	ent := summarizeEntitlements(requests, 30, 60, now)

	assert.Zero(t, ent.MicroUsed)
	assert.Zero(t, ent.LunchUsed)
	assert.Equal(t, 30, ent.MicroRemaining)
	assert.Equal(t, 60, ent.LunchRemaining)
}

// An instant-approved break left open can run a pool past its limit.
// The overage is reported, not silently capped: used keeps counting,
// remaining clamps at zero, and OverLimit flags the case.
func TestSummarizeEntitlementsInstantApprovalOverage(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	start := now.Add(-45 * time.Minute)

	requests := []models.BreakRequest{
		{Type: models.BreakWC, Status: models.BreakActive, StartedAt: &start},
	}

	ent := summarizeEntitlements(requests, 30, 60, now)

	assert.Equal(t, 45, ent.MicroUsed)
	assert.Equal(t, 0, ent.MicroRemaining)
	assert.True(t, ent.OverLimit)

	// The next micro request must fail the pool gate.
	res := evaluateEligibility(eligibilityInput{
		IntervalOpen:       true,
		TookBreakThisShift: true,
		WorkDuration:       6 * time.Hour,
		MinWorkDuration:    time.Hour,
		Type:               models.BreakCoffee,
		Entitlement:        ent,
	})
	assert.False(t, res.CanRequest)
	assert.Equal(t, ReasonMicroExhausted, res.Reason)
}
