package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSlots_Table(t *testing.T) {
	var out bytes.Buffer
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	err := runSlots(&out, slotsOptions{
		working:       "09:00 AM - 05:00 PM",
		checkup:       "09:00 AM - 03:00 PM",
		breakTime:     "01:00 PM",
		weekStart:     "2026-10-19",
		granularity:   60,
		breakDuration: 60,
		booked:        []string{"2026-10-19 10:00 AM"},
	}, now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 9) // заголовок и 8 слотов
	assert.Contains(t, lines[0], "Mon 19.10")
	assert.Contains(t, lines[0], "Sun 25.10")
	assert.True(t, strings.HasPrefix(lines[2], "10:00 AM"))
	assert.Contains(t, lines[2], "Booked")
	assert.Contains(t, lines[5], "Lunch Break")
	assert.Contains(t, lines[8], "No Schedule")
}

func TestRunSlots_MalformedSchedule(t *testing.T) {
	var out bytes.Buffer

	err := runSlots(&out, slotsOptions{
		working:       "05:00 PM - 09:00 AM",
		checkup:       "09:00 AM - 03:00 PM",
		breakTime:     "01:00 PM",
		granularity:   60,
		breakDuration: 60,
	}, time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "No Slots Available (2026-10-16 - 2026-10-22)")
}

func TestRunSlots_InvalidBooked(t *testing.T) {
	err := runSlots(&bytes.Buffer{}, slotsOptions{
		working:   "09:00 AM - 05:00 PM",
		checkup:   "09:00 AM - 03:00 PM",
		breakTime: "01:00 PM",
		booked:    []string{"tomorrow"},
	}, time.Now())
	assert.Error(t, err)
}
