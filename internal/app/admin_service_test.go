package app

import (
	"context"
	"testing"

	"school_schedule_bot/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID int64 = 100

func newAdminFixture() (*AdminService, *fakeScheduleRepo) {
	repo := newFakeScheduleRepo()
	return NewAdminService(repo, map[int64]bool{adminID: true}), repo
}

func TestUpsertLesson_ReplacesExistingSlot(t *testing.T) {
	svc, repo := newAdminFixture()
	ctx := context.Background()

	_, err := svc.UpsertLesson(ctx, adminID, LessonInput{
		DayOfWeek: 1, LessonNumber: 1, Subject: "Math", StartTime: "08:30", EndTime: "09:15",
	})
	require.NoError(t, err)

	_, err = svc.UpsertLesson(ctx, adminID, LessonInput{
		DayOfWeek: 1, LessonNumber: 1, Subject: "Physics", StartTime: "08:30", EndTime: "09:15",
	})
	require.NoError(t, err)

	lessons, err := repo.ListForDay(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lessons, 1, "same slot is replaced, not duplicated")
	assert.Equal(t, "Physics", lessons[0].Subject)
}

func TestUpsertLesson_Validation(t *testing.T) {
	svc, _ := newAdminFixture()
	ctx := context.Background()

	_, err := svc.UpsertLesson(ctx, 999, LessonInput{DayOfWeek: 1, LessonNumber: 1, Subject: "Math"})
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	_, err = svc.UpsertLesson(ctx, adminID, LessonInput{DayOfWeek: 8, LessonNumber: 1, Subject: "Math"})
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = svc.UpsertLesson(ctx, adminID, LessonInput{DayOfWeek: 1, LessonNumber: 11, Subject: "Math"})
	assert.ErrorIs(t, err, ErrInvalidLessonNumber)

	_, err = svc.UpsertLesson(ctx, adminID, LessonInput{DayOfWeek: 1, LessonNumber: 1, Subject: "   "})
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = svc.UpsertLesson(ctx, adminID, LessonInput{DayOfWeek: 1, LessonNumber: 1, Subject: "Math", StartTime: "25:00"})
	assert.ErrorIs(t, err, timeutil.ErrInvalidTimeFormat)
}

func TestDeleteLesson(t *testing.T) {
	svc, _ := newAdminFixture()
	ctx := context.Background()

	_, err := svc.UpsertLesson(ctx, adminID, LessonInput{DayOfWeek: 2, LessonNumber: 3, Subject: "Math"})
	require.NoError(t, err)

	deleted, err := svc.DeleteLesson(ctx, adminID, 2, 3)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteLesson(ctx, adminID, 2, 3)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting a missing lesson reports false")
}

func TestSetBellTime(t *testing.T) {
	svc, repo := newAdminFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetBellTime(ctx, adminID, 1, "08:30", "09:15"))

	bell, err := repo.GetBellTime(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "08:30", bell.StartTime)

	// Overwrite keeps a single row per slot.
	require.NoError(t, svc.SetBellTime(ctx, adminID, 1, "08:45", "09:30"))
	bell, err = repo.GetBellTime(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "08:45", bell.StartTime)

	err = svc.SetBellTime(ctx, adminID, 1, "8:30", "09:15")
	assert.ErrorIs(t, err, timeutil.ErrInvalidTimeFormat)

	err = svc.SetBellTime(ctx, 999, 1, "08:30", "09:15")
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
}

func TestPreferenceService(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewPreferenceService(userRepo)
	ctx := context.Background()

	// No stored row: defaults are synthesized, never persisted.
	pref, err := svc.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, pref.RemindersEnabled)
	assert.Equal(t, 10, pref.ReminderMinutes)

	assert.ErrorIs(t, svc.SetReminderMinutes(ctx, 42, 4), ErrInvalidReminderMinutes)
	assert.ErrorIs(t, svc.SetReminderMinutes(ctx, 42, 61), ErrInvalidReminderMinutes)
	assert.NoError(t, svc.SetReminderMinutes(ctx, 42, 5))
	assert.NoError(t, svc.SetReminderMinutes(ctx, 42, 60))
}
