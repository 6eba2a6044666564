package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"school_schedule_bot/internal/domain/reminder"
	"school_schedule_bot/internal/domain/schedule"
	"school_schedule_bot/internal/domain/user"
	idb "school_schedule_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// --- fakes ---

type fakeScheduleRepo struct {
	lessons map[int][]*schedule.Lesson
	bells   map[int]*schedule.BellTime

	listForDayCalls int
	getBellCalls    int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		lessons: make(map[int][]*schedule.Lesson),
		bells:   make(map[int]*schedule.BellTime),
	}
}

func (r *fakeScheduleRepo) UpsertLesson(_ context.Context, l *schedule.Lesson) error {
	existing := r.lessons[l.DayOfWeek]
	for i, stored := range existing {
		if stored.LessonNumber == l.LessonNumber {
			existing[i] = l
			return nil
		}
	}
	r.lessons[l.DayOfWeek] = append(existing, l)
	return nil
}

func (r *fakeScheduleRepo) DeleteLesson(_ context.Context, dayOfWeek, lessonNumber int) (bool, error) {
	existing := r.lessons[dayOfWeek]
	for i, stored := range existing {
		if stored.LessonNumber == lessonNumber {
			r.lessons[dayOfWeek] = append(existing[:i], existing[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepo) ListForDay(_ context.Context, dayOfWeek int) ([]*schedule.Lesson, error) {
	r.listForDayCalls++
	return r.lessons[dayOfWeek], nil
}

func (r *fakeScheduleRepo) ListWeek(_ context.Context) ([]*schedule.Lesson, error) {
	var all []*schedule.Lesson
	for day := 1; day <= 7; day++ {
		all = append(all, r.lessons[day]...)
	}
	return all, nil
}

func (r *fakeScheduleRepo) UpsertBellTime(_ context.Context, b *schedule.BellTime) error {
	r.bells[b.LessonNumber] = b
	return nil
}

func (r *fakeScheduleRepo) GetBellTime(_ context.Context, lessonNumber int) (*schedule.BellTime, error) {
	r.getBellCalls++
	bell, ok := r.bells[lessonNumber]
	if !ok {
		return nil, idb.ErrBellTimeNotFound
	}
	return bell, nil
}

func (r *fakeScheduleRepo) ListBellTimes(_ context.Context) ([]*schedule.BellTime, error) {
	var all []*schedule.BellTime
	for n := 1; n <= 10; n++ {
		if bell, ok := r.bells[n]; ok {
			all = append(all, bell)
		}
	}
	return all, nil
}

type fakeUserRepo struct {
	subscribers     []*user.Subscriber
	subscriberCalls int
}

func (r *fakeUserRepo) SetRemindersEnabled(context.Context, int64, bool) error { return nil }
func (r *fakeUserRepo) SetReminderMinutes(context.Context, int64, int) error   { return nil }
func (r *fakeUserRepo) Get(context.Context, int64) (*user.Preference, error) {
	return nil, idb.ErrPreferenceNotFound
}

func (r *fakeUserRepo) ListSubscribers(context.Context) ([]*user.Subscriber, error) {
	r.subscriberCalls++
	return r.subscribers, nil
}

type fakeLedger struct {
	sent         map[reminder.Key]bool
	cleanupCalls []int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{sent: make(map[reminder.Key]bool)}
}

func (l *fakeLedger) AlreadySent(_ context.Context, key reminder.Key) (bool, error) {
	return l.sent[key], nil
}

func (l *fakeLedger) MarkSent(_ context.Context, key reminder.Key) error {
	l.sent[key] = true
	return nil
}

func (l *fakeLedger) Cleanup(_ context.Context, retainDays int) error {
	l.cleanupCalls = append(l.cleanupCalls, retainDays)
	return nil
}

type sentMessage struct {
	userID int64
	text   string
}

type fakeNotifier struct {
	sent    []sentMessage
	failFor map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[int64]bool)}
}

func (n *fakeNotifier) SendMessage(recipientChatID int64, text string, _ *telebot.SendOptions) error {
	if n.failFor[recipientChatID] {
		return fmt.Errorf("telegram unreachable")
	}
	n.sent = append(n.sent, sentMessage{userID: recipientChatID, text: text})
	return nil
}

// --- helpers ---

type reminderFixture struct {
	service  *ReminderService
	schedule *fakeScheduleRepo
	users    *fakeUserRepo
	ledger   *fakeLedger
	notifier *fakeNotifier
	loc      *time.Location
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Qyzylorda")
	require.NoError(t, err)

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	f := &reminderFixture{
		schedule: newFakeScheduleRepo(),
		users:    &fakeUserRepo{},
		ledger:   newFakeLedger(),
		notifier: newFakeNotifier(),
		loc:      loc,
	}
	f.service = NewReminderService(f.schedule, f.users, f.ledger, f.notifier, logrus.NewEntry(discard), loc, 14)
	return f
}

func (f *reminderFixture) setNow(t time.Time) {
	f.service.now = func() time.Time { return t }
}

func lessonAt(day, number int, subject, start, end string) *schedule.Lesson {
	l := &schedule.Lesson{
		DayOfWeek:    day,
		LessonNumber: number,
		Subject:      subject,
	}
	if start != "" {
		l.StartTime = sql.NullString{String: start, Valid: true}
	}
	if end != "" {
		l.EndTime = sql.NullString{String: end, Valid: true}
	}
	return l
}

// monday returns a fixed Monday (2025-06-02) at the given local time.
func (f *reminderFixture) monday(hour, minute, second int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, second, 0, f.loc)
}

// --- tests ---

func TestCheckOnce_EndToEnd(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, int64(42), f.notifier.sent[0].userID)
	assert.Contains(t, f.notifier.sent[0].text, "Math")
	assert.Contains(t, f.notifier.sent[0].text, "10")

	// Second tick 30 seconds later, still inside the window: the ledger
	// suppresses a duplicate.
	f.setNow(f.monday(8, 50, 30))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	assert.Len(t, f.notifier.sent, 1)
}

func TestCheckOnce_WindowBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		now        time.Time
		shouldFire bool
	}{
		{"one second before the target", time.Time{}, false},
		{"exactly at the target", time.Time{}, true},
		{"last eligible second", time.Time{}, true},
		{"window closed", time.Time{}, false},
	}

	// lesson at 08:30, lead time 10 → target 08:20, window [08:20:00, 08:20:59)
	times := []struct {
		hour, minute, second int
	}{
		{8, 19, 59},
		{8, 20, 0},
		{8, 20, 58},
		{8, 21, 0},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newReminderFixture(t)
			f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "08:30", "09:15")}
			f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

			at := times[i]
			f.setNow(f.monday(at.hour, at.minute, at.second))
			require.NoError(t, f.service.CheckOnce(context.Background()))

			if tc.shouldFire {
				assert.Len(t, f.notifier.sent, 1)
			} else {
				assert.Empty(t, f.notifier.sent)
			}
		})
	}
}

func TestCheckOnce_WindowUpperBoundExcluded(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "08:30", "09:15")}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	// 59 seconds after the target: just past the half-open window.
	f.setNow(f.monday(8, 20, 59))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	assert.Empty(t, f.notifier.sent)
}

func TestCheckOnce_WeekendSkip(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[6] = []*schedule.Lesson{lessonAt(6, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	// 2025-06-07 is a Saturday, 2025-06-08 a Sunday.
	for _, day := range []int{7, 8} {
		f.setNow(time.Date(2025, 6, day, 8, 50, 0, 0, f.loc))
		require.NoError(t, f.service.CheckOnce(context.Background()))
	}

	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, f.schedule.listForDayCalls, "weekend ticks must not read the store")
	assert.Zero(t, f.users.subscriberCalls)
	assert.Empty(t, f.ledger.cleanupCalls)
}

func TestCheckOnce_BellTimeFallback(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 2, "Physics", "", "")}
	f.schedule.bells[2] = &schedule.BellTime{LessonNumber: 2, StartTime: "09:00", EndTime: "09:45"}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "Physics")
}

func TestCheckOnce_LessonWithoutAnchorSkipped(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{
		lessonAt(1, 1, "Unanchored", "", ""), // no start time, no bell
		lessonAt(1, 2, "History", "09:00", "09:45"),
	}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	// The anchor-less lesson is a data gap, not an error; the rest of the
	// tick proceeds.
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "History")
}

func TestCheckOnce_DispatchFailureNotRecorded(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}
	f.notifier.failFor[42] = true

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.ledger.sent, "a failed dispatch must not be recorded")

	// Transport recovers within the window: the next tick retries.
	f.notifier.failFor[42] = false
	f.setNow(f.monday(8, 50, 30))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	assert.Len(t, f.notifier.sent, 1)
}

func TestCheckOnce_DispatchFailureDoesNotAbortOthers(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{
		{UserID: 41, ReminderMinutes: 10},
		{UserID: 42, ReminderMinutes: 10},
	}
	f.notifier.failFor[41] = true

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, int64(42), f.notifier.sent[0].userID)
}

func TestCheckOnce_PerSubscriberLeadTime(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{
		{UserID: 41, ReminderMinutes: 10}, // target 08:50
		{UserID: 42, ReminderMinutes: 30}, // target 08:30
	}

	f.setNow(f.monday(8, 30, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, int64(42), f.notifier.sent[0].userID)

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))
	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, int64(41), f.notifier.sent[1].userID)
}

func TestCheckOnce_CleanupRunsAfterScan(t *testing.T) {
	f := newReminderFixture(t)
	f.schedule.lessons[1] = []*schedule.Lesson{lessonAt(1, 1, "Math", "09:00", "09:45")}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(12, 0, 0)) // far from any window, nothing fires
	require.NoError(t, f.service.CheckOnce(context.Background()))

	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, []int{14}, f.ledger.cleanupCalls)
}

func TestCheckOnce_EmptyScheduleSkips(t *testing.T) {
	f := newReminderFixture(t)
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	assert.Empty(t, f.notifier.sent)
	assert.Zero(t, f.users.subscriberCalls, "subscribers are not loaded when the day is empty")
}

func TestCheckOnce_OnlineLessonLocation(t *testing.T) {
	f := newReminderFixture(t)
	lesson := lessonAt(1, 1, "Informatics", "09:00", "09:45")
	lesson.IsOnline = true
	f.schedule.lessons[1] = []*schedule.Lesson{lesson}
	f.users.subscribers = []*user.Subscriber{{UserID: 42, ReminderMinutes: 10}}

	f.setNow(f.monday(8, 50, 0))
	require.NoError(t, f.service.CheckOnce(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "онлайн")
}
