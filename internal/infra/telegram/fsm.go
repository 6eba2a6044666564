package telegram

import (
	"sync"

	"school_schedule_bot/internal/app"
)

// FlowState names one step of a multi-step administrative conversation.
type FlowState string

const (
	StateIdle FlowState = ""

	StateAddDay          FlowState = "add_lesson/day"
	StateAddLessonNumber FlowState = "add_lesson/lesson_number"
	StateAddSubject      FlowState = "add_lesson/subject"
	StateAddRoom         FlowState = "add_lesson/room"
	StateAddOnline       FlowState = "add_lesson/online"
	StateAddStartTime    FlowState = "add_lesson/start_time"
	StateAddEndTime      FlowState = "add_lesson/end_time"
	StateAddTeacher      FlowState = "add_lesson/teacher"

	StateDeleteDay          FlowState = "delete_lesson/day"
	StateDeleteLessonNumber FlowState = "delete_lesson/lesson_number"

	StateBellsLessonNumber FlowState = "set_bells/lesson_number"
	StateBellsStartTime    FlowState = "set_bells/start_time"
	StateBellsEndTime      FlowState = "set_bells/end_time"
)

// previousState maps each flow step to the one before it; the first step of
// every flow maps to StateIdle. Drives the "Назад" button.
func previousState(state FlowState) FlowState {
	switch state {
	case StateAddLessonNumber:
		return StateAddDay
	case StateAddSubject:
		return StateAddLessonNumber
	case StateAddRoom:
		return StateAddSubject
	case StateAddOnline:
		return StateAddRoom
	case StateAddStartTime:
		return StateAddOnline
	case StateAddEndTime:
		return StateAddStartTime
	case StateAddTeacher:
		return StateAddEndTime
	case StateDeleteLessonNumber:
		return StateDeleteDay
	case StateBellsStartTime:
		return StateBellsLessonNumber
	case StateBellsEndTime:
		return StateBellsStartTime
	default:
		return StateIdle
	}
}

// Session is the typed accumulator of one admin's active flow.
type Session struct {
	State FlowState

	// Add/delete lesson accumulator.
	Lesson app.LessonInput

	// Set-bells accumulator.
	BellLessonNumber int
	BellStartTime    string
}

// SessionStore holds the per-admin conversation state. Handlers run on
// concurrent update goroutines, so access is serialized.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// State returns the current flow state for a user, StateIdle when none.
func (s *SessionStore) State(userID int64) FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		return session.State
	}
	return StateIdle
}

// Update applies fn to the user's session, creating it when absent.
func (s *SessionStore) Update(userID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		session = &Session{}
		s.sessions[userID] = session
	}
	fn(session)
}

// Snapshot returns a copy of the user's session.
func (s *SessionStore) Snapshot(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		return *session
	}
	return Session{}
}

// Clear drops the user's session, ending any active flow.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Begin resets the session to the first step of a flow with an empty
// accumulator.
func (s *SessionStore) Begin(userID int64, state FlowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = &Session{State: state}
}
