package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/semesterdesk/core/internal/domain/entities"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
	"github.com/semesterdesk/core/internal/ports"
)

// NoteService handles note CRUD.
type NoteService struct {
	noteRepo ports.NoteRepository
	logger   *logger.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(noteRepo ports.NoteRepository, logger *logger.Logger) *NoteService {
	return &NoteService{noteRepo: noteRepo, logger: logger}
}

// CreateNote creates a note; the kind string is coerced into the
// closed set.
func (s *NoteService) CreateNote(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	note := &entities.Note{
		ID:      uuid.New(),
		Kind:    entities.ParseNoteKind(req.Kind),
		RefID:   req.RefID,
		Content: req.Content,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	s.logger.Infow("Note created", "note_id", note.ID, "kind", note.Kind)
	return note, nil
}

// UpdateNote replaces a note's content.
func (s *NoteService) UpdateNote(ctx context.Context, id uuid.UUID, req ports.UpdateNoteRequest) (*entities.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// DeleteNote deletes a note.
func (s *NoteService) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if err := s.noteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ListNotes retrieves notes with optional kind/reference filtering.
func (s *NoteService) ListNotes(ctx context.Context, filter ports.NoteFilter) ([]*entities.Note, error) {
	notes, err := s.noteRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// StudyService records and reports focus-timer sessions.
type StudyService struct {
	sessionRepo ports.StudySessionRepository
	logger      *logger.Logger
}

// NewStudyService creates a new study service.
func NewStudyService(sessionRepo ports.StudySessionRepository, logger *logger.Logger) *StudyService {
	return &StudyService{sessionRepo: sessionRepo, logger: logger}
}

// RecordSession stores one completed timer block.
func (s *StudyService) RecordSession(ctx context.Context, req ports.CreateStudySessionRequest) (*entities.StudySession, error) {
	session := &entities.StudySession{
		ID:              uuid.New(),
		CourseID:        req.CourseID,
		StartedAt:       time.Now(),
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record study session: %w", err)
	}
	s.logger.Infow("Study session recorded", "session_id", session.ID, "minutes", session.DurationMinutes)
	return session, nil
}

// RecentSessions lists sessions from the trailing window of days.
func (s *StudyService) RecentSessions(ctx context.Context, days int) ([]*entities.StudySession, error) {
	if days <= 0 {
		days = 7
	}
	sessions, err := s.sessionRepo.ListSince(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return sessions, nil
}
