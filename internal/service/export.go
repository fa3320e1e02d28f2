package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/export"
)

// DocumentRenderer writes a lesson as a downloadable document.
type DocumentRenderer interface {
	Render(w io.Writer, lesson *entities.Lesson, theme entities.Theme) error
}

// Document is an exported lesson ready to send.
type Document struct {
	Name string
	Data []byte
}

type ExportService struct {
	store    ProgressStore
	renderer DocumentRenderer
}

func NewExportService(store ProgressStore, renderer DocumentRenderer) *ExportService {
	return &ExportService{store: store, renderer: renderer}
}

// Export renders a lesson from the user's history in the user's theme.
func (s *ExportService) Export(ctx context.Context, userID int64, lessonID string) (*Document, error) {
	history, err := s.store.LoadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	lesson, ok := history.Find(lessonID)
	if !ok {
		return nil, ErrLessonNotFound
	}

	theme, err := s.store.LoadTheme(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, lesson, theme); err != nil {
		return nil, fmt.Errorf("export lesson %s: %w", lessonID, err)
	}

	return &Document{Name: export.FileName(lesson), Data: buf.Bytes()}, nil
}
