package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

type stubRenderer struct {
	theme entities.Theme
}

func (r *stubRenderer) Render(w io.Writer, lesson *entities.Lesson, theme entities.Theme) error {
	r.theme = theme
	_, err := io.WriteString(w, lesson.ID)
	return err
}

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()
	store := newMemProgress()
	store.history[1] = entities.History{*testLesson("a")}
	store.themes[1] = entities.ThemeDark

	renderer := &stubRenderer{}
	svc := NewExportService(store, renderer)

	doc, err := svc.Export(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, "Lingo_Spark_Small_Talk_at_Work.pdf", doc.Name)
	assert.Equal(t, []byte("a"), doc.Data)
	assert.Equal(t, entities.ThemeDark, renderer.theme)

	_, err = svc.Export(ctx, 1, "b")
	assert.ErrorIs(t, err, ErrLessonNotFound)
}
