package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/itchyny/json2yaml"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
	"github.com/aliskhannn/lingo-spark-bot/internal/export"
	"github.com/aliskhannn/lingo-spark-bot/internal/service"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newHistoryCmd() *cobra.Command {
	var (
		userID int64
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a user's stored lessons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			history, err := e.store.LoadHistory(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), userID, history, format, time.Now())
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "telegram user id")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

// writeHistory prints the lessons with an export header in JSON or YAML.
func writeHistory(w io.Writer, userID int64, history entities.History, format string, now time.Time) error {
	if history == nil {
		history = entities.History{}
	}

	data, err := json.Marshal(map[string]any{"lessons": history})
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	meta := []struct {
		path  string
		value any
	}{
		{"meta.user_id", userID},
		{"meta.count", len(history)},
		{"meta.exported_at", now.UTC().Format(time.RFC3339)},
	}
	for _, m := range meta {
		if data, err = sjson.SetBytes(data, m.path, m.value); err != nil {
			return fmt.Errorf("set %s: %w", m.path, err)
		}
	}

	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(w)
		return err
	case formatYAML:
		return json2yaml.Convert(w, bytes.NewReader(data))
	default:
		return fmt.Errorf("unknown format %q, want json or yaml", format)
	}
}

func newStatsCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's streak and XP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := e.store.LoadStats(cmd.Context(), userID)
			if err != nil {
				return err
			}
			history, err := e.store.LoadHistory(cmd.Context(), userID)
			if err != nil {
				return err
			}
			theme, err := e.store.LoadTheme(cmd.Context(), userID)
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), stats, len(history), theme, time.Now())
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "telegram user id")
	return cmd
}

func printStats(w io.Writer, stats entities.UserStats, lessons int, theme entities.Theme, now time.Time) {
	rank, xpInRank := stats.Rank()

	color.New(color.FgHiCyan).Fprintf(w, "🔥 streak   %d\n", stats.Streak)
	color.New(color.FgWhite).Fprintf(w, "⭐ xp       %d (rank %d, %d into it)\n", stats.XP, rank, xpInRank)
	color.New(color.FgWhite).Fprintf(w, "🎚 level    %s\n", stats.Level)
	color.New(color.FgWhite).Fprintf(w, "📚 lessons  %d\n", lessons)
	color.New(color.FgWhite).Fprintf(w, "🎨 theme    %s\n", theme)

	switch {
	case stats.LastLessonAt == nil:
		color.New(color.FgYellow).Fprintln(w, "⚠️ no lesson generated yet")
	case stats.LessonToday(now):
		color.New(color.FgGreen).Fprintf(w, "✅ lesson today at %s\n", stats.LastLessonAt.UTC().Format(time.Kitchen))
	default:
		color.New(color.FgYellow).Fprintf(w, "⚠️ last lesson %s\n", stats.LastLessonAt.UTC().Format(time.DateOnly))
	}
}

func newExportCmd() *cobra.Command {
	var (
		userID   int64
		lessonID string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a stored lesson to PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			if lessonID == "" {
				return fmt.Errorf("--lesson is required")
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			exports := service.NewExportService(e.store, export.NewRenderer(export.DefaultOptions()))
			doc, err := exports.Export(cmd.Context(), userID, lessonID)
			if err != nil {
				return err
			}

			if out == "" {
				out = doc.Name
			}
			if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✨ wrote %s (%d bytes)\n", out, len(doc.Data))
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "telegram user id")
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson id from history")
	cmd.Flags().StringVar(&out, "out", "", "output file, defaults to the lesson's file name")
	return cmd
}
