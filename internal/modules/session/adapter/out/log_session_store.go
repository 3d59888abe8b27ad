package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"nadi/internal/modules/session/domain"
	"nadi/internal/platform/markdown"
	"nadi/internal/platform/slug"
)

// LogSessionStore writes one markdown note per finished session under
// <sessionsPath>/YYYY/MM/DD/, and can scan them back to rebuild the history
// projection.
type LogSessionStore struct {
	sessionsPath string
}

func NewLogSessionStore(sessionsPath string) *LogSessionStore {
	return &LogSessionStore{sessionsPath: sessionsPath}
}

func (s *LogSessionStore) Save(_ context.Context, record domain.Record) (string, error) {
	date := record.StartedAt
	dir := filepath.Join(s.sessionsPath, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	outcome := "stopped early"
	if record.Completed {
		outcome = "completed"
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(outcome))
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"schema_version":  domain.SchemaVersion,
		"id":              record.ID,
		"started_at":      record.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		"ended_at":        record.EndedAt.Format("2006-01-02T15:04:05Z07:00"),
		"elapsed_seconds": record.ElapsedSeconds,
		"cycle_count":     record.CycleCount,
		"final_score":     record.FinalScore,
		"breath_seconds":  record.BreathSeconds,
		"session_seconds": record.SessionSeconds,
		"completed":       record.Completed,
	}
	score := "unknown"
	if record.FinalScore >= 0 {
		score = fmt.Sprintf("%d", record.FinalScore)
	}
	body := fmt.Sprintf("# Breathing Session\n\n- Outcome: %s\n- Practiced: %dm %02ds of %dm\n- Cycles: %d\n- Posture score: %s\n",
		outcome,
		record.ElapsedSeconds/60, record.ElapsedSeconds%60,
		record.SessionSeconds/60,
		record.CycleCount,
		score,
	)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

// Scan walks the session notes and rebuilds records from their frontmatter.
// Notes that fail to parse are skipped rather than aborting the whole scan.
func (s *LogSessionStore) Scan(_ context.Context) ([]domain.Record, error) {
	var records []domain.Record
	err := filepath.WalkDir(s.sessionsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read session note: %w", err)
		}
		meta, _, err := markdown.SplitFrontmatter(string(payload))
		if err != nil {
			return nil
		}
		record, ok := recordFromMeta(meta)
		if !ok {
			return nil
		}
		record.NotePath = path
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan session notes: %w", err)
	}
	return records, nil
}

func recordFromMeta(meta map[string]any) (domain.Record, bool) {
	id, _ := meta["id"].(string)
	if id == "" {
		return domain.Record{}, false
	}
	startedAt, err := timeFrom(meta["started_at"])
	if err != nil {
		return domain.Record{}, false
	}
	endedAt, err := timeFrom(meta["ended_at"])
	if err != nil {
		return domain.Record{}, false
	}
	completed, _ := meta["completed"].(bool)
	return domain.Record{
		ID:             id,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		ElapsedSeconds: intFrom(meta["elapsed_seconds"]),
		CycleCount:     intFrom(meta["cycle_count"]),
		FinalScore:     intFrom(meta["final_score"]),
		BreathSeconds:  intFrom(meta["breath_seconds"]),
		SessionSeconds: intFrom(meta["session_seconds"]),
		Completed:      completed,
	}, true
}

func timeFrom(value any) (time.Time, error) {
	text, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("not a timestamp: %v", value)
	}
	return time.Parse("2006-01-02T15:04:05Z07:00", text)
}

func intFrom(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
