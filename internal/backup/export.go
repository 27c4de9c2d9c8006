// Package backup exports knowledge base items to one markdown file per
// item, a YAML front-matter block of scalar fields followed by the
// content field as body — the "Persisted state layout" the spec describes
// for external archival. Import is explicitly out of scope.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
)

// FrontMatter is the scalar-field block written at the top of each
// exported item's markdown file.
type FrontMatter struct {
	ID          int64    `yaml:"id"`
	Type        string   `yaml:"type"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority"`
	Version     string   `yaml:"version,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	StartDate   string   `yaml:"start_date,omitempty"`
	EndDate     string   `yaml:"end_date,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	CreatedAt   string   `yaml:"created_at"`
	UpdatedAt   string   `yaml:"updated_at"`
}

// Result summarizes one export run.
type Result struct {
	RunID      string
	Dir        string
	ItemCount  int
	ExportedAt time.Time
}

// Export writes every item in the knowledge base to dir as one markdown
// file per item, named "<id>-<type>.md". It does not touch existing files
// outside that naming pattern.
func Export(ctx context.Context, db *store.Store, dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	items, err := store.ListItems(ctx, db.DB(), &store.ItemFilters{})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	for _, item := range items {
		if err := exportItem(ctx, db, dir, item); err != nil {
			return nil, fmt.Errorf("export item %d: %w", item.ID, err)
		}
	}

	return &Result{
		RunID:     uuid.New().String(),
		Dir:       dir,
		ItemCount: len(items),
	}, nil
}

func exportItem(ctx context.Context, db *store.Store, dir string, item *store.Item) error {
	tags, err := store.GetItemTags(ctx, db.DB(), item.ID)
	if err != nil {
		return err
	}

	fm := FrontMatter{
		ID:        item.ID,
		Type:      item.Type,
		Title:     item.Title,
		Status:    item.StatusName,
		Priority:  string(item.Priority),
		Tags:      tags,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
	if item.Description != nil {
		fm.Description = *item.Description
	}
	if item.Version != nil {
		fm.Version = *item.Version
	}
	if item.Category != nil {
		fm.Category = *item.Category
	}
	if item.StartDate != nil {
		fm.StartDate = item.StartDate.Format("2006-01-02")
	}
	if item.EndDate != nil {
		fm.EndDate = item.EndDate.Format("2006-01-02")
	}

	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}

	var body string
	if item.Content != nil {
		body = *item.Content
	}

	var buf strings.Builder
	buf.WriteString("---\n")
	buf.Write(fmBytes)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}

	path := filepath.Join(dir, fmt.Sprintf("%d-%s.md", item.ID, sanitizeType(item.Type)))
	return os.WriteFile(path, []byte(buf.String()), 0o644)
}

func sanitizeType(t string) string {
	return strings.ReplaceAll(t, "/", "_")
}
