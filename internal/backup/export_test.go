package backup

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

func TestExportWritesOneFilePerItem(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	defer db.Close()

	pipeline := writepipeline.New(db, noop.New(), 8)
	ctx := context.Background()

	content := "body text"
	item, err := pipeline.Create(ctx, &itemmodel.CreateRequest{
		Type: "note", Title: "exportable", Status: "Open", Priority: "MEDIUM",
		Content: &content, Tags: []string{"archive"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "export-out")
	result, err := Export(ctx, db, outDir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if result.ItemCount != 1 {
		t.Errorf("expected ItemCount 1, got %d", result.ItemCount)
	}
	if result.RunID == "" {
		t.Error("expected a non-empty RunID")
	}

	expectedPath := filepath.Join(outDir, "1-note.md")
	data, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("expected export file at %s: %v", expectedPath, err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Error("exported file should start with a YAML front-matter block")
	}
	if !strings.Contains(text, "title: exportable") {
		t.Errorf("front matter should contain the item's title, got:\n%s", text)
	}
	if !strings.Contains(text, "id: "+strconv.FormatInt(item.ID, 10)) {
		t.Errorf("front matter should contain the item's id, got:\n%s", text)
	}
	if !strings.HasSuffix(text, content+"\n") {
		t.Errorf("expected body to end with the item's content, got:\n%s", text)
	}
}
