package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich/noop"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewServer(Deps{
		DB:           db,
		Pipeline:     writepipeline.New(db, noop.New(), 8),
		SysState:     sysstate.New(db, 10*time.Second),
		EmbeddingDim: 8,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCreateGetAndListItem(t *testing.T) {
	s := newTestServer(t)

	createRec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": "task", "title": "ship the rest api",
	})
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", createRec.Code, createRec.Body.String())
	}

	var createBody Response
	if err := json.Unmarshal(createRec.Body.Bytes(), &createBody); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	data, ok := createBody.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected create data to be an object, got %T", createBody.Data)
	}
	if _, hasEmbedding := data["embedding"]; hasEmbedding {
		t.Error("create response must never expose the embedding field")
	}
	id := int64(data["id"].(float64))

	getRec := doJSON(t, s, http.MethodGet, "/api/v1/items/"+itoa(id), nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", getRec.Code, getRec.Body.String())
	}

	listRec := doJSON(t, s, http.MethodGet, "/api/v1/items", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", listRec.Code, listRec.Body.String())
	}
}

func TestGetUnknownItemReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/items/999999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateItemRejectsInvalidType(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": "Not Valid", "title": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d, body = %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestUpdateItemEmptyPayloadIsNoop(t *testing.T) {
	s := newTestServer(t)
	createRec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": "task", "title": "original",
	})
	var createBody Response
	json.Unmarshal(createRec.Body.Bytes(), &createBody)
	data := createBody.Data.(map[string]interface{})
	id := int64(data["id"].(float64))

	updateRec := doJSON(t, s, http.MethodPatch, "/api/v1/items/"+itoa(id), map[string]interface{}{})
	if updateRec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", updateRec.Code, updateRec.Body.String())
	}

	var updateBody Response
	json.Unmarshal(updateRec.Body.Bytes(), &updateBody)
	updated := updateBody.Data.(map[string]interface{})
	if updated["title"] != "original" {
		t.Errorf("empty update payload should not change the title, got %v", updated["title"])
	}
}

func TestDeleteItem(t *testing.T) {
	s := newTestServer(t)
	createRec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": "task", "title": "to delete",
	})
	var createBody Response
	json.Unmarshal(createRec.Body.Bytes(), &createBody)
	data := createBody.Data.(map[string]interface{})
	id := int64(data["id"].(float64))

	delRec := doJSON(t, s, http.MethodDelete, "/api/v1/items/"+itoa(id), nil)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", delRec.Code, delRec.Body.String())
	}

	getRec := doJSON(t, s, http.MethodGet, "/api/v1/items/"+itoa(id), nil)
	if getRec.Code != http.StatusNotFound {
		t.Errorf("expected item to be gone after delete, status = %d", getRec.Code)
	}
}

func TestRemoveRelationUndoesAddRelations(t *testing.T) {
	s := newTestServer(t)

	a := mustCreateItemREST(t, s, "task", "a")
	b := mustCreateItemREST(t, s, "task", "b")

	addRec := doJSON(t, s, http.MethodPost, "/api/v1/relations", map[string]interface{}{
		"source_id": a, "target_ids": []int64{b},
	})
	if addRec.Code != http.StatusCreated {
		t.Fatalf("add relations status = %d, body = %s", addRec.Code, addRec.Body.String())
	}

	removeRec := doJSON(t, s, http.MethodDelete, "/api/v1/relations", map[string]interface{}{
		"source_id": a, "target_id": b,
	})
	if removeRec.Code != http.StatusOK {
		t.Fatalf("remove relation status = %d, body = %s", removeRec.Code, removeRec.Body.String())
	}

	relatedRec := doJSON(t, s, http.MethodGet, "/api/v1/items/"+itoa(a)+"/related", nil)
	if relatedRec.Code != http.StatusOK {
		t.Fatalf("related status = %d, body = %s", relatedRec.Code, relatedRec.Body.String())
	}
	var relatedBody Response
	json.Unmarshal(relatedRec.Body.Bytes(), &relatedBody)
	data, ok := relatedBody.Data.(map[string]interface{})
	if ok {
		if manual, ok := data["manual"].([]interface{}); ok {
			for _, m := range manual {
				item := m.(map[string]interface{})["item"].(map[string]interface{})
				if int64(item["id"].(float64)) == b {
					t.Errorf("relation to %d should have been removed", b)
				}
			}
		}
	}
}

func TestRenameAndDeleteVocab(t *testing.T) {
	s := newTestServer(t)

	createRec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": "task", "title": "tagged item", "tags": []string{"old-name"},
	})
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", createRec.Code, createRec.Body.String())
	}

	tagsRec := doJSON(t, s, http.MethodGet, "/api/v1/tags", nil)
	if tagsRec.Code != http.StatusOK {
		t.Fatalf("get tags status = %d, body = %s", tagsRec.Code, tagsRec.Body.String())
	}

	tagID, err := store.EnsureTag(context.Background(), s.db.DB(), "old-name")
	if err != nil {
		t.Fatalf("EnsureTag failed: %v", err)
	}

	renameRec := doJSON(t, s, http.MethodPatch, "/api/v1/tags/"+itoa(tagID), map[string]interface{}{
		"new_name": "new-name",
	})
	if renameRec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", renameRec.Code, renameRec.Body.String())
	}

	garbageTagID, err := store.EnsureTag(context.Background(), s.db.DB(), "unused-tag")
	if err != nil {
		t.Fatalf("EnsureTag failed: %v", err)
	}

	garbageRec := doJSON(t, s, http.MethodGet, "/api/v1/vocab/garbage", nil)
	if garbageRec.Code != http.StatusOK {
		t.Fatalf("garbage status = %d, body = %s", garbageRec.Code, garbageRec.Body.String())
	}
	var garbageBody Response
	json.Unmarshal(garbageRec.Body.Bytes(), &garbageBody)
	garbageData := garbageBody.Data.(map[string]interface{})
	tagNames, _ := garbageData["Tags"].([]interface{})
	found := false
	for _, name := range tagNames {
		if name == "unused-tag" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unused-tag to be reported as garbage, got %+v", tagNames)
	}

	deleteRec := doJSON(t, s, http.MethodDelete, "/api/v1/vocab/tag/"+itoa(garbageTagID), nil)
	if deleteRec.Code != http.StatusOK {
		t.Fatalf("delete vocab status = %d, body = %s", deleteRec.Code, deleteRec.Body.String())
	}
}

func mustCreateItemREST(t *testing.T, s *Server, itemType, title string) int64 {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"type": itemType, "title": title,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body Response
	json.Unmarshal(rec.Body.Bytes(), &body)
	data := body.Data.(map[string]interface{})
	return int64(data["id"].(float64))
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
