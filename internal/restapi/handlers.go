package restapi

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemmodel"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/itemwire"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/search"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/vocab"
)

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer")
	}
	return id, nil
}

func (s *Server) resolveStatusIDs(ctx *gin.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		st, err := store.GetStatusByName(ctx.Request.Context(), s.db.DB(), name)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return nil, fmt.Errorf("unknown status: %s", name)
		}
		ids = append(ids, st.ID)
	}
	return ids, nil
}

func (s *Server) createItem(c *gin.Context) {
	var body itemwire.CreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	req, err := itemmodel.ValidateCreate(body.RawCreate())
	if err != nil {
		RespondError(c, err)
		return
	}

	item, err := s.pipeline.Create(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	CreatedResponse(c, itemwire.ToItem(item))
}

func (s *Server) getItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}

	item, err := store.GetItemFull(c.Request.Context(), s.db.DB(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if item == nil {
		NotFoundError(c, fmt.Sprintf("item %d not found", id))
		return
	}
	SuccessResponse(c, itemwire.ToItem(item))
}

func (s *Server) updateItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	raw, err := itemwire.RawUpdateFromArgs(body)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}

	req, err := itemmodel.ValidateUpdate(raw)
	if err != nil {
		RespondError(c, err)
		return
	}

	item, err := s.pipeline.Update(c.Request.Context(), id, req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, itemwire.ToItem(item))
}

func (s *Server) deleteItem(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}
	if err := s.pipeline.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"deleted": true})
}

func (s *Server) listItems(c *gin.Context) {
	statusIDs, err := s.resolveStatusIDs(c, c.QueryArray("status"))
	if err != nil {
		RespondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	filters := &store.ItemFilters{
		Types:      c.QueryArray("types"),
		StatusIDs:  statusIDs,
		Priorities: c.QueryArray("priority"),
		TagNames:   c.QueryArray("tags"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Limit:      limit,
		Offset:     offset,
	}
	if t := c.Query("type"); t != "" {
		filters.Types = append(filters.Types, t)
	}

	items, err := search.List(c.Request.Context(), s.db.DB(), filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, itemwire.ToItems(items))
}

func (s *Server) searchItems(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		BadRequestError(c, "query is required")
		return
	}

	statusIDs, err := s.resolveStatusIDs(c, c.QueryArray("status"))
	if err != nil {
		RespondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	filters := &store.ItemFilters{
		Types:      c.QueryArray("types"),
		StatusIDs:  statusIDs,
		Priorities: c.QueryArray("priority"),
		TagNames:   c.QueryArray("tags"),
	}

	results, err := search.Search(c.Request.Context(), s.db.DB(), query, filters, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, itemwire.ToResults(results))
}

func (s *Server) getRelatedItems(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}

	strategy := search.Strategy(c.Query("strategy"))
	if strategy == "" {
		strategy = search.StrategyHybrid
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	depth, _ := strconv.Atoi(c.Query("depth"))

	weights := search.HybridWeights{}
	if v, err := strconv.ParseFloat(c.Query("keywordsWeight"), 64); err == nil {
		weights.Keywords = v
	}
	if v, err := strconv.ParseFloat(c.Query("conceptsWeight"), 64); err == nil {
		weights.Concepts = v
	}
	if v, err := strconv.ParseFloat(c.Query("embeddingWeight"), 64); err == nil {
		weights.Embedding = v
	}

	opts := search.RelatedOptions{
		Strategy:         strategy,
		Limit:            limit,
		Weights:          weights,
		IncludeRelations: c.Query("includeRelations") == "true",
		Depth:            depth,
	}

	results, err := search.Related(c.Request.Context(), s.db.DB(), id, opts)
	if err != nil {
		RespondError(c, err)
		return
	}

	manual, computed := itemwire.SplitManualComputed(results)
	SuccessResponse(c, gin.H{"manual": manual, "computed": computed})
}

func (s *Server) findSimilarItems(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := search.FindSimilar(c.Request.Context(), s.db.DB(), id, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, itemwire.ToResults(results))
}

type addRelationsBody struct {
	SourceID      int64   `json:"source_id"`
	TargetIDs     []int64 `json:"target_ids"`
	Bidirectional bool    `json:"bidirectional,omitempty"`
}

func (s *Server) addRelations(c *gin.Context) {
	var body addRelationsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	var inserted int64
	err := s.db.Transaction(c.Request.Context(), func(tx *sql.Tx) error {
		for _, id := range body.TargetIDs {
			item, err := store.GetItem(c.Request.Context(), tx, id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("related item %d does not exist", id)
			}
		}
		n, err := store.AddRelations(c.Request.Context(), tx, body.SourceID, body.TargetIDs, body.Bidirectional)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	CreatedResponse(c, gin.H{"inserted": inserted})
}

func (s *Server) getTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	usage, err := store.ListTagUsage(c.Request.Context(), s.db.DB(), c.Query("prefix"), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, usage)
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := store.GetStats(c.Request.Context(), s.db.DB())
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, stats)
}

func (s *Server) getCurrentState(c *gin.Context) {
	state, err := s.sysState.GetCurrent(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, state)
}

type updateStateBody struct {
	Content  string   `json:"content,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Metadata string   `json:"metadata,omitempty"`
}

func (s *Server) updateCurrentState(c *gin.Context) {
	var body updateStateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	state, err := s.sysState.Update(c.Request.Context(), sysstate.UpdateRequest{
		Content:  body.Content,
		Tags:     body.Tags,
		Metadata: body.Metadata,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, state)
}

func (s *Server) removeRelation(c *gin.Context) {
	var body struct {
		SourceID int64 `json:"source_id"`
		TargetID int64 `json:"target_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	if err := store.RemoveRelation(c.Request.Context(), s.db.DB(), body.SourceID, body.TargetID); err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"removed": true})
}

func (s *Server) renameTag(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}
	var body struct {
		NewName string `json:"new_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	if err := vocab.RenameTag(c.Request.Context(), s.db.DB(), id, body.NewName); err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"renamed": true})
}

func (s *Server) deleteVocab(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequestError(c, err.Error())
		return
	}
	force := c.Query("force") == "true"
	if err := vocab.Delete(c.Request.Context(), s.db.DB(), vocab.Kind(c.Param("kind")), id, force); err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"deleted": true})
}

func (s *Server) getGarbageVocab(c *gin.Context) {
	garbage, err := vocab.Garbage(c.Request.Context(), s.db.DB())
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessResponse(c, garbage)
}

func (s *Server) checkpoint(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	if body.Name == "" {
		BadRequestError(c, "name is required")
		return
	}
	state, err := s.sysState.Checkpoint(c.Request.Context(), body.Name)
	if err != nil {
		RespondError(c, err)
		return
	}
	CreatedResponse(c, state)
}
