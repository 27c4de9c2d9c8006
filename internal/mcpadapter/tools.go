package mcpadapter

// toolDefinitions returns the full tool table (spec §6).
func toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "create_item",
			Description: "Create a new knowledge base item of any dynamic type",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"type":          {Type: "string", Description: "Dynamic type token, lowercase/digits/underscore only"},
					"title":         {Type: "string", Description: "Item title"},
					"description":   {Type: "string", Description: "Short description"},
					"content":       {Type: "string", Description: "Full markdown body"},
					"status":        {Type: "string", Description: "Workflow status name, defaults to Open"},
					"priority":      {Type: "string", Description: "CRITICAL, HIGH, MEDIUM, LOW, or MINIMAL", Enum: []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "MINIMAL"}, Default: "MEDIUM"},
					"version":       {Type: "string"},
					"category":      {Type: "string"},
					"start_date":    {Type: "string", Description: "YYYY-MM-DD"},
					"end_date":      {Type: "string", Description: "YYYY-MM-DD"},
					"tags":          {Type: "array", Items: &Property{Type: "string"}},
					"related":       {Type: "array", Description: "Item ids to relate to on creation", Items: &Property{Type: "integer"}},
					"bidirectional": {Type: "boolean", Description: "Add the reverse edge for each related id too"},
				},
				Required: []string{"type", "title"},
			},
		},
		{
			Name:        "get_item",
			Description: "Fetch a single item by id",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"id": {Type: "integer"}},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "update_item",
			Description: "Update any subset of an item's fields; omitted fields are left untouched, explicit null clears a nullable field",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":            {Type: "integer"},
					"type":          {Type: "string"},
					"title":         {Type: "string"},
					"description":   {Type: "string"},
					"content":       {Type: "string"},
					"status":        {Type: "string"},
					"priority":      {Type: "string", Enum: []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "MINIMAL"}},
					"version":       {Type: "string"},
					"category":      {Type: "string"},
					"start_date":    {Type: "string"},
					"end_date":      {Type: "string"},
					"tags":          {Type: "array", Items: &Property{Type: "string"}},
					"related":       {Type: "array", Items: &Property{Type: "integer"}},
					"bidirectional": {Type: "boolean"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "delete_item",
			Description: "Delete an item and everything cascading from it",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"id": {Type: "integer"}},
				Required:   []string{"id"},
			},
		},
		{
			Name:        "list_items",
			Description: "List items with relational filters, no lexical scoring",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"type":      {Type: "string"},
					"types":     {Type: "array", Items: &Property{Type: "string"}},
					"status":    {Type: "array", Items: &Property{Type: "string"}},
					"priority":  {Type: "array", Items: &Property{Type: "string"}},
					"tags":      {Type: "array", Items: &Property{Type: "string"}},
					"sortBy":    {Type: "string", Enum: []string{"created", "updated", "priority"}},
					"sortOrder": {Type: "string", Enum: []string{"asc", "desc"}},
					"limit":     {Type: "integer"},
					"offset":    {Type: "integer"},
				},
			},
		},
		{
			Name:        "search_items",
			Description: "Lexical TF-IDF search over item title/description/content, intersected with the same filters as list_items",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query":    {Type: "string", Description: "Supports AND/OR and \"quoted phrases\""},
					"types":    {Type: "array", Items: &Property{Type: "string"}},
					"status":   {Type: "array", Items: &Property{Type: "string"}},
					"priority": {Type: "array", Items: &Property{Type: "string"}},
					"tags":     {Type: "array", Items: &Property{Type: "string"}},
					"limit":    {Type: "integer"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "get_related_items",
			Description: "Manually declared relations plus computed neighbors ranked by keyword/concept/embedding/hybrid similarity",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":               {Type: "integer"},
					"strategy":         {Type: "string", Enum: []string{"keywords", "concepts", "embedding", "hybrid"}, Default: "hybrid"},
					"weights":          {Type: "object", Description: "Per-strategy weight overrides for hybrid scoring"},
					"depth":            {Type: "integer", Description: "Relation-graph expansion depth when includeRelations is set"},
					"includeRelations": {Type: "boolean"},
					"limit":            {Type: "integer"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "find_similar_items",
			Description: "Shorthand for get_related_items with strategy=embedding",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":    {Type: "integer"},
					"limit": {Type: "integer"},
				},
				Required: []string{"id"},
			},
		},
		{
			Name:        "add_relations",
			Description: "Add one or more directed relation edges from a source item",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"source_id":     {Type: "integer"},
					"target_ids":    {Type: "array", Items: &Property{Type: "integer"}},
					"bidirectional": {Type: "boolean"},
				},
				Required: []string{"source_id", "target_ids"},
			},
		},
		{
			Name:        "get_tags",
			Description: "List tags with their item usage counts, optionally filtered by prefix",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"prefix": {Type: "string"},
					"limit":  {Type: "integer"},
				},
			},
		},
		{
			Name:        "get_stats",
			Description: "Aggregate counts: items by type/status/priority, relation totals, vocabulary sizes",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        "get_current_state",
			Description: "Fetch the active SystemState row, creating a default one on first call",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        "update_current_state",
			Description: "Replace the active SystemState row's mutable fields and bump its updated_at",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"content":  {Type: "string"},
					"tags":     {Type: "array", Items: &Property{Type: "string"}},
					"metadata": {Type: "string", Description: "Opaque JSON blob"},
				},
			},
		},
		{
			Name:        "checkpoint",
			Description: "Clone the active SystemState row into a named, inactive history entry",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"name": {Type: "string"}},
				Required:   []string{"name"},
			},
		},
		{
			Name:        "remove_relation",
			Description: "Delete a single directed relation edge, if present",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"source_id": {Type: "integer"},
					"target_id": {Type: "integer"},
				},
				Required: []string{"source_id", "target_id"},
			},
		},
		{
			Name:        "rename_tag",
			Description: "Rename a tag in place; junction rows keep pointing at the same tag id",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"id":       {Type: "integer"},
					"new_name": {Type: "string"},
				},
				Required: []string{"id", "new_name"},
			},
		},
		{
			Name:        "delete_vocab",
			Description: "Delete a tag, keyword, or concept; refuses when still in use unless force is set",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"kind":  {Type: "string", Enum: []string{"tag", "keyword", "concept"}},
					"id":    {Type: "integer"},
					"force": {Type: "boolean", Description: "Clear junction rows and delete even if still in use"},
				},
				Required: []string{"kind", "id"},
			},
		},
		{
			Name:        "get_garbage_vocab",
			Description: "List every tag/keyword/concept with zero item usages",
			InputSchema: InputSchema{Type: "object"},
		},
	}
}
