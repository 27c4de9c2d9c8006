package store

import "time"

// Priority is one of the five levels spec §3 defines, with a total order
// used by priority sort (spec §4.7.1).
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
	PriorityMinimal  Priority = "MINIMAL"
)

// priorityRank gives each priority its position in the
// CRITICAL > HIGH > MEDIUM > LOW > MINIMAL ordering; lower rank sorts first
// in descending-priority order.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:      1,
	PriorityMedium:    2,
	PriorityLow:       3,
	PriorityMinimal:   4,
}

// ValidPriorities is the enumerated set from spec §3.
var ValidPriorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityMinimal}

// IsValidPriority reports whether p is one of the five enumerated levels.
func IsValidPriority(p string) bool {
	_, ok := priorityRank[Priority(p)]
	return ok
}

// Rank returns p's position in the priority order, or a value past the end
// for an unrecognized priority so it sorts last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Item is the central entity of the knowledge base (spec §3).
type Item struct {
	ID          int64
	Type        string
	Title       string
	Description *string
	Content     *string
	StatusID    int64
	StatusName  string
	Priority    Priority
	Version     *string
	Category    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Summary     *string
	Embedding   []float32 // never serialized to API responses (I-P7)
	SearchIndex *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tags     []string
	Keywords []KeywordWeight
	Concepts []ConceptWeight
}

// KeywordWeight pairs a keyword with its weight for a given item.
type KeywordWeight struct {
	Name   string
	Weight float64
}

// ConceptWeight pairs a concept with its weight for a given item.
type ConceptWeight struct {
	Name   string
	Weight float64
}

// Status is a workflow state (spec §3 Status).
type Status struct {
	ID         int64
	Name       string
	IsClosable bool
	SortOrder  int
}

// Relation is a directed edge between two items (spec §3 ItemRelation).
type Relation struct {
	SourceID  int64
	TargetID  int64
	CreatedAt time.Time
}

// SystemState is the mutable singleton "current working context" log
// (spec §3 SystemState, §4.9).
type SystemState struct {
	ID           int64
	Version      string
	Content      string
	Summary      string
	Metrics      string // JSON blob
	Context      string
	Checkpoint   string
	RelatedItems []int64
	Tags         []string
	Metadata     string // JSON blob
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
