package domain

import (
	"fmt"
	"strings"
	"time"
)

// VisitorStatus represents a visitor's position in the follow-up lifecycle.
type VisitorStatus string

const (
	StatusFirstVisit  VisitorStatus = "FIRST_VISIT"
	StatusContacted   VisitorStatus = "CONTACTED"
	StatusSecondVisit VisitorStatus = "SECOND_VISIT"
	StatusRegular     VisitorStatus = "REGULAR"
	StatusInactive    VisitorStatus = "INACTIVE"
)

func (s VisitorStatus) String() string { return string(s) }

func (s VisitorStatus) IsValid() bool {
	switch s {
	case StatusFirstVisit, StatusContacted, StatusSecondVisit, StatusRegular, StatusInactive:
		return true
	}
	return false
}

func ParseVisitorStatusFromString(s string) (VisitorStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	st := VisitorStatus(normalized)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid visitor status %q", ErrValidation, s)
	}
	return st, nil
}

// Visitor is owned by the surrounding CRUD system; only status is mutated here.
type Visitor struct {
	ID        string
	FullName  string
	Email     *string
	Phone     *string
	Status    VisitorStatus
	VisitDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransitionGraph is the static set of permitted status transitions. It is
// immutable data passed to the lifecycle manager at construction so tests can
// substitute alternate graphs.
type TransitionGraph map[VisitorStatus][]VisitorStatus

// DefaultTransitionGraph returns the canonical five-state lifecycle.
func DefaultTransitionGraph() TransitionGraph {
	return TransitionGraph{
		StatusFirstVisit:  {StatusContacted, StatusSecondVisit, StatusInactive},
		StatusContacted:   {StatusSecondVisit, StatusInactive},
		StatusSecondVisit: {StatusRegular, StatusInactive},
		StatusRegular:     {StatusInactive},
		StatusInactive:    {StatusContacted},
	}
}

// Allows reports whether from -> to is a permitted transition. A transition
// to the same status is not part of the graph; callers treat it as a no-op.
func (g TransitionGraph) Allows(from, to VisitorStatus) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}
