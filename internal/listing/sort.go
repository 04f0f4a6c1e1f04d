package listing

import "errors"

// Column is a sortable activity column.
type Column string

const (
	ColumnTitle         Column = "title"
	ColumnCategory      Column = "category"
	ColumnDateCompleted Column = "date_completed"
	ColumnMinToComplete Column = "min_to_complete"

	DefaultColumn = ColumnTitle
)

var ErrInvalidColumn = errors.New("invalid column name")

var columns = map[Column]struct{}{
	ColumnTitle:         {},
	ColumnCategory:      {},
	ColumnDateCompleted: {},
	ColumnMinToComplete: {},
}

// ParseColumn returns the column named raw if it is sortable.
func ParseColumn(raw string) (Column, error) {
	c := Column(raw)
	if _, ok := columns[c]; !ok {
		return "", ErrInvalidColumn
	}
	return c, nil
}

// State is the sort column and direction kept in the session.
// The zero value means the default order: title, ascending.
type State struct {
	Column     Column `json:"column,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// Normalize replaces an unknown or empty column with the default order.
func (s State) Normalize() State {
	if _, ok := columns[s.Column]; !ok {
		return State{Column: DefaultColumn}
	}
	return s
}

// Toggle returns the state after a sort request on col: the active column flips
// direction, any other column becomes active in ascending order.
func (s State) Toggle(col Column) State {
	s = s.Normalize()
	if col == s.Column {
		return State{Column: col, Descending: !s.Descending}
	}
	return State{Column: col}
}

// Direction is "ASC" or "DESC".
func (s State) Direction() string {
	if s.Descending {
		return "DESC"
	}
	return "ASC"
}
