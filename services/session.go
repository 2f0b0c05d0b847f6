package services

// CellRef identifies a single grid cell by row index and canonical column key.
type CellRef struct {
	Row int
	Col string
}

// NavKey is a keyboard event the edit session reacts to.
type NavKey string

const (
	KeyEnter  NavKey = "Enter"
	KeyTab    NavKey = "Tab"
	KeyEscape NavKey = "Escape"
)

// NavAction describes what the grid must do after a session event: append a
// row, move editing focus, and/or commit the current snapshot to the store.
type NavAction struct {
	AppendRow bool
	Next      *CellRef
	Commit    bool
}

// EditSession is the grid's cell editing state machine. It is either idle or
// editing exactly one cell. Keystroke edits apply to the row list directly
// (there is no draft buffer), so leaving edit mode never discards input;
// the pre-edit value is retained for callers that want to offer revert.
type EditSession struct {
	editing  *CellRef
	original any
}

// Editing returns the cell currently being edited, or nil when idle.
func (s *EditSession) Editing() *CellRef {
	return s.editing
}

// IsEditing reports whether the given cell is the active edit target.
func (s *EditSession) IsEditing(row int, col string) bool {
	return s.editing != nil && s.editing.Row == row && s.editing.Col == col
}

// BeginEdit enters edit mode on a cell, as a double-click does. It refuses
// derived-field cells and columns the schema marks non-editable, and returns
// whether edit mode was entered.
func (s *EditSession) BeginEdit(items []LineItem, cols []DisplayColumn, row int, col string) bool {
	if row < 0 || row >= len(items) {
		return false
	}
	if IsDerivedField(col) {
		return false
	}
	var target *DisplayColumn
	for i := range cols {
		if cols[i].Key == col {
			target = &cols[i]
			break
		}
	}
	if target == nil || !target.Editable {
		return false
	}
	s.editing = &CellRef{Row: row, Col: col}
	s.original = items[row].CellValue(col)
	return true
}

// Original returns the value the active cell held when editing began.
func (s *EditSession) Original() any {
	return s.original
}

// HandleKey advances the state machine for a navigation keystroke and
// returns the resulting action. rowCount is the current number of rows;
// editable is the editable column list in display order.
//
// Enter moves down a row (appending a new row when already on the last),
// Tab moves to the next editable column with wrap to the next row, and
// Escape leaves edit mode without reverting applied keystrokes.
func (s *EditSession) HandleKey(key NavKey, rowCount int, editable []DisplayColumn) NavAction {
	if s.editing == nil {
		return NavAction{}
	}
	cur := *s.editing

	switch key {
	case KeyEnter:
		if cur.Row < rowCount-1 {
			return s.moveTo(CellRef{Row: cur.Row + 1, Col: cur.Col})
		}
		if len(editable) == 0 {
			return NavAction{}
		}
		// Last row: append a fresh row and start over in its first
		// editable column.
		action := s.moveTo(CellRef{Row: rowCount, Col: editable[0].Key})
		action.AppendRow = true
		return action

	case KeyTab:
		idx := columnIndex(editable, cur.Col)
		if idx >= 0 && idx < len(editable)-1 {
			return s.moveTo(CellRef{Row: cur.Row, Col: editable[idx+1].Key})
		}
		if cur.Row < rowCount-1 && len(editable) > 0 {
			return s.moveTo(CellRef{Row: cur.Row + 1, Col: editable[0].Key})
		}
		// Last editable column of the last row: stay put.
		return NavAction{}

	case KeyEscape:
		s.editing = nil
		s.original = nil
		return NavAction{}
	}

	return NavAction{}
}

// Blur leaves edit mode and signals a commit of the full row snapshot.
func (s *EditSession) Blur() NavAction {
	if s.editing == nil {
		return NavAction{}
	}
	s.editing = nil
	s.original = nil
	return NavAction{Commit: true}
}

func (s *EditSession) moveTo(next CellRef) NavAction {
	s.editing = &CellRef{Row: next.Row, Col: next.Col}
	s.original = nil
	return NavAction{Next: &next}
}

func columnIndex(cols []DisplayColumn, key string) int {
	for i, col := range cols {
		if col.Key == key {
			return i
		}
	}
	return -1
}
