package services

import "testing"

func testGrid(rows int) ([]LineItem, []DisplayColumn) {
	items := make([]LineItem, rows)
	for i := range items {
		items[i] = NewLineItem("")
	}
	return items, DefaultColumns()
}

func TestBeginEdit(t *testing.T) {
	items, cols := testGrid(3)

	tests := []struct {
		name   string
		row    int
		col    string
		expect bool
	}{
		{"editable cell", 1, FieldItemName, true},
		{"numeric cell", 0, FieldQuantity, true},
		{"derived cell refused", 0, FieldTotalAmount, false},
		{"unknown column refused", 0, "bogus", false},
		{"row out of range", 3, FieldItemName, false},
		{"negative row", -1, FieldItemName, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s EditSession
			got := s.BeginEdit(items, cols, tt.row, tt.col)
			if got != tt.expect {
				t.Errorf("BeginEdit(%d, %q) = %v, want %v", tt.row, tt.col, got, tt.expect)
			}
			if got != s.IsEditing(tt.row, tt.col) {
				t.Errorf("IsEditing out of sync with BeginEdit result")
			}
		})
	}
}

func TestBeginEditCapturesOriginal(t *testing.T) {
	items, cols := testGrid(1)
	items[0].ItemName = "before"

	var s EditSession
	if !s.BeginEdit(items, cols, 0, FieldItemName) {
		t.Fatal("BeginEdit refused an editable cell")
	}
	if got := s.Original(); got != "before" {
		t.Errorf("Original() = %v, want %q", got, "before")
	}
}

func TestHandleKeyEnter(t *testing.T) {
	_, cols := testGrid(3)
	editable := EditableColumns(cols)

	t.Run("moves down within rows", func(t *testing.T) {
		var s EditSession
		items, _ := testGrid(3)
		s.BeginEdit(items, cols, 0, FieldQuantity)

		action := s.HandleKey(KeyEnter, 3, editable)
		if action.AppendRow {
			t.Error("AppendRow = true, want false")
		}
		if action.Next == nil || action.Next.Row != 1 || action.Next.Col != FieldQuantity {
			t.Errorf("Next = %+v, want row 1 col %s", action.Next, FieldQuantity)
		}
	})

	t.Run("appends on last row", func(t *testing.T) {
		var s EditSession
		items, _ := testGrid(3)
		s.BeginEdit(items, cols, 2, FieldUnitPrice)

		action := s.HandleKey(KeyEnter, 3, editable)
		if !action.AppendRow {
			t.Fatal("AppendRow = false, want true")
		}
		if action.Next == nil || action.Next.Row != 3 || action.Next.Col != editable[0].Key {
			t.Errorf("Next = %+v, want row 3 first editable col", action.Next)
		}
	})

	t.Run("idle session ignores keys", func(t *testing.T) {
		var s EditSession
		action := s.HandleKey(KeyEnter, 3, editable)
		if action.AppendRow || action.Next != nil || action.Commit {
			t.Errorf("idle action = %+v, want zero", action)
		}
	})
}

func TestHandleKeyTab(t *testing.T) {
	_, cols := testGrid(2)
	editable := EditableColumns(cols)
	first := editable[0].Key
	second := editable[1].Key
	last := editable[len(editable)-1].Key

	t.Run("moves to next editable column", func(t *testing.T) {
		var s EditSession
		items, _ := testGrid(2)
		s.BeginEdit(items, cols, 0, first)

		action := s.HandleKey(KeyTab, 2, editable)
		if action.Next == nil || action.Next.Row != 0 || action.Next.Col != second {
			t.Errorf("Next = %+v, want row 0 col %s", action.Next, second)
		}
	})

	t.Run("wraps to next row", func(t *testing.T) {
		var s EditSession
		items, _ := testGrid(2)
		s.BeginEdit(items, cols, 0, last)

		action := s.HandleKey(KeyTab, 2, editable)
		if action.Next == nil || action.Next.Row != 1 || action.Next.Col != first {
			t.Errorf("Next = %+v, want row 1 col %s", action.Next, first)
		}
	})

	t.Run("stays put at last cell", func(t *testing.T) {
		var s EditSession
		items, _ := testGrid(2)
		s.BeginEdit(items, cols, 1, last)

		action := s.HandleKey(KeyTab, 2, editable)
		if action.Next != nil || action.AppendRow {
			t.Errorf("action = %+v, want no movement", action)
		}
		if !s.IsEditing(1, last) {
			t.Error("session left the last cell")
		}
	})
}

func TestHandleKeyEscape(t *testing.T) {
	items, cols := testGrid(2)
	editable := EditableColumns(cols)

	var s EditSession
	s.BeginEdit(items, cols, 0, FieldItemName)

	action := s.HandleKey(KeyEscape, 2, editable)
	if action.Next != nil || action.AppendRow || action.Commit {
		t.Errorf("escape action = %+v, want zero", action)
	}
	if s.Editing() != nil {
		t.Error("session still editing after escape")
	}
}

func TestBlur(t *testing.T) {
	items, cols := testGrid(2)

	t.Run("editing commits", func(t *testing.T) {
		var s EditSession
		s.BeginEdit(items, cols, 1, FieldRemarks)

		action := s.Blur()
		if !action.Commit {
			t.Error("Commit = false, want true")
		}
		if s.Editing() != nil {
			t.Error("session still editing after blur")
		}
	})

	t.Run("idle blur is a no-op", func(t *testing.T) {
		var s EditSession
		action := s.Blur()
		if action.Commit {
			t.Error("idle blur requested a commit")
		}
	})
}
