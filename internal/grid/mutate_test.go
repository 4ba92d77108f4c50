package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sheetgrid/internal/ref"
)

func TestInsertDeleteRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		pivot, n int
	}{
		{0, 1}, {2, 3}, {5, 1}, {9, 4},
	} {
		r := NewRows(10, 1)
		fill(t, r, map[string]string{
			"A1": "a",
			"B3": "=A1+A3",
			"C6": "=SUM(A1:C9)",
			"D6": "=Sheet1!A1+$D$6",
			"A9": "x",
		})
		r.SetHeight(5, 3)
		before := r.Data()

		r.Insert(tt.pivot, tt.n)
		if r.Len != 10+tt.n {
			t.Errorf("Insert(%d, %d): len = %d", tt.pivot, tt.n, r.Len)
		}
		r.Delete(tt.pivot, tt.pivot+tt.n-1)
		if diff := cmp.Diff(before, r.Data()); diff != "" {
			t.Errorf("Insert(%d, %d) then Delete (-want +got):\n%s", tt.pivot, tt.n, diff)
		}
	}
}

func TestInsert(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{
		"A1": "=A2",
		"A2": "b",
		"C2": "=A2*2+A1",
		"A3": "=Sheet1!A2+A3",
	})
	p := r.Insert(1, 1)

	want := map[string]string{
		"A1": "=A2", // rows above the pivot keep their text
		"A3": "b",
		"C3": "=A3*2+A1",
		"A4": "=Sheet1!A2+A4",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("grid (-want +got):\n%s", diff)
	}
	if p.Len == nil || *p.Len != 11 {
		t.Errorf("patch length = %v, want 11", p.Len)
	}
	for _, ci := range []int{0, 2} {
		if c, ok := p.Cell(1, ci); !ok || c.Text != "" {
			t.Errorf("marker at row 1 col %d = %+v, %v", ci, c, ok)
		}
	}
	if c, _ := p.Cell(2, 2); c.Text != "=A3*2+A1" {
		t.Errorf("patch C3 = %q", c.Text)
	}
	if _, ok := p.Cell(0, 0); ok {
		t.Error("unmoved row reported in patch")
	}
}

func TestInsertKeepsColumnCase(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "=Ab1+ab1+AB1"})
	r.Insert(0, 2)
	want := map[string]string{"A3": "=Ab3+ab3+AB3"}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("grid (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{
		"A1": "keep",
		"A2": "gone",
		"A3": "gone",
		"A4": "=A4+A1+B5",
		"B5": "z",
	})
	p := r.Delete(1, 2)

	want := map[string]string{
		"A1": "keep",
		"A2": "=A2+A1+B3",
		"B3": "z",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("grid (-want +got):\n%s", diff)
	}
	if r.Len != 8 || p.Len == nil || *p.Len != 8 {
		t.Errorf("len = %d, patch len = %v, want 8", r.Len, p.Len)
	}
}

func TestInsertDeleteColumn(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{
		"A1": "a",
		"B1": "=A1+B1+Sheet1!B1",
		"C1": "c",
		"A3": "=$C$3",
	})
	before := r.Data()

	p := r.InsertColumn(1, 2)
	want := map[string]string{
		"A1": "a",
		"D1": "=A1+D1+Sheet1!B1",
		"E1": "c",
		"A3": "=$C$3",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("after InsertColumn (-want +got):\n%s", diff)
	}
	if p.Len != nil {
		t.Errorf("column insert set length %d", *p.Len)
	}
	for _, ri := range []int{0, 2} {
		if c, ok := p.Cell(ri, 1); !ok || c.Text != "" {
			t.Errorf("marker at row %d = %+v, %v", ri, c, ok)
		}
	}

	p = r.DeleteColumn(1, 2)
	if diff := cmp.Diff(before, r.Data()); diff != "" {
		t.Errorf("after DeleteColumn (-want +got):\n%s", diff)
	}
	if c, _ := p.Cell(0, 1); c.Text != "=A1+B1+Sheet1!B1" {
		t.Errorf("patch B1 = %q", c.Text)
	}
}

func TestAutofillTextSeries(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "Item1", "A6": "Item5", "E1": "2.5"})

	r.CopyPaste(Single(0, 0), NewCellRange(0, 1, 0, 2), ModeAll, true, nil)
	r.CopyPaste(Single(5, 0), NewCellRange(3, 0, 4, 0), ModeAll, true, nil)
	r.CopyPaste(Single(0, 4), NewCellRange(1, 4, 2, 4), ModeAll, true, nil)

	want := map[string]string{
		"A1": "Item1", "B1": "Item2", "C1": "Item3",
		"E1": "2.5", "E2": "3.5", "E3": "4.5",
		"A4": "Item3", "A5": "Item4", "A6": "Item5",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAutofillBlockAlongItsLengthCopies(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "x1", "B1": "y1"})
	// a one-row block filled to the right repeats verbatim
	r.CopyPaste(NewCellRange(0, 0, 0, 1), NewCellRange(0, 2, 0, 3), ModeAll, true, nil)
	// and counts when filled down
	r.CopyPaste(NewCellRange(0, 0, 0, 1), NewCellRange(1, 0, 1, 1), ModeAll, true, nil)
	want := map[string]string{
		"A1": "x1", "B1": "y1", "C1": "x1", "D1": "y1",
		"A2": "x2", "B2": "y2",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestAutofillFormula(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"C1": "=A1", "A5": "=A1+Sheet1!A1"})

	r.CopyPaste(Single(0, 2), NewCellRange(1, 2, 2, 2), ModeAll, true, nil)
	r.CopyPaste(Single(4, 0), NewCellRange(4, 1, 4, 2), ModeAll, true, nil)

	want := map[string]string{
		"C1": "=A1", "C2": "=A2", "C3": "=A3",
		"A5": "=A1+Sheet1!A1", "B5": "=B1+Sheet1!A1", "C5": "=C1+Sheet1!A1",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCopyPasteTranslatesFormulas(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "=B1+$C$1", "A2": "=A1*2"})

	p := r.CopyPaste(NewCellRange(0, 0, 1, 0), Single(2, 1), ModeAll, false, nil)
	if got := r.GetCell(2, 1).Text; got != "=C3+$D$3" {
		t.Errorf("B3 = %q, want =C3+$D$3", got)
	}
	if got := r.GetCell(3, 1).Text; got != "=B3*2" {
		t.Errorf("B4 = %q, want =B3*2", got)
	}
	if c, _ := p.Cell(3, 1); c.Text != "=B3*2" {
		t.Errorf("patch B4 = %q", c.Text)
	}
}

func TestCopyPasteTiles(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "a", "B1": "b"})
	r.CopyPaste(NewCellRange(0, 0, 0, 1), NewCellRange(2, 0, 3, 3), ModeAll, false, nil)
	want := map[string]string{
		"A1": "a", "B1": "b",
		"A3": "a", "B3": "b", "C3": "a", "D3": "b",
		"A4": "a", "B4": "b", "C4": "a", "D4": "b",
	}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCopyPasteTextMode(t *testing.T) {
	other := NewRows(10, 1)
	fill(t, other, map[string]string{"A1": "5", "A2": "=A1*3"})
	sheets := []Sheet{NewNamedSheet("Data", other)}

	r := NewRows(10, 1)
	fill(t, r, map[string]string{
		"A1": "=Sheet2!A1",
		"A2": "=Data!A2+1",
		"A3": "3",
		"A4": "=A3*2",
	})
	r.SetCell(0, 1, &Cell{Style: Int(4)}, ModeAll)

	r.CopyPaste(NewCellRange(0, 0, 3, 0), Single(0, 1), ModeText, false, sheets)

	want := map[string]*Cell{
		"B1": {Text: "#REF!", Style: Int(4)},
		"B2": {Text: "16"},
		"B3": {Text: "3"},
		"B4": {Text: "6"},
	}
	for name, w := range want {
		ri, ci, _ := ref.ParseCellRef(name)
		if diff := cmp.Diff(w, r.GetCell(ri, ci)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", name, diff)
		}
	}
}

func TestCopyPasteFormatMode(t *testing.T) {
	r := NewRows(10, 1)
	r.SetCell(0, 0, &Cell{Text: "src", Style: Int(2), Merge: []int{1, 2}}, ModeAll)
	r.SetCell(5, 5, &Cell{Text: "dst"}, ModeAll)
	r.CopyPaste(Single(0, 0), Single(5, 5), ModeFormat, false, nil)
	want := &Cell{Text: "dst", Style: Int(2), Merge: []int{1, 2}}
	if diff := cmp.Diff(want, r.GetCell(5, 5)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCutPaste(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "=B2", "B1": "x"})

	p := r.CutPaste(NewCellRange(0, 0, 0, 1), NewCellRange(2, 2, 5, 5))

	want := map[string]string{"C3": "=B2", "D3": "x"}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("grid (-want +got):\n%s", diff)
	}
	wantPatch := Patch{Rows: map[int]*PatchRow{
		0: {Cells: map[int]Cell{0: {}, 1: {}}},
		2: {Cells: map[int]Cell{2: {Text: "=B2"}, 3: {Text: "x"}}},
	}}
	if diff := cmp.Diff(wantPatch, p); diff != "" {
		t.Errorf("patch (-want +got):\n%s", diff)
	}
}

func TestCutPasteOverlapping(t *testing.T) {
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "1", "A2": "2"})
	r.CutPaste(NewCellRange(0, 0, 1, 0), Single(1, 0))
	want := map[string]string{"A2": "1", "A3": "2"}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestPaste(t *testing.T) {
	r := NewRows(10, 1)
	r.SetCell(1, 2, &Cell{Text: "keep", Editable: Bool(false)}, ModeAll)

	p := r.Paste([][]string{{"a", "b"}, {"c"}}, Single(1, 1))
	want := map[string]string{"B2": "a", "C2": "keep", "B3": "c"}
	if diff := cmp.Diff(want, texts(r)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if c, _ := p.Cell(1, 2); c.Text != "keep" {
		t.Errorf("patch C2 = %q, want keep", c.Text)
	}

	if p := r.Paste(nil, Single(0, 0)); !p.IsEmpty() {
		t.Errorf("empty paste = %+v", p)
	}
}

func TestDeleteCell(t *testing.T) {
	r := NewRows(10, 1)
	r.SetCell(0, 0, &Cell{Text: "x", Value: "1", Style: Int(1), Merge: []int{1, 2}}, ModeAll)
	r.SetCell(0, 1, &Cell{Text: "locked", Editable: Bool(false)}, ModeAll)

	r.DeleteCell(0, 1, ModeText)
	if got := r.GetCell(0, 1).Text; got != "locked" {
		t.Errorf("locked text = %q", got)
	}

	r.DeleteCell(0, 0, ModeMerge)
	if diff := cmp.Diff(&Cell{Text: "x", Value: "1", Style: Int(1)}, r.GetCell(0, 0)); diff != "" {
		t.Errorf("merge (-want +got):\n%s", diff)
	}
	r.DeleteCell(0, 0, ModeText)
	if diff := cmp.Diff(&Cell{Style: Int(1)}, r.GetCell(0, 0)); diff != "" {
		t.Errorf("text (-want +got):\n%s", diff)
	}
	r.DeleteCell(0, 0, ModeFormat)
	if diff := cmp.Diff(&Cell{}, r.GetCell(0, 0)); diff != "" {
		t.Errorf("format (-want +got):\n%s", diff)
	}
	r.DeleteCell(0, 0, ModeAll)
	if c := r.GetCell(0, 0); c != nil {
		t.Errorf("cell survived ModeAll: %+v", c)
	}
	r.DeleteCell(7, 7, ModeAll) // absent row
}

func TestDeleteCells(t *testing.T) {
	r := NewRows(10, 1)
	r.SetCell(0, 0, &Cell{Text: "x", Style: Int(1)}, ModeAll)
	r.SetCell(0, 1, &Cell{Text: "locked", Editable: Bool(false)}, ModeAll)

	p := r.DeleteCells(NewCellRange(0, 0, 1, 1), ModeText)
	want := Patch{Rows: map[int]*PatchRow{
		0: {Cells: map[int]Cell{
			0: {Style: Int(1)},
			1: {Text: "locked", Editable: Bool(false)},
		}},
		1: {Cells: map[int]Cell{}},
	}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("text (-want +got):\n%s", diff)
	}

	p = r.DeleteCells(Single(0, 0), ModeAll)
	if c, ok := p.Cell(0, 0); !ok || c.Style != nil {
		t.Errorf("removed cell reported as %+v, %v", c, ok)
	}
	if r.GetCell(0, 0) != nil {
		t.Error("cell survived ModeAll")
	}
}

func TestRender(t *testing.T) {
	other := NewRows(10, 1)
	fill(t, other, map[string]string{"B2": "40"})
	r := NewRows(10, 1)
	fill(t, r, map[string]string{"A1": "2", "A2": "=A1+Other!B2", "A3": "=A3"})
	sheets := []Sheet{NewNamedSheet("Other", other)}

	for _, tt := range []struct {
		ri, ci int
		want   string
	}{
		{0, 0, "2"},
		{1, 0, "42"},
		{2, 0, "#REF!"},
		{9, 9, ""},
	} {
		if got := r.Render(tt.ri, tt.ci, sheets); got != tt.want {
			t.Errorf("Render(%d, %d) = %q, want %q", tt.ri, tt.ci, got, tt.want)
		}
	}
}
