package grid

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sheetgrid/internal/ref"
)

// texts flattens the grid into name -> text for cells with text.
func texts(r *Rows) map[string]string {
	out := map[string]string{}
	r.Each(func(ri int, row *Row) {
		r.EachCells(ri, func(ci int, c *Cell) {
			if c.Text != "" {
				out[ref.ColRowToName(ci, ri)] = c.Text
			}
		})
	})
	return out
}

// fill writes texts given as name -> text.
func fill(t *testing.T, r *Rows, cells map[string]string) {
	t.Helper()
	for name, text := range cells {
		ri, ci, ok := ref.ParseCellRef(name)
		if !ok {
			t.Fatalf("bad cell name %q", name)
		}
		r.GetCellOrNew(ri, ci).Text = text
	}
}

func TestGetCellDoesNotAllocate(t *testing.T) {
	r := NewRows(10, 1)
	if c := r.GetCell(3, 4); c != nil {
		t.Fatalf("GetCell on empty grid = %+v, want nil", c)
	}
	if r.Get(3) != nil {
		t.Fatal("GetCell allocated a row")
	}
	if got := r.CellMerge(3, 4); got != [2]int{0, 0} {
		t.Errorf("CellMerge = %v, want [0 0]", got)
	}
	r.GetCellOrNew(3, 4).Merge = []int{1, 2}
	if got := r.CellMerge(3, 4); got != [2]int{1, 2} {
		t.Errorf("CellMerge = %v, want [1 2]", got)
	}
}

func TestSetCellModes(t *testing.T) {
	r := NewRows(10, 1)
	r.SetCell(0, 0, &Cell{Text: "old", Style: Int(1), Merge: []int{1, 1}}, ModeAll)

	r.SetCell(0, 0, &Cell{Text: "new", Style: Int(9)}, ModeText)
	want := &Cell{Text: "new", Style: Int(1), Merge: []int{1, 1}}
	if diff := cmp.Diff(want, r.GetCell(0, 0)); diff != "" {
		t.Errorf("text mode (-want +got):\n%s", diff)
	}

	r.SetCell(0, 0, &Cell{Text: "ignored", Style: Int(2)}, ModeFormat)
	want = &Cell{Text: "new", Style: Int(2), Merge: []int{1, 1}}
	if diff := cmp.Diff(want, r.GetCell(0, 0)); diff != "" {
		t.Errorf("format mode without merge (-want +got):\n%s", diff)
	}

	r.SetCell(0, 0, &Cell{Style: Int(3), Merge: []int{2, 2}}, ModeFormat)
	want = &Cell{Text: "new", Style: Int(3), Merge: []int{2, 2}}
	if diff := cmp.Diff(want, r.GetCell(0, 0)); diff != "" {
		t.Errorf("format mode with merge (-want +got):\n%s", diff)
	}

	r.SetCell(0, 0, &Cell{Text: "all"}, ModeAll)
	if diff := cmp.Diff(&Cell{Text: "all"}, r.GetCell(0, 0)); diff != "" {
		t.Errorf("all mode (-want +got):\n%s", diff)
	}
}

func TestSetCellText(t *testing.T) {
	r := NewRows(10, 1)
	p, ok := r.SetCellText(1, 2, "hi")
	if !ok {
		t.Fatal("SetCellText on a new cell reported not editable")
	}
	if c, _ := p.Cell(1, 2); c.Text != "hi" {
		t.Errorf("patch cell = %+v, want text hi", c)
	}

	r.GetCellOrNew(1, 3).Editable = Bool(false)
	r.GetCell(1, 3).Text = "locked"
	p, ok = r.SetCellText(1, 3, "changed")
	if ok || !p.IsEmpty() {
		t.Errorf("SetCellText on locked cell = %+v, %v, want empty patch, false", p, ok)
	}
	if got := r.GetCell(1, 3).Text; got != "locked" {
		t.Errorf("locked cell text = %q, want locked", got)
	}
}

func TestHeights(t *testing.T) {
	r := NewRows(5, 2)
	p := r.SetHeight(1, 4)
	if h := p.Rows[1].Height; h == nil || *h != 4 {
		t.Errorf("SetHeight patch height = %v, want 4", h)
	}
	r.SetHide(3, true)
	if got := r.Height(3); got != 0 {
		t.Errorf("Height(hidden) = %d, want 0", got)
	}
	if got := r.SumHeight(0, 5, nil); got != 2+4+2+0+2 {
		t.Errorf("SumHeight = %d, want 10", got)
	}
	if got := r.SumHeight(0, 5, map[int]bool{1: true}); got != 6 {
		t.Errorf("SumHeight except row 1 = %d, want 6", got)
	}
	if got := r.TotalHeight(); got != 10 {
		t.Errorf("TotalHeight = %d, want 10", got)
	}
}

func TestUnhideStopsAtVisibleRow(t *testing.T) {
	r := NewRows(10, 1)
	r.SetHide(0, true)
	for ri := 2; ri <= 4; ri++ {
		r.SetHide(ri, true)
	}
	r.Unhide(5)
	for ri := 2; ri <= 4; ri++ {
		if r.IsHidden(ri) {
			t.Errorf("row %d still hidden", ri)
		}
	}
	if !r.IsHidden(0) {
		t.Error("row 0 above the visible row 1 was unhidden")
	}
}

func TestMaxCell(t *testing.T) {
	r := NewRows(10, 1)
	if ri, ci := r.MaxCell(); ri != 0 || ci != 0 {
		t.Errorf("MaxCell on empty = %d, %d", ri, ci)
	}
	fill(t, r, map[string]string{"C2": "a", "B7": "b", "A7": "c"})
	if ri, ci := r.MaxCell(); ri != 6 || ci != 1 {
		t.Errorf("MaxCell = %d, %d, want 6, 1", ri, ci)
	}
}

func TestDataJSON(t *testing.T) {
	r := NewRows(3, 1)
	r.SetHeight(0, 2)
	r.SetHide(1, true)
	r.SetCell(2, 1, &Cell{Text: "=A1", Style: Int(0), Merge: []int{1, 2}, Editable: Bool(false)}, ModeAll)

	b, err := json.Marshal(r.Data())
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, part := range []string{`"length":3`, `"0":{"height":2,"cells":{}}`, `"1":{"hide":true,"cells":{}}`, `"editable":false`} {
		if !strings.Contains(s, part) {
			t.Errorf("JSON %s does not contain %s", s, part)
		}
	}

	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r.Data(), d); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	loaded := NewRows(100, 1)
	loaded.SetData(d)
	if loaded.Len != 3 || loaded.GetCell(2, 1).Text != "=A1" {
		t.Errorf("SetData: len %d, cell %+v", loaded.Len, loaded.GetCell(2, 1))
	}
}

func TestDataJSONRejectsBadKeys(t *testing.T) {
	var d Data
	if err := json.Unmarshal([]byte(`{"length":1,"x":{}}`), &d); err == nil {
		t.Error("Unmarshal accepted a non-numeric row key")
	}
}

func TestReduce(t *testing.T) {
	var applied []Change
	p := Reduce([]Change{
		{Ri: 0, Ci: 0, Cell: &Cell{Text: "first"}},
		{Ri: 0, Ci: 0, Cell: &Cell{Text: "second"}},
		{Ri: 2, Ci: 1},
	}, func(ch Change) { applied = append(applied, ch) })

	if len(applied) != 3 {
		t.Errorf("apply ran %d times, want 3", len(applied))
	}
	want := Patch{Rows: map[int]*PatchRow{
		0: {Cells: map[int]Cell{0: {Text: "second"}}},
		2: {Cells: map[int]Cell{}},
	}}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Reduce (-want +got):\n%s", diff)
	}
}

func TestPatchMerge(t *testing.T) {
	p := NewPatch()
	p.Put(0, 0, &Cell{Text: "a"})
	p.Put(1, 0, &Cell{Text: "b"})

	later := NewPatch()
	later.Put(0, 0, &Cell{Text: "A"})
	later.SetLen(7)
	later.row(3).Height = Int(2)
	p.Merge(later)

	want := Patch{
		Rows: map[int]*PatchRow{
			0: {Cells: map[int]Cell{0: {Text: "A"}}},
			1: {Cells: map[int]Cell{0: {Text: "b"}}},
			3: {Height: Int(2), Cells: map[int]Cell{}},
		},
		Len: Int(7),
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Merge (-want +got):\n%s", diff)
	}
}

func TestPatchDoesNotAlias(t *testing.T) {
	r := NewRows(10, 1)
	p, _ := r.SetCellText(0, 0, "x")
	r.GetCell(0, 0).Text = "y"
	if c, _ := p.Cell(0, 0); c.Text != "x" {
		t.Errorf("patch followed a later edit: %q", c.Text)
	}
}

func TestCellRange(t *testing.T) {
	cr, err := ParseCellRange("$C$9:b2")
	if err != nil {
		t.Fatal(err)
	}
	if want := (CellRange{Sri: 1, Sci: 1, Eri: 8, Eci: 2}); cr != want {
		t.Errorf("ParseCellRange = %+v, want %+v", cr, want)
	}
	if rn, cn := cr.Size(); rn != 8 || cn != 2 {
		t.Errorf("Size = %d, %d", rn, cn)
	}
	if got := cr.String(); got != "B2:C9" {
		t.Errorf("String = %q", got)
	}
	if !cr.Contains(5, 2) || cr.Contains(0, 1) {
		t.Error("Contains gave the wrong answer")
	}

	var got [][2]int
	for ri, ci := range NewCellRange(1, 1, 0, 0).Cells() {
		got = append(got, [2]int{ri, ci})
	}
	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cells order (-want +got):\n%s", diff)
	}

	if _, err := ParseCellRange("A1:"); err == nil {
		t.Error("ParseCellRange accepted a missing end")
	}
	if s := Single(0, 0); s.Multiple() || s.String() != "A1" {
		t.Errorf("Single = %v", s)
	}
}
