package quad

import "testing"

func TestNewTempMonotonic(t *testing.T) {
	tbl := New()
	if got := tbl.NewTemp(); got != "t1" {
		t.Errorf("got %s, want t1", got)
	}
	if got := tbl.NewTemp(); got != "t2" {
		t.Errorf("got %s, want t2", got)
	}
	tbl.ResetTemps()
	if got := tbl.NewTemp(); got != "t1" {
		t.Errorf("after reset got %s, want t1", got)
	}
}

func TestNewLabelUnique(t *testing.T) {
	tbl := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		l := tbl.NewLabel("true")
		if seen[l] {
			t.Fatalf("duplicate label %s", l)
		}
		seen[l] = true
	}
}

func TestGroupByBlocksKeepsMainFirstAndSpansContiguous(t *testing.T) {
	tbl := New()
	tbl.Emit("=", "1", "", "x")
	tbl.Emit("FUNC", "add", "2", "integer")
	tbl.Emit("param", "a", "", "")
	tbl.Emit("RETURN", "a", "", "")
	tbl.Emit("endfunc", "add", "", "")
	tbl.Emit("=", "2", "", "y")
	tbl.Emit("FUNC", "sub", "2", "integer")
	tbl.Emit("endfunc", "sub", "", "")

	grouped := tbl.GroupByBlocks()

	if grouped[0].Result != "x" {
		t.Fatalf("expected global prefix first, got %+v", grouped[0])
	}
	if grouped[1].Result != "y" {
		t.Fatalf("expected second global quad before function spans, got %+v", grouped[1])
	}

	// add's span must be contiguous: FUNC add ... endfunc add
	addStart := -1
	for i, q := range grouped {
		if q.Op == "FUNC" && q.Arg1 == "add" {
			addStart = i
		}
	}
	if addStart == -1 {
		t.Fatal("FUNC add not found")
	}
	if grouped[addStart+1].Op != "param" || grouped[addStart+2].Op != "RETURN" || grouped[addStart+3].Op != "endfunc" {
		t.Fatalf("add span not contiguous: %+v", grouped[addStart:addStart+4])
	}
}

func TestRenderRaw(t *testing.T) {
	got := Render(3, Quad{Op: "+", Arg1: "t1", Arg2: "t2", Result: "t3"})
	want := "003: (+, t1, t2, t3)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
