package scanner

import (
	"reflect"
	"testing"
)

func TestRouteScanFocusedField(t *testing.T) {
	form := FormState{LastFocused: FieldAWB, Booking: "BK-1"}

	next, out := RouteScan(form, "ABCD123456-7")

	if next.AWB != "ABCD123456-7" {
		t.Errorf("AWB = %q, want ABCD123456-7", next.AWB)
	}
	if next.Booking != "BK-1" {
		t.Error("other fields must be unchanged")
	}
	if out.Action != ActionReplaced || out.Field != FieldAWB {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRouteScanFocusedFieldOverwrites(t *testing.T) {
	form := FormState{LastFocused: FieldBooking, Booking: "OLD"}

	next, _ := RouteScan(form, "bk-2024-99")

	if next.Booking != "BK-2024-99" {
		t.Errorf("Booking = %q, want normalized BK-2024-99", next.Booking)
	}
}

func TestRouteScanDNIHeuristic(t *testing.T) {
	// No focused field.
	next, out := RouteScan(FormState{}, "87654321")
	if next.DNI != "87654321" {
		t.Errorf("DNI = %q, want 87654321", next.DNI)
	}
	if out.Field != FieldDNI || out.Action != ActionReplaced {
		t.Errorf("outcome = %+v", out)
	}

	// A focused array field also falls through to the heuristic.
	next, _ = RouteScan(FormState{LastFocused: FieldPSBetaItems}, "87654321")
	if next.DNI != "87654321" {
		t.Errorf("DNI = %q with array focus, want 87654321", next.DNI)
	}

	// 8 characters but not all digits is not a DNI.
	next, out = RouteScan(FormState{}, "8765432X")
	if next.DNI != "" {
		t.Errorf("DNI = %q, want empty", next.DNI)
	}
	if out.Action != ActionAppended {
		t.Errorf("non-numeric payload should fall through to seals, got %+v", out)
	}
}

func TestRouteScanSealAppend(t *testing.T) {
	form := FormState{PSBetaItems: []string{"SEAL002"}}

	next, out := RouteScan(form, "SEAL001")

	want := []string{"SEAL002", "SEAL001"}
	if !reflect.DeepEqual(next.PSBetaItems, want) {
		t.Errorf("PSBetaItems = %v, want %v", next.PSBetaItems, want)
	}
	if out.Action != ActionAppended || out.Field != FieldPSBetaItems {
		t.Errorf("outcome = %+v", out)
	}
	if len(form.PSBetaItems) != 1 {
		t.Error("input form must not be mutated")
	}
}

func TestRouteScanSealDuplicate(t *testing.T) {
	form := FormState{PSBetaItems: []string{"SEAL002"}}

	next, out := RouteScan(form, "SEAL002")

	if !reflect.DeepEqual(next.PSBetaItems, []string{"SEAL002"}) {
		t.Errorf("PSBetaItems = %v, want unchanged", next.PSBetaItems)
	}
	if out.Action != ActionDuplicate {
		t.Errorf("outcome = %+v, want duplicate warning", out)
	}
}

func TestRouteScanThermographFocus(t *testing.T) {
	form := FormState{LastFocused: FieldTermografoItems, TermografoItems: []string{"T-1"}}

	next, out := RouteScan(form, "t-2")

	want := []string{"T-1", "T-2"}
	if !reflect.DeepEqual(next.TermografoItems, want) {
		t.Errorf("TermografoItems = %v, want %v", next.TermografoItems, want)
	}
	if len(next.PSBetaItems) != 0 {
		t.Error("seal list must be untouched")
	}
	if out.Field != FieldTermografoItems {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRouteScanNormalizesOnAcceptance(t *testing.T) {
	next, _ := RouteScan(FormState{}, "  seal ab  ")
	if !reflect.DeepEqual(next.PSBetaItems, []string{"SEAL AB"}) {
		t.Errorf("PSBetaItems = %v, want [SEAL AB]", next.PSBetaItems)
	}
}
