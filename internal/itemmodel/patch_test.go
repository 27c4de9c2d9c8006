package itemmodel

import "testing"

func TestPatchConstructors(t *testing.T) {
	unset := Unset[string]()
	if unset.Present {
		t.Error("Unset() should not be Present")
	}

	cleared := Clear[string]()
	if !cleared.Present || cleared.Value != nil {
		t.Error("Clear() should be Present with a nil Value")
	}

	set := Set("x")
	if !set.Present || set.Value == nil || *set.Value != "x" {
		t.Error("Set() should be Present with the given value")
	}
}
