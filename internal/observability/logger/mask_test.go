package logger

import "testing"

func TestMaskPlate(t *testing.T) {
	cases := map[string]string{
		"AB-1234": "****34",
		"XY":      "****",
		"":        "",
		"  CD-9 ": "****-9",
	}
	for input, want := range cases {
		if got := MaskPlate(input); got != want {
			t.Errorf("MaskPlate(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"license_plate": "AB-1234",
		"lot_id":        "42",
		"nested": map[string]any{
			"plate": "XY-9876",
		},
	}
	masked := MaskJSON(input)
	if masked["license_plate"] != "****34" {
		t.Fatalf("expected masked plate, got %v", masked["license_plate"])
	}
	if masked["lot_id"] != "42" {
		t.Fatalf("expected lot_id untouched, got %v", masked["lot_id"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["plate"] != "****76" {
		t.Fatalf("expected masked nested plate, got %v", nested["plate"])
	}
}
