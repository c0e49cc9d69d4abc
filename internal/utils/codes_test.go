package utils

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  abc123  ":    "ABC123",
		"MsKU 123456":   "MSKU 123456",
		"\tbk-2024-01 ": "BK-2024-01",
		"":              "",
		"   ":           "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlashGroups(t *testing.T) {
	if got := JoinSlash([]string{"A1", "", " B2 ", "C3"}); got != "A1/B2/C3" {
		t.Errorf("JoinSlash = %q", got)
	}

	got := SplitSlash("A1/B2/C3")
	want := []string{"A1", "B2", "C3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSlash = %v, want %v", got, want)
	}

	if SplitSlash("  ") != nil {
		t.Error("SplitSlash of blank should be nil")
	}
}

func TestBuildSenasaPSLinea(t *testing.T) {
	cases := []struct {
		senasa, psLinea, want string
	}{
		{"s-100", "l-200", "S-100/PS.L-200"},
		{"", "l-200", "PS.L-200"},
		{"s-100", "", "S-100"},
		{"", "", ""},
	}
	for _, c := range cases {
		if got := BuildSenasaPSLinea(c.senasa, c.psLinea); got != c.want {
			t.Errorf("BuildSenasaPSLinea(%q, %q) = %q, want %q", c.senasa, c.psLinea, got, c.want)
		}
	}
}

func TestExtractDNI(t *testing.T) {
	if got := ExtractDNI("DNI del conductor: 45678912 LIMA"); got != "45678912" {
		t.Errorf("ExtractDNI = %q", got)
	}
	if got := ExtractDNI("RUC 20123456789"); got != "" {
		t.Errorf("ExtractDNI should ignore 11-digit RUC, got %q", got)
	}
}

func TestExtractContainer(t *testing.T) {
	cases := map[string]string{
		"contenedor MSKU 123456-7 asignado": "MSKU1234567",
		"msku1234567":                       "MSKU1234567",
		"sin contenedor":                    "",
	}
	for in, want := range cases {
		if got := ExtractContainer(in); got != want {
			t.Errorf("ExtractContainer(%q) = %q, want %q", in, got, want)
		}
	}
}
