package chat

import "testing"

func TestMatchIntent(t *testing.T) {
	cases := []struct {
		question string
		want     intent
	}{
		{"¿cuántos registros pendientes hay?", intentPending},
		{"procesados de hoy", intentProcessedToday},
		{"registros anulados este mes", intentAnnulled},
		{"qué transportista tiene más registros", intentTopCarrier},
		{"cuantos registros hay hoy", intentTotalToday},
		{"dame un resumen del clima", intentUnknown},
	}

	for _, c := range cases {
		if got := matchIntent(c.question); got != c.want {
			t.Errorf("matchIntent(%q) = %v, want %v", c.question, got, c.want)
		}
	}
}
