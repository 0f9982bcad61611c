package billing

import (
	"errors"
	"testing"
)

func TestParseApplianceInput(t *testing.T) {
	tests := []struct {
		name      string
		raw       RawAppliance
		wantErr   bool
		wantField string
		want      ApplianceInput
	}{
		{
			name: "valid",
			raw:  RawAppliance{Name: " Fan ", Power: "100", Hours: "5.5", Days: " 30"},
			want: ApplianceInput{Name: "Fan", PowerWatts: 100, HoursPerDay: 5.5, DaysPerMonth: 30},
		},
		{
			name: "zero hours",
			raw:  RawAppliance{Name: "Standby", Power: "3", Hours: "0", Days: "30"},
			want: ApplianceInput{Name: "Standby", PowerWatts: 3, HoursPerDay: 0, DaysPerMonth: 30},
		},
		{name: "missing name", raw: RawAppliance{Power: "1", Hours: "1", Days: "1"}, wantErr: true, wantField: "name"},
		{name: "text power", raw: RawAppliance{Name: "x", Power: "lots", Hours: "1", Days: "1"}, wantErr: true, wantField: "powerWatts"},
		{name: "NaN power", raw: RawAppliance{Name: "x", Power: "NaN", Hours: "1", Days: "1"}, wantErr: true, wantField: "powerWatts"},
		{name: "negative power", raw: RawAppliance{Name: "x", Power: "-5", Hours: "1", Days: "1"}, wantErr: true, wantField: "powerWatts"},
		{name: "infinite hours", raw: RawAppliance{Name: "x", Power: "5", Hours: "+Inf", Days: "1"}, wantErr: true, wantField: "hoursPerDay"},
		{name: "negative hours", raw: RawAppliance{Name: "x", Power: "5", Hours: "-1", Days: "1"}, wantErr: true, wantField: "hoursPerDay"},
		{name: "empty days", raw: RawAppliance{Name: "x", Power: "5", Hours: "1", Days: ""}, wantErr: true, wantField: "daysPerMonth"},
		{name: "zero days", raw: RawAppliance{Name: "x", Power: "5", Hours: "1", Days: "0"}, wantErr: true, wantField: "daysPerMonth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseApplianceInput(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseApplianceInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected *ValidationError, got %T", err)
				}
				if vErr.Field != tt.wantField {
					t.Errorf("field = %q, want %q", vErr.Field, tt.wantField)
				}
				return
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseUnitPrice(t *testing.T) {
	if v, err := ParseUnitPrice("8.5"); err != nil || v != 8.5 {
		t.Fatalf("ParseUnitPrice(8.5) = %v, %v", v, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc", "Inf"} {
		if _, err := ParseUnitPrice(raw); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseUnitPrice(%q) error = %v, want validation error", raw, err)
		}
	}
}
