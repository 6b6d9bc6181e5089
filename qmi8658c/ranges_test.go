package qmi8658c

import (
	"errors"
	"testing"
)

func TestAccRangeScale(t *testing.T) {
	for r, g := range map[AccRange]float64{
		AccRange2G: 2, AccRange4G: 4, AccRange8G: 8, AccRange16G: 16,
	} {
		if r.G() != g {
			t.Errorf("%v.G(): got %v, want %v", r, r.G(), g)
		}
	}
}

func TestGyroRangeScale(t *testing.T) {
	for r, dps := range map[GyroRange]float64{
		GyroRange16DPS: 16, GyroRange32DPS: 32, GyroRange64DPS: 64,
		GyroRange128DPS: 128, GyroRange256DPS: 256, GyroRange512DPS: 512,
		GyroRange1024DPS: 1024, GyroRange2048DPS: 2048,
	} {
		if r.DPS() != dps {
			t.Errorf("%v.DPS(): got %v, want %v", r, r.DPS(), dps)
		}
	}
}

func TestAccRateValidity(t *testing.T) {
	for r := AccRate(0); r < 32; r++ {
		want := r <= 8 || (r >= 12 && r <= 15)
		if r.valid() != want {
			t.Errorf("AccRate(%d).valid(): got %v, want %v", r, r.valid(), want)
		}
		wantLP := r >= 12 && r <= 15
		if r.LowPower() != wantLP {
			t.Errorf("AccRate(%d).LowPower(): got %v, want %v", r, r.LowPower(), wantLP)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for s, want := range map[string]AccRange{
		"2g": AccRange2G, "4g": AccRange4G, "8g": AccRange8G, "16g": AccRange16G,
	} {
		got, err := ParseAccRange(s)
		if err != nil || got != want {
			t.Errorf("ParseAccRange(%q): got %v, %v", s, got, err)
		}
	}
	if r, err := ParseGyroRange("2048dps"); err != nil || r != GyroRange2048DPS {
		t.Errorf("ParseGyroRange: got %v, %v", r, err)
	}
	if r, err := ParseAccRate("lp3hz"); err != nil || r != AccRateLP3Hz {
		t.Errorf("ParseAccRate: got %v, %v", r, err)
	}
	if r, err := ParseGyroRate("31hz"); err != nil || r != GyroRate31Hz {
		t.Errorf("ParseGyroRate: got %v, %v", r, err)
	}

	// Empty strings fall back to the driver defaults.
	if r, _ := ParseAccRange(""); r != AccRange8G {
		t.Errorf("ParseAccRange(\"\"): got %v", r)
	}
	if r, _ := ParseGyroRange(""); r != GyroRange512DPS {
		t.Errorf("ParseGyroRange(\"\"): got %v", r)
	}

	for _, bad := range []string{"3g", "8", "fast", "513dps"} {
		if _, err := ParseAccRange(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseAccRange(%q): got %v, want ErrInvalidArgument", bad, err)
		}
	}
	if _, err := ParseAccRate("lp9000hz"); !errors.Is(err, ErrInvalidArgument) {
		t.Error("ParseAccRate accepted lp9000hz")
	}
	if _, err := ParseGyroRate("9000hz"); !errors.Is(err, ErrInvalidArgument) {
		t.Error("ParseGyroRate accepted 9000hz")
	}
}

func TestStrings(t *testing.T) {
	for _, tc := range []struct{ got, want string }{
		{AccRange8G.String(), "±8g"},
		{GyroRange512DPS.String(), "±512dps"},
		{AccRate125Hz.String(), "125Hz"},
		{AccRateLP21Hz.String(), "21Hz (low power)"},
		{GyroRate31Hz.String(), "31Hz"},
		{AccRange(12).String(), "AccRange(12)"},
	} {
		if tc.got != tc.want {
			t.Errorf("String(): got %q, want %q", tc.got, tc.want)
		}
	}
}
