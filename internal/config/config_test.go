package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"

	"github.com/tkomde/go-qmi8658c/qmi8658c"
)

func TestDriverOpts(t *testing.T) {
	opt := IMUOpt{
		ID:        "imu_0",
		Addr:      0x6A,
		AccRange:  "16g",
		AccRate:   "500hz",
		GyroRange: "2048dps",
		GyroRate:  "250hz",
	}
	got, err := opt.DriverOpts()
	if err != nil {
		t.Fatalf("DriverOpts: %v", err)
	}
	want := qmi8658c.Opts{
		Addr:      0x6A,
		AccRange:  qmi8658c.AccRange16G,
		AccRate:   qmi8658c.AccRate500Hz,
		GyroRange: qmi8658c.GyroRange2048DPS,
		GyroRate:  qmi8658c.GyroRate250Hz,
	}
	if *got != want {
		t.Fatalf("DriverOpts: got %+v, want %+v", *got, want)
	}
}

func TestDriverOptsDefaults(t *testing.T) {
	// Unset strings fall back to the chip defaults.
	got, err := IMUOpt{ID: "imu_0"}.DriverOpts()
	if err != nil {
		t.Fatalf("DriverOpts: %v", err)
	}
	if got.AccRange != qmi8658c.AccRange8G || got.GyroRange != qmi8658c.GyroRange512DPS {
		t.Fatalf("DriverOpts: got %+v", *got)
	}
}

func TestDriverOptsInvalid(t *testing.T) {
	for _, opt := range []IMUOpt{
		{AccRange: "3g"},
		{AccRate: "99hz"},
		{GyroRange: "1dps"},
		{GyroRate: "lp3hz"},
	} {
		if _, err := opt.DriverOpts(); !errors.Is(err, qmi8658c.ErrInvalidArgument) {
			t.Errorf("DriverOpts(%+v): got %v, want ErrInvalidArgument", opt, err)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		imu  []IMUOpt
		ok   bool
	}{
		{"defaults", NewIMUCapOpt().IMU, true},
		{"empty id", []IMUOpt{{}}, false},
		{"duplicate id", []IMUOpt{{ID: "a"}, {ID: "a"}}, false},
		{"bad range", []IMUOpt{{ID: "a", AccRange: "32g"}}, false},
		{"two sensors", []IMUOpt{{ID: "a"}, {ID: "b", Bus: "/dev/i2c-1", Addr: 0x6A}}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			desc := NewIMUCapDesc()
			desc.Opt.IMU = tc.imu
			err := desc.Validate(viper.New())
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("Validate accepted a bad config")
			}
		})
	}
}
