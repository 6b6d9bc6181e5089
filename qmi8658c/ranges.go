package qmi8658c

import "fmt"

// AccRange selects the accelerometer full-scale range. The value is the
// bit pattern written to CTRL2 bits 6:4.
type AccRange uint8

const (
	AccRange2G  AccRange = 0 // ±2 g
	AccRange4G  AccRange = 1 // ±4 g
	AccRange8G  AccRange = 2 // ±8 g (power-on default of this driver)
	AccRange16G AccRange = 3 // ±16 g
)

func (r AccRange) valid() bool {
	return r <= AccRange16G
}

// G returns the full-scale range in g.
func (r AccRange) G() float64 {
	return float64(uint(2) << r)
}

func (r AccRange) String() string {
	if !r.valid() {
		return fmt.Sprintf("AccRange(%d)", uint8(r))
	}
	return fmt.Sprintf("±%.0fg", r.G())
}

// GyroRange selects the gyroscope full-scale range. The value is the bit
// pattern written to CTRL3 bits 6:4.
type GyroRange uint8

const (
	GyroRange16DPS   GyroRange = 0 // ±16 °/s
	GyroRange32DPS   GyroRange = 1 // ±32 °/s
	GyroRange64DPS   GyroRange = 2 // ±64 °/s
	GyroRange128DPS  GyroRange = 3 // ±128 °/s
	GyroRange256DPS  GyroRange = 4 // ±256 °/s
	GyroRange512DPS  GyroRange = 5 // ±512 °/s (power-on default of this driver)
	GyroRange1024DPS GyroRange = 6 // ±1024 °/s
	GyroRange2048DPS GyroRange = 7 // ±2048 °/s
)

func (r GyroRange) valid() bool {
	return r <= GyroRange2048DPS
}

// DPS returns the full-scale range in degrees per second.
func (r GyroRange) DPS() float64 {
	return float64(uint(16) << r)
}

func (r GyroRange) String() string {
	if !r.valid() {
		return fmt.Sprintf("GyroRange(%d)", uint8(r))
	}
	return fmt.Sprintf("±%.0fdps", r.DPS())
}

// AccRate selects the accelerometer output data rate and power mode. The
// value is the bit pattern written to CTRL2 bits 3:0. The low-power rates
// are only usable with the gyroscope disabled; the hardware does not
// support both at once.
type AccRate uint8

const (
	AccRate8000Hz AccRate = 0
	AccRate4000Hz AccRate = 1
	AccRate2000Hz AccRate = 2
	AccRate1000Hz AccRate = 3
	AccRate500Hz  AccRate = 4
	AccRate250Hz  AccRate = 5
	AccRate125Hz  AccRate = 6 // power-on default of this driver
	AccRate62Hz   AccRate = 7
	AccRate31Hz   AccRate = 8

	AccRateLP128Hz AccRate = 12
	AccRateLP21Hz  AccRate = 13
	AccRateLP11Hz  AccRate = 14
	AccRateLP3Hz   AccRate = 15
)

func (r AccRate) valid() bool {
	// 9..11 are reserved on this part.
	return r <= AccRate31Hz || (r >= AccRateLP128Hz && r <= AccRateLP3Hz)
}

// LowPower reports whether the rate is one of the low-power modes.
func (r AccRate) LowPower() bool {
	return r >= AccRateLP128Hz && r <= AccRateLP3Hz
}

// Hz returns the nominal output data rate in Hz.
func (r AccRate) Hz() float64 {
	switch r {
	case AccRate8000Hz:
		return 8000
	case AccRate4000Hz:
		return 4000
	case AccRate2000Hz:
		return 2000
	case AccRate1000Hz:
		return 1000
	case AccRate500Hz:
		return 500
	case AccRate250Hz:
		return 250
	case AccRate125Hz:
		return 125
	case AccRateLP128Hz:
		return 128
	case AccRate62Hz:
		return 62.5
	case AccRate31Hz:
		return 31.25
	case AccRateLP21Hz:
		return 21
	case AccRateLP11Hz:
		return 11
	case AccRateLP3Hz:
		return 3
	}
	return 0
}

func (r AccRate) String() string {
	if !r.valid() {
		return fmt.Sprintf("AccRate(%d)", uint8(r))
	}
	if r.LowPower() {
		return fmt.Sprintf("%.0fHz (low power)", r.Hz())
	}
	return fmt.Sprintf("%.0fHz", r.Hz())
}

// GyroRate selects the gyroscope output data rate, CTRL3 bits 3:0.
type GyroRate uint8

const (
	GyroRate8000Hz GyroRate = 0
	GyroRate4000Hz GyroRate = 1
	GyroRate2000Hz GyroRate = 2
	GyroRate1000Hz GyroRate = 3
	GyroRate500Hz  GyroRate = 4
	GyroRate250Hz  GyroRate = 5
	GyroRate125Hz  GyroRate = 6 // power-on default of this driver
	GyroRate62Hz   GyroRate = 7
	GyroRate31Hz   GyroRate = 8
)

func (r GyroRate) valid() bool {
	return r <= GyroRate31Hz
}

// Hz returns the nominal output data rate in Hz.
func (r GyroRate) Hz() float64 {
	if !r.valid() {
		return 0
	}
	return 8000 / float64(uint(1)<<r)
}

func (r GyroRate) String() string {
	if !r.valid() {
		return fmt.Sprintf("GyroRate(%d)", uint8(r))
	}
	return fmt.Sprintf("%.0fHz", r.Hz())
}

// ParseAccRange maps a configuration string like "8g" to an AccRange.
func ParseAccRange(s string) (AccRange, error) {
	switch s {
	case "2g":
		return AccRange2G, nil
	case "4g":
		return AccRange4G, nil
	case "8g", "":
		return AccRange8G, nil
	case "16g":
		return AccRange16G, nil
	}
	return 0, fmt.Errorf("%w: accelerometer range %q", ErrInvalidArgument, s)
}

// ParseGyroRange maps a configuration string like "512dps" to a GyroRange.
func ParseGyroRange(s string) (GyroRange, error) {
	switch s {
	case "16dps":
		return GyroRange16DPS, nil
	case "32dps":
		return GyroRange32DPS, nil
	case "64dps":
		return GyroRange64DPS, nil
	case "128dps":
		return GyroRange128DPS, nil
	case "256dps":
		return GyroRange256DPS, nil
	case "512dps", "":
		return GyroRange512DPS, nil
	case "1024dps":
		return GyroRange1024DPS, nil
	case "2048dps":
		return GyroRange2048DPS, nil
	}
	return 0, fmt.Errorf("%w: gyroscope range %q", ErrInvalidArgument, s)
}

// ParseAccRate maps a configuration string like "125hz" or "lp21hz" to an
// AccRate.
func ParseAccRate(s string) (AccRate, error) {
	switch s {
	case "8000hz":
		return AccRate8000Hz, nil
	case "4000hz":
		return AccRate4000Hz, nil
	case "2000hz":
		return AccRate2000Hz, nil
	case "1000hz":
		return AccRate1000Hz, nil
	case "500hz":
		return AccRate500Hz, nil
	case "250hz":
		return AccRate250Hz, nil
	case "125hz", "":
		return AccRate125Hz, nil
	case "62hz":
		return AccRate62Hz, nil
	case "31hz":
		return AccRate31Hz, nil
	case "lp128hz":
		return AccRateLP128Hz, nil
	case "lp21hz":
		return AccRateLP21Hz, nil
	case "lp11hz":
		return AccRateLP11Hz, nil
	case "lp3hz":
		return AccRateLP3Hz, nil
	}
	return 0, fmt.Errorf("%w: accelerometer rate %q", ErrInvalidArgument, s)
}

// ParseGyroRate maps a configuration string like "125hz" to a GyroRate.
func ParseGyroRate(s string) (GyroRate, error) {
	switch s {
	case "8000hz":
		return GyroRate8000Hz, nil
	case "4000hz":
		return GyroRate4000Hz, nil
	case "2000hz":
		return GyroRate2000Hz, nil
	case "1000hz":
		return GyroRate1000Hz, nil
	case "500hz":
		return GyroRate500Hz, nil
	case "250hz":
		return GyroRate250Hz, nil
	case "125hz", "":
		return GyroRate125Hz, nil
	case "62hz":
		return GyroRate62Hz, nil
	case "31hz":
		return GyroRate31Hz, nil
	}
	return 0, fmt.Errorf("%w: gyroscope rate %q", ErrInvalidArgument, s)
}
