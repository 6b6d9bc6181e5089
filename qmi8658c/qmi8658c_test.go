package qmi8658c

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// fakeDev is a register-file model of the chip behind an i2c.Bus. Writes
// land in regs and are counted; reads auto-increment from the register
// address sent in the write phase of the transaction.
type fakeDev struct {
	regs   [256]byte
	addr   uint16
	writes int   // transactions that wrote at least one register
	reads  []int // register addresses the read transactions started at
	err    error // when set, every transaction fails with it
}

func newFakeDev() *fakeDev {
	f := &fakeDev{addr: DefaultAddr}
	f.regs[regWhoAmI] = chipID
	f.regs[regRevision] = 0x7c
	return f
}

func (f *fakeDev) String() string { return "fake" }

func (f *fakeDev) SetSpeed(physic.Frequency) error { return nil }

func (f *fakeDev) Tx(addr uint16, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	if addr != f.addr {
		return errors.New("fake: no device at address")
	}
	if len(w) == 0 {
		return errors.New("fake: transaction without register address")
	}
	reg := int(w[0])
	if len(w) > 1 {
		f.writes++
		for _, b := range w[1:] {
			f.regs[reg] = b
			reg++
		}
	}
	if len(r) > 0 {
		f.reads = append(f.reads, reg)
		for i := range r {
			r[i] = f.regs[reg]
			reg++
		}
	}
	return nil
}

func (f *fakeDev) setLE16(reg int, v int16) {
	f.regs[reg] = byte(uint16(v))
	f.regs[reg+1] = byte(uint16(v) >> 8)
}

func mustNew(t *testing.T, f *fakeDev, opts *Opts) *Dev {
	t.Helper()
	d, err := New(f, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewDeviceNotFound(t *testing.T) {
	f := newFakeDev()
	f.regs[regWhoAmI] = 0xff
	d, err := New(f, nil)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("New: got %v, want ErrDeviceNotFound", err)
	}
	if d != nil {
		t.Fatal("New returned a device despite the identity mismatch")
	}
	if f.writes != 0 {
		t.Fatalf("New wrote %d registers after the identity mismatch", f.writes)
	}
}

func TestNewBusError(t *testing.T) {
	f := newFakeDev()
	f.err = errors.New("wire fell out")
	if _, err := New(f, nil); !errors.Is(err, f.err) {
		t.Fatalf("New: got %v, want wrapped bus error", err)
	}
}

func TestNewInitSequence(t *testing.T) {
	// Transaction-exact check of the power-on configuration.
	b := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddr, W: []byte{regWhoAmI}, R: []byte{chipID, 0x7c}},
			{Addr: DefaultAddr, W: []byte{regCtrl1, ctrl1Init}},
			{Addr: DefaultAddr, W: []byte{regCtrl2, 0x26}}, // ±8g, 125Hz
			{Addr: DefaultAddr, W: []byte{regCtrl3, 0x56}}, // ±512dps, 125Hz
			{Addr: DefaultAddr, W: []byte{regCtrl4, 0x00}},
			{Addr: DefaultAddr, W: []byte{regCtrl5, 0x00}},
			{Addr: DefaultAddr, W: []byte{regCtrl6, 0x00}},
			{Addr: DefaultAddr, W: []byte{regCtrl7, ctrl7AccEnable | ctrl7GyroEnable}},
		},
		DontPanic: true,
	}
	d, err := New(b, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Revision() != 0x7c {
		t.Fatalf("Revision: got %#02x, want 0x7c", d.Revision())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("playback left over: %v", err)
	}
}

func TestAccelerationScaling(t *testing.T) {
	raws := []int16{-32768, -16384, -1, 0, 1, 255, 16384, 32767}
	for _, r := range []AccRange{AccRange2G, AccRange4G, AccRange8G, AccRange16G} {
		f := newFakeDev()
		opts := DefaultOpts
		opts.AccRange = r
		d := mustNew(t, f, &opts)
		for _, raw := range raws {
			f.setLE16(regAccelOut, raw)
			f.setLE16(regAccelOut+2, -raw)
			f.setLE16(regAccelOut+4, raw/2)
			x, y, z, err := d.Acceleration()
			if err != nil {
				t.Fatalf("%v: Acceleration: %v", r, err)
			}
			want := func(v int16) float64 { return float64(v) * r.G() / 32768 * StandardGravity }
			for i, c := range []struct{ got, want float64 }{
				{x, want(raw)}, {y, want(-raw)}, {z, want(raw / 2)},
			} {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Fatalf("%v raw=%d axis %d: got %v, want %v", r, raw, i, c.got, c.want)
				}
			}
		}
	}
}

func TestAccelerationKnownBytes(t *testing.T) {
	// 0x4000 = 16384 on X at ±2g is exactly 1 g.
	f := newFakeDev()
	opts := DefaultOpts
	opts.AccRange = AccRange2G
	d := mustNew(t, f, &opts)
	copy(f.regs[regAccelOut:], []byte{0x00, 0x40, 0x00, 0x00, 0x00, 0x00})
	x, y, z, err := d.Acceleration()
	if err != nil {
		t.Fatalf("Acceleration: %v", err)
	}
	if math.Abs(x-StandardGravity) > 1e-9 || y != 0 || z != 0 {
		t.Fatalf("got (%v, %v, %v), want (%v, 0, 0)", x, y, z, StandardGravity)
	}
}

func TestGyroScaling(t *testing.T) {
	ranges := []GyroRange{
		GyroRange16DPS, GyroRange32DPS, GyroRange64DPS, GyroRange128DPS,
		GyroRange256DPS, GyroRange512DPS, GyroRange1024DPS, GyroRange2048DPS,
	}
	raws := []int16{-32768, -1, 0, 1, 12345, 32767}
	for _, r := range ranges {
		f := newFakeDev()
		opts := DefaultOpts
		opts.GyroRange = r
		d := mustNew(t, f, &opts)
		for _, raw := range raws {
			f.setLE16(regGyroOut, raw)
			f.setLE16(regGyroOut+2, 0)
			f.setLE16(regGyroOut+4, raw)
			x, y, z, err := d.Gyro()
			if err != nil {
				t.Fatalf("%v: Gyro: %v", r, err)
			}
			want := float64(raw) * r.DPS() / 32768 * math.Pi / 180
			if math.Abs(x-want) > 1e-9 || y != 0 || math.Abs(z-want) > 1e-9 {
				t.Fatalf("%v raw=%d: got (%v, %v, %v), want (%v, 0, %v)", r, raw, x, y, z, want, want)
			}
		}
	}
}

func TestGyroDisabledFailsFast(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	if _, _, _, err := d.Gyro(); err != nil {
		t.Fatalf("Gyro while enabled: %v", err)
	}
	if err := d.SetGyroEnable(false); err != nil {
		t.Fatalf("SetGyroEnable(false): %v", err)
	}
	reads := len(f.reads)
	if _, _, _, err := d.Gyro(); !errors.Is(err, ErrGyroDisabled) {
		t.Fatalf("Gyro while disabled: got %v, want ErrGyroDisabled", err)
	}
	if _, _, _, err := d.RawGyro(); !errors.Is(err, ErrGyroDisabled) {
		t.Fatalf("RawGyro while disabled: got %v, want ErrGyroDisabled", err)
	}
	if len(f.reads) != reads {
		t.Fatal("disabled gyro read still touched the bus")
	}
	if err := d.SetGyroEnable(true); err != nil {
		t.Fatalf("SetGyroEnable(true): %v", err)
	}
	if _, _, _, err := d.Gyro(); err != nil {
		t.Fatalf("Gyro after re-enable: %v", err)
	}
}

func TestTemperature(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	for _, tc := range []struct {
		raw  int16
		want float64
	}{
		{0, 0},
		{25*256 + 128, 25.5},
		{-256, -1},
		{int16(0x1980), 25.5},
	} {
		f.setLE16(regTempOut, tc.raw)
		got, err := d.Temperature()
		if err != nil {
			t.Fatalf("Temperature: %v", err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("raw=%d: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	copy(f.regs[regTimeOut:], []byte{0x01, 0x02, 0x03})
	ts, err := d.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if ts != 0x030201 {
		t.Fatalf("got %#06x, want 0x030201", ts)
	}
}

func TestLowPowerRateDisablesGyro(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	if !d.GyroEnabled() {
		t.Fatal("gyro should be enabled after New")
	}
	if err := d.SetAccelerometerRate(AccRateLP21Hz); err != nil {
		t.Fatalf("SetAccelerometerRate: %v", err)
	}
	if d.GyroEnabled() {
		t.Fatal("gyro still enabled after switching to a low-power rate")
	}
	if f.regs[regCtrl7]&ctrl7GyroEnable != 0 {
		t.Fatal("gyro enable bit still set in CTRL7")
	}
	if got := f.regs[regCtrl2] & 0x0f; got != byte(AccRateLP21Hz) {
		t.Fatalf("CTRL2 rate bits: got %#x, want %#x", got, byte(AccRateLP21Hz))
	}
	if d.AccelerometerRate() != AccRateLP21Hz {
		t.Fatalf("cached rate: got %v", d.AccelerometerRate())
	}
}

func TestSetGyroEnableConflict(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	if err := d.SetAccelerometerRate(AccRateLP3Hz); err != nil {
		t.Fatalf("SetAccelerometerRate: %v", err)
	}
	writes := f.writes
	if err := d.SetGyroEnable(true); !errors.Is(err, ErrConfigConflict) {
		t.Fatalf("SetGyroEnable(true): got %v, want ErrConfigConflict", err)
	}
	if d.GyroEnabled() {
		t.Fatal("gyro enable cache changed by a rejected transition")
	}
	if f.writes != writes {
		t.Fatal("rejected transition touched the bus")
	}
	// Leaving low-power mode makes the transition legal again.
	if err := d.SetAccelerometerRate(AccRate125Hz); err != nil {
		t.Fatalf("SetAccelerometerRate: %v", err)
	}
	if err := d.SetGyroEnable(true); err != nil {
		t.Fatalf("SetGyroEnable after leaving low power: %v", err)
	}
}

func TestSetRangesInvalidArgument(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	writes := f.writes
	if err := d.SetRanges(AccRange(9), GyroRange512DPS); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad accel range: got %v, want ErrInvalidArgument", err)
	}
	if err := d.SetRanges(AccRange2G, GyroRange(8)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad gyro range: got %v, want ErrInvalidArgument", err)
	}
	if f.writes != writes {
		t.Fatalf("invalid SetRanges performed %d bus writes", f.writes-writes)
	}
	if d.AccelerometerRange() != AccRange8G || d.GyroscopeRange() != GyroRange512DPS {
		t.Fatal("cached ranges changed by a rejected call")
	}
}

func TestSetRanges(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	if err := d.SetRanges(AccRange16G, GyroRange2048DPS); err != nil {
		t.Fatalf("SetRanges: %v", err)
	}
	if got := f.regs[regCtrl2]; got != byte(AccRange16G)<<4|byte(AccRate125Hz) {
		t.Fatalf("CTRL2: got %#02x", got)
	}
	if got := f.regs[regCtrl3]; got != byte(GyroRange2048DPS)<<4|byte(GyroRate125Hz) {
		t.Fatalf("CTRL3: got %#02x", got)
	}
	// The new range must apply to subsequent samples.
	f.setLE16(regAccelOut, 16384)
	x, _, _, err := d.Acceleration()
	if err != nil {
		t.Fatalf("Acceleration: %v", err)
	}
	if want := 8 * StandardGravity; math.Abs(x-want) > 1e-9 {
		t.Fatalf("got %v, want %v", x, want)
	}
}

func TestInvalidRates(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	writes := f.writes
	for _, r := range []AccRate{9, 10, 11, 16, 200} {
		if err := d.SetAccelerometerRate(r); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("AccRate(%d): got %v, want ErrInvalidArgument", r, err)
		}
	}
	if err := d.SetGyroRate(GyroRate(9)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("GyroRate(9) accepted")
	}
	if f.writes != writes {
		t.Fatal("invalid rate setters touched the bus")
	}
}

func TestBusErrorLeavesCacheUnchanged(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	f.err = errors.New("bus gone")
	if err := d.SetRanges(AccRange2G, GyroRange16DPS); !errors.Is(err, f.err) {
		t.Fatalf("SetRanges: got %v, want wrapped bus error", err)
	}
	if d.AccelerometerRange() != AccRange8G || d.GyroscopeRange() != GyroRange512DPS {
		t.Fatal("cache changed despite failed write")
	}
	if err := d.SetAccelerometerRate(AccRate500Hz); !errors.Is(err, f.err) {
		t.Fatalf("SetAccelerometerRate: got %v, want wrapped bus error", err)
	}
	if d.AccelerometerRate() != AccRate125Hz {
		t.Fatal("rate cache changed despite failed write")
	}
	if _, _, _, err := d.Acceleration(); !errors.Is(err, f.err) {
		t.Fatalf("Acceleration: got %v, want wrapped bus error", err)
	}
}

func TestHalt(t *testing.T) {
	f := newFakeDev()
	d := mustNew(t, f, nil)
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if f.regs[regCtrl7] != 0 {
		t.Fatalf("CTRL7 after Halt: %#02x", f.regs[regCtrl7])
	}
	if d.AccelerometerEnabled() || d.GyroEnabled() {
		t.Fatal("enable cache not cleared by Halt")
	}
}

func TestNewRejectsLowPowerOpts(t *testing.T) {
	f := newFakeDev()
	opts := DefaultOpts
	opts.AccRate = AccRateLP128Hz
	if _, err := New(f, &opts); !errors.Is(err, ErrConfigConflict) {
		t.Fatalf("New: got %v, want ErrConfigConflict", err)
	}
}
