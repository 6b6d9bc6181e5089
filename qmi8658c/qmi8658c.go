package qmi8658c

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// StandardGravity is the conversion factor between g and m/s².
const StandardGravity = 9.80665

// Opts holds the construction options.
type Opts struct {
	// Addr is the I2C slave address. Defaults to DefaultAddr (0x6B, SA0
	// high); boards strapping SA0 low use 0x6A.
	Addr uint16

	AccRange  AccRange
	AccRate   AccRate
	GyroRange GyroRange
	GyroRate  GyroRate
}

// DefaultOpts mirrors the power-on configuration the original vendor
// samples use: ±8g @ 125Hz, ±512dps @ 125Hz, both sensors enabled.
var DefaultOpts = Opts{
	Addr:      DefaultAddr,
	AccRange:  AccRange8G,
	AccRate:   AccRate125Hz,
	GyroRange: GyroRange512DPS,
	GyroRate:  GyroRate125Hz,
}

// Dev is a handle to a QMI8658C on an I2C bus.
//
// Dev is not safe for concurrent use; the caller must serialize access to
// it and to the underlying bus.
type Dev struct {
	dev i2c.Dev
	rev byte

	accRange    AccRange
	accRate     AccRate
	gyroRange   GyroRange
	gyroRate    GyroRate
	accEnabled  bool
	gyroEnabled bool
}

// New opens a handle to a QMI8658C on the given bus and applies the
// requested configuration. A nil opts selects DefaultOpts.
//
// New fails with ErrDeviceNotFound if the identity register does not
// return the QMI8658C chip ID.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	if !opts.AccRange.valid() || !opts.GyroRange.valid() ||
		!opts.AccRate.valid() || !opts.GyroRate.valid() {
		return nil, fmt.Errorf("qmi8658c: %w: bad option", ErrInvalidArgument)
	}
	if opts.AccRate.LowPower() {
		// DefaultOpts enables the gyro; a low-power accelerometer rate
		// cannot coexist with it. Callers wanting low power construct
		// with a normal rate and reconfigure after SetGyroEnable(false).
		return nil, fmt.Errorf("qmi8658c: %w: low-power accelerometer rate at construction", ErrConfigConflict)
	}

	d := &Dev{
		dev:       i2c.Dev{Bus: bus, Addr: addr},
		accRange:  opts.AccRange,
		accRate:   opts.AccRate,
		gyroRange: opts.GyroRange,
		gyroRate:  opts.GyroRate,
	}

	// WHO_AM_I and REVISION_ID are adjacent; one transaction reads both.
	var id [2]byte
	if err := d.readReg(regWhoAmI, id[:]); err != nil {
		return nil, err
	}
	if id[0] != chipID {
		return nil, fmt.Errorf("qmi8658c: WHO_AM_I returned %#02x: %w", id[0], ErrDeviceNotFound)
	}
	d.rev = id[1]

	if err := d.writeReg(regCtrl1, ctrl1Init); err != nil {
		return nil, err
	}
	if err := d.writeReg(regCtrl2, byte(d.accRange)<<4|byte(d.accRate)); err != nil {
		return nil, err
	}
	if err := d.writeReg(regCtrl3, byte(d.gyroRange)<<4|byte(d.gyroRate)); err != nil {
		return nil, err
	}
	// No magnetometer, no low-pass filter, no motion on demand.
	for _, reg := range []byte{regCtrl4, regCtrl5, regCtrl6} {
		if err := d.writeReg(reg, 0x00); err != nil {
			return nil, err
		}
	}
	if err := d.writeReg(regCtrl7, ctrl7AccEnable|ctrl7GyroEnable); err != nil {
		return nil, err
	}
	d.accEnabled = true
	d.gyroEnabled = true
	// The part needs a moment after the enable write before the first
	// sample is valid.
	time.Sleep(100 * time.Millisecond)
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("QMI8658C{%s}", &d.dev)
}

// Detect reports whether a QMI8658C answers at addr on the bus without
// configuring it. addr 0 selects DefaultAddr.
func Detect(bus i2c.Bus, addr uint16) bool {
	if addr == 0 {
		addr = DefaultAddr
	}
	dev := i2c.Dev{Bus: bus, Addr: addr}
	var id [1]byte
	if err := dev.Tx([]byte{regWhoAmI}, id[:]); err != nil {
		return false
	}
	return id[0] == chipID
}

// Revision returns the REVISION_ID register value read at construction.
func (d *Dev) Revision() byte {
	return d.rev
}

// Acceleration returns one acceleration sample per axis in m/s².
func (d *Dev) Acceleration() (x, y, z float64, err error) {
	rx, ry, rz, err := d.RawAcceleration()
	if err != nil {
		return 0, 0, 0, err
	}
	scale := d.accRange.G() / 32768 * StandardGravity
	return float64(rx) * scale, float64(ry) * scale, float64(rz) * scale, nil
}

// RawAcceleration returns one unscaled accelerometer sample per axis.
func (d *Dev) RawAcceleration() (x, y, z int16, err error) {
	var buf [6]byte
	if err := d.readReg(regAccelOut, buf[:]); err != nil {
		return 0, 0, 0, err
	}
	x = int16(uint16(buf[0]) | uint16(buf[1])<<8)
	y = int16(uint16(buf[2]) | uint16(buf[3])<<8)
	z = int16(uint16(buf[4]) | uint16(buf[5])<<8)
	return x, y, z, nil
}

// Gyro returns one angular velocity sample per axis in rad/s.
//
// Gyro fails with ErrGyroDisabled while the gyroscope is disabled instead
// of returning stale register contents.
func (d *Dev) Gyro() (x, y, z float64, err error) {
	rx, ry, rz, err := d.RawGyro()
	if err != nil {
		return 0, 0, 0, err
	}
	scale := d.gyroRange.DPS() / 32768 * math.Pi / 180
	return float64(rx) * scale, float64(ry) * scale, float64(rz) * scale, nil
}

// RawGyro returns one unscaled gyroscope sample per axis. Like Gyro it
// fails with ErrGyroDisabled while the gyroscope is disabled.
func (d *Dev) RawGyro() (x, y, z int16, err error) {
	if !d.gyroEnabled {
		return 0, 0, 0, fmt.Errorf("qmi8658c: %w", ErrGyroDisabled)
	}
	var buf [6]byte
	if err := d.readReg(regGyroOut, buf[:]); err != nil {
		return 0, 0, 0, err
	}
	x = int16(uint16(buf[0]) | uint16(buf[1])<<8)
	y = int16(uint16(buf[2]) | uint16(buf[3])<<8)
	z = int16(uint16(buf[4]) | uint16(buf[5])<<8)
	return x, y, z, nil
}

// Temperature returns the die temperature in °C.
func (d *Dev) Temperature() (float64, error) {
	var buf [2]byte
	if err := d.readReg(regTempOut, buf[:]); err != nil {
		return 0, err
	}
	raw := int16(uint16(buf[0]) | uint16(buf[1])<<8)
	// 1/256 °C per LSB, whole degrees in the high byte.
	return float64(raw) / 256, nil
}

// Timestamp returns the device's free-running 24-bit sample counter.
func (d *Dev) Timestamp() (uint32, error) {
	var buf [3]byte
	if err := d.readReg(regTimeOut, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16, nil
}

// SetAccelerometerRate sets the accelerometer output data rate.
//
// Selecting a low-power rate disables the gyroscope first: the hardware
// does not support gyroscope operation in accelerometer low-power mode
// and conflicting bit states yield undefined output.
func (d *Dev) SetAccelerometerRate(rate AccRate) error {
	if !rate.valid() {
		return fmt.Errorf("qmi8658c: %w: accelerometer rate %d", ErrInvalidArgument, uint8(rate))
	}
	if rate.LowPower() && d.gyroEnabled {
		if err := d.writeCtrl7(d.accEnabled, false); err != nil {
			return err
		}
		d.gyroEnabled = false
	}
	if err := d.writeReg(regCtrl2, byte(d.accRange)<<4|byte(rate)); err != nil {
		return err
	}
	d.accRate = rate
	return nil
}

// SetGyroRate sets the gyroscope output data rate.
func (d *Dev) SetGyroRate(rate GyroRate) error {
	if !rate.valid() {
		return fmt.Errorf("qmi8658c: %w: gyroscope rate %d", ErrInvalidArgument, uint8(rate))
	}
	if err := d.writeReg(regCtrl3, byte(d.gyroRange)<<4|byte(rate)); err != nil {
		return err
	}
	d.gyroRate = rate
	return nil
}

// SetRanges sets both full-scale ranges. Both values are validated before
// any bus write; an invalid value fails with ErrInvalidArgument and
// leaves the device untouched.
func (d *Dev) SetRanges(accRange AccRange, gyroRange GyroRange) error {
	if !accRange.valid() {
		return fmt.Errorf("qmi8658c: %w: accelerometer range %d", ErrInvalidArgument, uint8(accRange))
	}
	if !gyroRange.valid() {
		return fmt.Errorf("qmi8658c: %w: gyroscope range %d", ErrInvalidArgument, uint8(gyroRange))
	}
	if err := d.writeReg(regCtrl2, byte(accRange)<<4|byte(d.accRate)); err != nil {
		return err
	}
	d.accRange = accRange
	if err := d.writeReg(regCtrl3, byte(gyroRange)<<4|byte(d.gyroRate)); err != nil {
		return err
	}
	d.gyroRange = gyroRange
	return nil
}

// SetGyroEnable enables or disables the gyroscope.
//
// Enabling while the accelerometer runs at a low-power rate fails with
// ErrConfigConflict and changes nothing; switch the accelerometer to a
// normal rate first.
func (d *Dev) SetGyroEnable(enabled bool) error {
	if enabled && d.accRate.LowPower() {
		return fmt.Errorf("qmi8658c: %w: gyroscope with accelerometer in low-power mode", ErrConfigConflict)
	}
	if err := d.writeCtrl7(d.accEnabled, enabled); err != nil {
		return err
	}
	d.gyroEnabled = enabled
	return nil
}

// SetAccelerometerEnable enables or disables the accelerometer.
func (d *Dev) SetAccelerometerEnable(enabled bool) error {
	if err := d.writeCtrl7(enabled, d.gyroEnabled); err != nil {
		return err
	}
	d.accEnabled = enabled
	return nil
}

// Halt powers down both sensors. The handle stays usable; re-enable with
// SetAccelerometerEnable / SetGyroEnable.
func (d *Dev) Halt() error {
	if err := d.writeCtrl7(false, false); err != nil {
		return err
	}
	d.accEnabled = false
	d.gyroEnabled = false
	return nil
}

// AccelerometerRange returns the configured full-scale range.
func (d *Dev) AccelerometerRange() AccRange { return d.accRange }

// AccelerometerRate returns the configured output data rate.
func (d *Dev) AccelerometerRate() AccRate { return d.accRate }

// GyroscopeRange returns the configured gyroscope full-scale range.
func (d *Dev) GyroscopeRange() GyroRange { return d.gyroRange }

// GyroscopeRate returns the configured gyroscope output data rate.
func (d *Dev) GyroscopeRate() GyroRate { return d.gyroRate }

// GyroEnabled reports whether the gyroscope is enabled.
func (d *Dev) GyroEnabled() bool { return d.gyroEnabled }

// AccelerometerEnabled reports whether the accelerometer is enabled.
func (d *Dev) AccelerometerEnabled() bool { return d.accEnabled }

func (d *Dev) writeCtrl7(accEnabled, gyroEnabled bool) error {
	var v byte
	if accEnabled {
		v |= ctrl7AccEnable
	}
	if gyroEnabled {
		v |= ctrl7GyroEnable
	}
	return d.writeReg(regCtrl7, v)
}

func (d *Dev) readReg(reg byte, buf []byte) error {
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		return fmt.Errorf("qmi8658c: read reg %#02x: %w", reg, err)
	}
	return nil
}

func (d *Dev) writeReg(reg, val byte) error {
	if err := d.dev.Tx([]byte{reg, val}, nil); err != nil {
		return fmt.Errorf("qmi8658c: write reg %#02x: %w", reg, err)
	}
	return nil
}
