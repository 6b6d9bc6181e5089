package qmi8658c

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tkomde/go-qmi8658c/internal/config"
	sensor2 "github.com/tkomde/go-qmi8658c/internal/sensor"
	driver "github.com/tkomde/go-qmi8658c/qmi8658c"
)

var hostOnce sync.Once
var hostErr error

// sensor cannot be accessed by two goroutines at the same time
type sensor struct {
	id  string
	opt config.IMUOpt
	bus i2c.BusCloser
	dev *driver.Dev
	seq uint64
}

func (s *sensor) Seq() uint64 {
	return s.seq
}

func (s *sensor) ID() string {
	return s.id
}

// Close powers the sensors down and releases the bus
func (s *sensor) Close() error {
	if s.bus == nil {
		return nil
	}
	if s.dev != nil {
		if err := s.dev.Halt(); err != nil {
			log.Warnln(err)
		}
		s.dev = nil
	}
	err := s.bus.Close()
	if err != nil {
		return err
	}
	s.bus = nil
	return nil
}

// Open opens the I2C bus and brings the chip up
func (s *sensor) Open() error {
	if s.bus != nil {
		return nil
	}
	hostOnce.Do(func() { _, hostErr = host.Init() })
	if hostErr != nil {
		return hostErr
	}
	bus, err := i2creg.Open(s.opt.Bus)
	if err != nil {
		log.Warnln(err)
		return err
	}
	opts, err := s.opt.DriverOpts()
	if err != nil {
		_ = bus.Close()
		return err
	}
	dev, err := driver.New(bus, opts)
	if err != nil {
		log.Warnln(err)
		_ = bus.Close()
		return err
	}
	s.bus = bus
	s.dev = dev
	s.seq = 0
	return nil
}

// Reset power-cycles the sensor configuration
func (s *sensor) Reset() error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.Open()
}

// Read polls the device once and returns the wrapped sample
func (s *sensor) Read() ([]sensor2.IMUDataTypeWrapped, error) {
	if s.dev == nil {
		return nil, errors.New("device not open")
	}
	ax, ay, az, err := s.dev.Acceleration()
	if err != nil {
		return nil, err
	}
	gx, gy, gz, err := s.dev.Gyro()
	if err != nil && !errors.Is(err, driver.ErrGyroDisabled) {
		return nil, err
	}
	temp, err := s.dev.Temperature()
	if err != nil {
		return nil, err
	}
	ts, err := s.dev.Timestamp()
	if err != nil {
		return nil, err
	}

	wrapped := sensor2.IMUDataTypeWrapped{
		IMUDataType: sensor2.IMUDataType{
			Acc:       [3]float64{ax, ay, az},
			Gyro:      [3]float64{gx, gy, gz},
			Temp:      temp,
			Timestamp: ts,
		},
		ID:       s.id,
		Seq:      s.seq,
		SysTicks: time.Now().UnixNano(),
	}
	s.seq++
	return []sensor2.IMUDataTypeWrapped{wrapped}, nil
}

func NewSensor(opt config.IMUOpt) sensor2.Sensor {
	s := sensor{
		id:  opt.ID,
		opt: opt,
	}
	err := s.Open()
	if err != nil {
		log.Warnln(err)
		return nil
	}

	return &s
}
