package qmi8658c

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tkomde/go-qmi8658c/internal/config"
	"github.com/tkomde/go-qmi8658c/internal/manager"
	"github.com/tkomde/go-qmi8658c/internal/sensor"
	sensorImpl "github.com/tkomde/go-qmi8658c/internal/sensor/qmi8658c"
	driver "github.com/tkomde/go-qmi8658c/qmi8658c"
)

const BufLen = 1024

// stubbed in tests
var newSensorFn = sensorImpl.NewSensor

type qmiManager struct {
	opt        *config.IMUCapOpt
	sensors    map[string]sensor.Sensor
	ringBuffer []map[string]*sensor.IMUDataTypeWrapped
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lock       sync.RWMutex
	// counter and faulted are written by the poll goroutine while Read
	// and Daemon observe them; the ring slot is stored before counter
	// is bumped, so a Read that sees the new counter sees the slot.
	// They cannot hide behind m.lock: Stop holds it across wg.Wait, so
	// the poll goroutine must never block on it.
	counter          atomic.Int64
	faulted          atomic.Bool
	manuallyStopped  bool
	lastAccessSecond int64
}

// ProbeDev scans every registered I2C bus for a responding chip at both
// slave addresses.
func (m *qmiManager) ProbeDev() ([]string, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	var found []string
	for _, ref := range i2creg.All() {
		bus, err := ref.Open()
		if err != nil {
			log.Debugf("bus %v: %v", ref.Name, err)
			continue
		}
		for _, addr := range []uint16{0x6A, 0x6B} {
			if driver.Detect(bus, addr) {
				found = append(found, fmt.Sprintf("%s@%#02x", ref.Name, addr))
			}
		}
		_ = bus.Close()
	}

	if len(found) == 0 {
		return nil, errors.New("no QMI8658C found on any bus")
	}
	return found, nil
}

const autoSleepDurationSecond = 60

func (m *qmiManager) TrySleep() error {
	var err error = nil
	if m.Running() && (time.Now().Unix()-m.lastAccessSecond > autoSleepDurationSecond) {
		log.Infof("timeout after %v seconds, enter sleep mode", autoSleepDurationSecond)
		m.lastAccessSecond = math.MaxInt64
		err = m.Stop()
		if err != nil {
			log.Errorln(err)
		}
	}
	return err
}

// ListDev returns a list of sensors
func (m *qmiManager) ListDev() ([]string, error) {
	m.lastAccessSecond = time.Now().Unix()

	res := make([]string, len(m.sensors))
	idx := 0
	for _, s := range m.sensors {
		res[idx] = s.ID()
		idx++
	}
	return res, nil
}

func (m *qmiManager) Running() bool {
	return m.sensors != nil && !m.faulted.Load()
}

func (m *qmiManager) Faulted() bool {
	return m.faulted.Load()
}

func (m *qmiManager) ManuallyStopped() bool {
	return m.manuallyStopped
}

const maxConsecutiveFailures = 8

func (m *qmiManager) pollInterval() time.Duration {
	ms := m.opt.PollMs
	if ms <= 0 {
		ms = config.DefaultPollMs
	}
	return time.Duration(ms) * time.Millisecond
}

// updateAll polls every sensor once per tick. A register read is one
// sample, so unlike a free-running serial stream no cross-sensor
// timestamp alignment is needed; a tick's reads share one ring slot.
func (m *qmiManager) updateAll() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval())
	defer ticker.Stop()

	// diagnose variables
	diagLastCheck := time.Now().UnixMilli()
	diagLastCounter := m.counter.Load()
	failures := 0

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
		}

		candidates := make(map[string]*sensor.IMUDataTypeWrapped, len(m.sensors))
		for _, rs := range m.sensors {
			res, err := rs.Read()
			if err != nil {
				log.Debugf("sensor %v error: %v", rs.ID(), err)
				continue
			}
			for i := range res {
				candidates[rs.ID()] = &res[i]
			}
		}

		if len(candidates) == len(m.sensors) {
			failures = 0
			// slot store first, counter bump publishes it
			counter := m.counter.Load()
			m.ringBuffer[counter%BufLen] = candidates
			m.counter.Store(counter + 1)
		} else {
			failures++
			if failures >= maxConsecutiveFailures {
				log.Errorf("%d consecutive poll failures, marking faulted", failures)
				m.faulted.Store(true)
				return
			}
		}

		diagDuration := float64(time.Now().UnixMilli()-diagLastCheck) / 1000
		if diagDuration >= 10 {
			log.Debugf("updateAll sps: %3.1f", float64(m.counter.Load()-diagLastCounter)/diagDuration)
			diagLastCounter = m.counter.Load()
			diagLastCheck = time.Now().UnixMilli()
		}
	}
}

// Start starts the sensor manager
func (m *qmiManager) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastAccessSecond = time.Now().Unix()
	log.Infof("manager started")

	if m.sensors == nil {
		m.ctx, m.cancel = context.WithCancel(context.Background())
		m.sensors = make(map[string]sensor.Sensor)
		for _, imu := range m.opt.IMU {
			if imu.ID == "" {
				return errors.New("empty sensor id")
			}
			if _, ok := m.sensors[imu.ID]; ok {
				return errors.New("duplicate sensor id: " + imu.ID)
			}
			s := newSensorFn(imu)
			if s == nil {
				m.sensors = nil
				return errors.New("failed to create sensor: " + imu.ID)
			}
			m.sensors[imu.ID] = s
		}
		m.faulted.Store(false)
		m.wg.Add(1)
		go m.updateAll()

		time.Sleep(time.Millisecond * 50) //  wait for stable
	}
	m.manuallyStopped = false
	return nil
}

// Stop stops the sensor manager
func (m *qmiManager) Stop() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.lastAccessSecond = time.Now().Unix()
	log.Infof("manager stopped")

	if m.sensors == nil {
		return nil
	}
	m.cancel()
	m.wg.Wait()
	for _, rs := range m.sensors {
		err := rs.Close()
		if err != nil {
			return err
		}
	}
	m.sensors = nil
	m.manuallyStopped = true
	m.counter.Store(0)
	m.ringBuffer = make([]map[string]*sensor.IMUDataTypeWrapped, BufLen)
	return nil
}

// Restart restarts the sensor manager
func (m *qmiManager) Restart() error {
	err := m.Stop()
	if err != nil {
		return err
	}
	return m.Start()
}

// Read reads the latest packet from each sensor
func (m *qmiManager) Read(cursor int64) (int64, []map[string]*sensor.IMUDataTypeWrapped, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	m.lastAccessSecond = time.Now().Unix()

	counter := m.counter.Load()
	if cursor < 0 {
		cursor = counter - 1
		if cursor < 0 {
			return cursor, nil, errors.New("not ready")
		}
		res := make([]map[string]*sensor.IMUDataTypeWrapped, 1)
		res[0] = m.ringBuffer[cursor%BufLen]
		return cursor, res, nil
	}

	// read all packets accumulated past the cursor
	if cursor+1 >= counter {
		return cursor, nil, errors.New("no new data")
	}
	stop := counter
	if stop-cursor >= BufLen {
		cursor = counter - 1
	}
	res := make([]map[string]*sensor.IMUDataTypeWrapped, 0, stop-cursor)
	for cursor < stop {
		res = append(res, m.ringBuffer[cursor%BufLen])
		cursor++
	}

	if len(res) == 0 {
		return cursor, nil, errors.New("no new data")
	}
	return cursor, res, nil
}

func NewManager(opt *config.IMUCapOpt) manager.Manager {
	return &qmiManager{
		opt:              opt,
		sensors:          nil,
		ringBuffer:       make([]map[string]*sensor.IMUDataTypeWrapped, BufLen),
		manuallyStopped:  false,
		lastAccessSecond: time.Now().Unix(),
	}
}

func Daemon(m manager.Manager) {
	for {
		if m.Faulted() {
			log.Infoln("status is faulted, stopping")
			err := m.Stop()
			if err != nil {
				log.Errorln(err)
			}
		}
		if !m.Running() && !m.ManuallyStopped() {
			err := m.Start()
			if err != nil {
				log.Errorln(err)
				time.Sleep(time.Second * 1)
				continue
			}
		}
		time.Sleep(time.Second * 1)
		_ = m.TrySleep()
	}
}
