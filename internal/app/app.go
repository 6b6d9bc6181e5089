package app

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tkomde/go-qmi8658c/internal/config"
	managerImpl "github.com/tkomde/go-qmi8658c/internal/manager/qmi8658c"
	"github.com/tkomde/go-qmi8658c/pkg/version"
)

type mainApp struct {
	name string
	cmd  *cobra.Command
	args []string
	opt  *config.IMUCapOpt
}

func (a *mainApp) ProbeSensor() error {
	m := managerImpl.NewManager(a.opt)
	log.Infoln("Probing IMU devices...")
	res, err := m.ProbeDev()
	if err != nil {
		log.Errorln(err)
		return err
	}
	log.Infof("Found %d valid IMU devices: \n", len(res))
	for _, v := range res {
		fmt.Printf("- %s\n", strings.TrimSpace(v))
	}
	return nil
}

func (a *mainApp) GetOpt() *config.IMUCapOpt {
	return a.opt
}

func (a *mainApp) SetOpt(opt *config.IMUCapOpt) { a.opt = opt }

var app MainApp = nil

// Run starts the capture manager and logs the latest sample of each
// configured sensor once per second until the process is killed.
func (a *mainApp) Run() {
	var once sync.Once
	once.Do(func() {
		app = a
	})

	log.Infoln("version:", version.GitVersion)
	log.Infoln("poll_ms:", a.opt.PollMs)
	log.Infoln("debug:", a.opt.Debug)
	log.Infoln("imu.device:", a.opt.IMU)

	// start manager
	m := managerImpl.NewManager(a.opt)
	go managerImpl.Daemon(m)

	for {
		time.Sleep(time.Second)
		_, res, err := m.Read(-1)
		if err != nil {
			log.Debugln(err)
			continue
		}
		for id, data := range res[0] {
			log.Infof("%s acc=[%+.3f %+.3f %+.3f]m/s² gyro=[%+.3f %+.3f %+.3f]rad/s temp=%.2f°C ts=%d",
				id,
				data.Acc[0], data.Acc[1], data.Acc[2],
				data.Gyro[0], data.Gyro[1], data.Gyro[2],
				data.Temp, data.Timestamp)
		}
	}
}

// ReadOnce polls every configured sensor a single time and prints the
// samples to stdout.
func (a *mainApp) ReadOnce() error {
	m := managerImpl.NewManager(a.opt)
	if err := m.Start(); err != nil {
		return err
	}
	defer func() { _ = m.Stop() }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, res, err := m.Read(-1)
		if err == nil {
			for id, data := range res[0] {
				fmt.Printf("%s:\n", id)
				fmt.Printf("  acceleration: X:%.2f, Y:%.2f, Z:%.2f m/s^2\n", data.Acc[0], data.Acc[1], data.Acc[2])
				fmt.Printf("  gyro: X:%.2f, Y:%.2f, Z:%.2f rad/s\n", data.Gyro[0], data.Gyro[1], data.Gyro[2])
				fmt.Printf("  temperature: %.2f C\n", data.Temp)
				fmt.Printf("  timestamp: %d\n", data.Timestamp)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (a *mainApp) PrepareRun() MainApp {
	desc := config.NewIMUCapDesc()
	err := desc.Parse(a.cmd)
	if err != nil {
		log.Errorln(err)
		os.Exit(1)
		return nil
	}
	desc.PostParse()
	a.opt = &desc.Opt
	a.name = config.DefaultAppName

	if a.opt.Debug {
		log.SetLevel(log.DebugLevel)
	}

	return a
}

type MainApp interface {
	Run()
	PrepareRun() MainApp
	GetOpt() *config.IMUCapOpt
	SetOpt(*config.IMUCapOpt)
	ProbeSensor() error
	ReadOnce() error
}

func NewMainApp(cmd *cobra.Command, args []string) MainApp {
	return &mainApp{
		cmd:  cmd,
		args: args,
	}
}
