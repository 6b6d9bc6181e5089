package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tkomde/go-qmi8658c/qmi8658c"
)

var logger = log.New(os.Stdout, "qmi8658c ", log.LstdFlags)

func configure(busName string, addr uint, accRange, accRate, gyroRange, gyroRate string, gyroOff bool) error {
	ar, err := qmi8658c.ParseAccRange(accRange)
	if err != nil {
		return err
	}
	at, err := qmi8658c.ParseAccRate(accRate)
	if err != nil {
		return err
	}
	gr, err := qmi8658c.ParseGyroRange(gyroRange)
	if err != nil {
		return err
	}
	gt, err := qmi8658c.ParseGyroRate(gyroRate)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return err
	}
	defer bus.Close()

	// Low-power rates need the gyro off before they can be applied, so
	// bring the chip up at a normal rate first and reconfigure below.
	opts := qmi8658c.Opts{
		Addr:      uint16(addr),
		AccRange:  ar,
		AccRate:   qmi8658c.AccRate125Hz,
		GyroRange: gr,
		GyroRate:  gt,
	}
	dev, err := qmi8658c.New(bus, &opts)
	if err != nil {
		return err
	}
	fmt.Printf("found %s, revision %#02x\n", dev, dev.Revision())

	if gyroOff {
		if err := dev.SetGyroEnable(false); err != nil {
			return err
		}
	}
	if err := dev.SetAccelerometerRate(at); err != nil {
		return err
	}

	fmt.Printf("accelerometer: %s @ %s (enabled: %v)\n", dev.AccelerometerRange(), dev.AccelerometerRate(), dev.AccelerometerEnabled())
	fmt.Printf("gyroscope: %s @ %s (enabled: %v)\n", dev.GyroscopeRange(), dev.GyroscopeRate(), dev.GyroEnabled())
	return nil
}

func main() {
	busFlag := flag.String("bus", "", "The I2C bus to use (empty for the first available)")
	addrFlag := flag.Uint("addr", qmi8658c.DefaultAddr, "I2C address of the device")
	accRangeFlag := flag.String("acc-range", "8g", "Accelerometer range (2g, 4g, 8g, 16g)")
	accRateFlag := flag.String("acc-rate", "125hz", "Accelerometer rate (8000hz..31hz, lp128hz, lp21hz, lp11hz, lp3hz)")
	gyroRangeFlag := flag.String("gyro-range", "512dps", "Gyroscope range (16dps..2048dps)")
	gyroRateFlag := flag.String("gyro-rate", "125hz", "Gyroscope rate (8000hz..31hz)")
	gyroOffFlag := flag.Bool("gyro-off", false, "Disable the gyroscope (required for lp* accelerometer rates)")

	flag.Parse()

	if *addrFlag != 0x6A && *addrFlag != 0x6B {
		logger.Fatal("--addr must be 0x6a or 0x6b")
	}

	err := configure(*busFlag, *addrFlag, *accRangeFlag, *accRateFlag, *gyroRangeFlag, *gyroRateFlag, *gyroOffFlag)
	if err != nil {
		logger.Fatal(err)
	}
}
