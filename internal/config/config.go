package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tkomde/go-qmi8658c/internal/utils"
	"github.com/tkomde/go-qmi8658c/qmi8658c"
)

const DefaultAppName = "imucap"
const DefaultConfigName = "config"
const DefaultPollMs = 8
const DefaultIMUID = "imu_0"

var userHomeDir, _ = os.UserHomeDir()
var DefaultConfig = path.Join(userHomeDir, ".config/"+DefaultAppName+"/"+DefaultConfigName+".yaml")
var DefaultConfigSearchPath0 = path.Join(userHomeDir, ".config", DefaultAppName)

const DefaultConfigSearchPath1 = "/etc/" + DefaultAppName
const DefaultConfigSearchPath2 = "./"
const DefaultConfigSearchPath3 = "/config"

type IMUOpt struct {
	ID        string `yaml:"id"`
	Bus       string `yaml:"bus"`  // i2creg bus name, empty selects the first available bus
	Addr      uint16 `yaml:"addr"` // I2C address, 0 selects the chip default
	AccRange  string `yaml:"acc_range"`
	AccRate   string `yaml:"acc_rate"`
	GyroRange string `yaml:"gyro_range"`
	GyroRate  string `yaml:"gyro_rate"`
}

// DriverOpts translates the textual configuration into driver options.
func (o IMUOpt) DriverOpts() (*qmi8658c.Opts, error) {
	accRange, err := qmi8658c.ParseAccRange(o.AccRange)
	if err != nil {
		return nil, err
	}
	accRate, err := qmi8658c.ParseAccRate(o.AccRate)
	if err != nil {
		return nil, err
	}
	gyroRange, err := qmi8658c.ParseGyroRange(o.GyroRange)
	if err != nil {
		return nil, err
	}
	gyroRate, err := qmi8658c.ParseGyroRate(o.GyroRate)
	if err != nil {
		return nil, err
	}
	return &qmi8658c.Opts{
		Addr:      o.Addr,
		AccRange:  accRange,
		AccRate:   accRate,
		GyroRange: gyroRange,
		GyroRate:  gyroRate,
	}, nil
}

type IMUCapOpt struct {
	IMU    []IMUOpt `yaml:"imu"`
	PollMs int      `yaml:"poll_ms"`
	Debug  bool     `yaml:"debug"`
}

type IMUCapDesc struct {
	Opt   IMUCapOpt
	Viper *viper.Viper
}

func NewIMUCapDesc() IMUCapDesc {
	return IMUCapDesc{
		Opt:   NewIMUCapOpt(),
		Viper: nil,
	}
}

func NewIMUCapOpt() IMUCapOpt {
	return IMUCapOpt{
		IMU: []IMUOpt{
			{
				ID:        DefaultIMUID,
				AccRange:  "8g",
				AccRate:   "125hz",
				GyroRange: "512dps",
				GyroRate:  "125hz",
			},
		},
		PollMs: DefaultPollMs,
		Debug:  false,
	}
}

func (o *IMUCapDesc) Parse(cmd *cobra.Command) error {
	vipCfg := viper.New()
	vipCfg.SetDefault("poll_ms", DefaultPollMs)
	vipCfg.SetDefault("debug", false)

	if configFileCmd, err := cmd.Flags().GetString("config"); err == nil && configFileCmd != "" {
		vipCfg.SetConfigFile(configFileCmd)
	} else {
		configFileEnv := os.Getenv("IMUCAP_CONFIG")
		if configFileEnv != "" {
			vipCfg.SetConfigFile(configFileEnv)
		} else {
			vipCfg.SetConfigName(DefaultConfigName)
			vipCfg.SetConfigType("yaml")
			vipCfg.AddConfigPath(DefaultConfigSearchPath0)
			vipCfg.AddConfigPath(DefaultConfigSearchPath1)
			vipCfg.AddConfigPath(DefaultConfigSearchPath2)
			vipCfg.AddConfigPath(DefaultConfigSearchPath3)
		}
	}
	vipCfg.WatchConfig()

	vipCfg.SetEnvPrefix(DefaultAppName)
	vipCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vipCfg.AutomaticEnv()

	_ = vipCfg.BindPFlag("poll_ms", cmd.Flags().Lookup("poll"))
	_ = vipCfg.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	// If a config file is found, read it in.
	if err := vipCfg.ReadInConfig(); err == nil {
		log.Debugln("using config file:", vipCfg.ConfigFileUsed())
	} else {
		log.Warnln(err)
	}

	if err := vipCfg.Unmarshal(&o.Opt); err != nil {
		log.Fatalln("failed to unmarshal config")
		os.Exit(1)
	}

	return o.Validate(vipCfg)
}

// Validate rejects malformed sensor entries before anything touches the
// bus, so a bad range string fails at startup rather than mid-capture.
func (o *IMUCapDesc) Validate(vipCfg *viper.Viper) error {
	seen := make(map[string]bool, len(o.Opt.IMU))
	for _, imu := range o.Opt.IMU {
		if imu.ID == "" {
			return errors.New("empty sensor id")
		}
		if seen[imu.ID] {
			return errors.New("duplicate sensor id: " + imu.ID)
		}
		seen[imu.ID] = true
		if _, err := imu.DriverOpts(); err != nil {
			return fmt.Errorf("sensor %s: %w", imu.ID, err)
		}
	}
	o.Viper = vipCfg
	return nil
}

func (o *IMUCapDesc) PostParse() {
	if o.Opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// InitCfg prepares config for the application
func InitCfg(cmd *cobra.Command, _ []string) error {
	printFlag, _ := cmd.Flags().GetBool("print")
	outputPath, _ := cmd.Flags().GetString("output")
	overwriteFlag, _ := cmd.Flags().GetBool("yes")

	desc := NewIMUCapDesc()
	err := desc.Parse(cmd)
	if err != nil {
		log.Errorln(err)
		return err
	}

	if printFlag {
		configBuffer, _ := yaml.Marshal(desc.Opt)
		fmt.Println(string(configBuffer))
	} else {
		utils.DumpOption(desc.Opt, outputPath, overwriteFlag)
	}
	return nil
}
