package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tkomde/go-qmi8658c/internal/app"
	"github.com/tkomde/go-qmi8658c/internal/config"
)

var RootCmd = &cobra.Command{
	Use:   "imucap",
	Short: "capture tool for QMI8658C inertial sensors",
	Long:  "capture tool for QMI8658C inertial sensors",
}

func ServeCmdRunE(cmd *cobra.Command, args []string) error {
	app.NewMainApp(cmd, args).PrepareRun().Run()
	return nil
}

func ServeCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().IntP("poll", "p", config.DefaultPollMs, "sensor poll interval in milliseconds")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
}

var ServeCmd = &cobra.Command{
	Use: "serve",
	SuggestFor: []string{
		"ru", "ser",
	},
	Short: "serve runs the capture loop using predefined configs.",
	Long: `serve runs the capture loop using predefined configs, by the following order:
1. path specified in --config flag
2. path defined in IMUCAP_CONFIG environment variable
3. default location $HOME/.config/imucap/config.yaml, /etc/imucap/config.yaml, current directory
The parameters in the configuration file will be overwritten by the following order:
1. command line arguments
2. environment variables
`,
	Example: `  imucap serve --config=/path/to/config`,
	RunE:    ServeCmdRunE,
}

func ReadCmdRunE(cmd *cobra.Command, args []string) error {
	return app.NewMainApp(cmd, args).PrepareRun().ReadOnce()
}

var ReadCmd = &cobra.Command{
	Use: "read",
	SuggestFor: []string{
		"re", "rea",
	},
	Short: "read polls every configured sensor once and prints the samples.",
	Long: `read polls every configured sensor once and prints acceleration,
angular velocity, temperature and the device timestamp to stdout.
`,
	Example: `  imucap read --config=/path/to/config`,
	RunE:    ReadCmdRunE,
}

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultConfig, "specify output directory")
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init create a configuration template",
	Long: `init create a configuration template.
The configuration file can be used to launch the capture loop.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified
Otherwise init will output configuration file to $HOME/.config/imucap/config.yaml
If --yes / -y flag is present, the configuration will be overwrite without confirmation
`,
	Example: `  imucap init --print
  imucap init --output /path/to/config.yaml
  imucap init -o /path/to/config.yaml -y`,
	RunE: config.InitCfg,
}

var ProbeCmd = &cobra.Command{
	Use: "probe",
	SuggestFor: []string{
		"pro", "pr", "prob",
	},
	Short: "probe the compatible devices",
	Long: `probe the compatible devices.
The probe command will scan every registered I2C bus for a QMI8658C
(addresses 0x6A and 0x6B) and print the result to stdout.
`,
	Example: `  imucap probe`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = app.NewMainApp(cmd, args).PrepareRun().ProbeSensor()
	},
}

func getRootCmd() *cobra.Command {

	ServeCmdFlags(ServeCmd)
	RootCmd.AddCommand(ServeCmd)

	ServeCmdFlags(ReadCmd)
	RootCmd.AddCommand(ReadCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	RootCmd.AddCommand(ProbeCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
