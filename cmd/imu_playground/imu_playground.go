package main

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tkomde/go-qmi8658c/internal/app"
	"github.com/tkomde/go-qmi8658c/internal/config"
	managerImpl "github.com/tkomde/go-qmi8658c/internal/manager/qmi8658c"
)

var defaultTableValue = [][]string{{"ID", "Acc [m/s²]", "Gyro [rad/s]", "Temp [°C]", "Timestamp"}}

func getTable() *widgets.Table {
	table := widgets.NewTable()
	table.Rows = defaultTableValue
	table.ColumnWidths = []int{10, 28, 28, 12, 12}
	table.TextStyle = ui.NewStyle(ui.ColorWhite)
	table.TextAlignment = ui.AlignRight
	table.SetRect(0, 0, 92, 36)
	return table
}

func printArray(arr [3]float64) string {
	str := ""
	for i, num := range arr {
		str += fmt.Sprintf("%.2f", num)
		if i != len(arr)-1 {
			str += ", "
		}
	}
	return str
}

func updateValue(opt *config.IMUCapOpt, table *widgets.Table) {

	manager := managerImpl.NewManager(opt)
	tableRowMap := make(map[string]int)

	for _, imu := range opt.IMU {
		table.Rows = append(table.Rows, []string{"", "", "", "", ""})
		tableRowMap[imu.ID] = len(table.Rows) - 1
	}
	err := manager.Start()
	if err != nil {
		log.Panicln(err)
	}

	for {
		_, res, err := manager.Read(-1)
		if err != nil {
			log.Warnln(err)
			time.Sleep(time.Millisecond * 100)
			continue
		}

		for id, data := range res[0] {
			table.Rows[tableRowMap[id]] = []string{
				id,
				printArray(data.Acc),
				printArray(data.Gyro),
				fmt.Sprintf("%.2f", data.Temp),
				fmt.Sprintf("%d", data.Timestamp),
			}
		}

		ui.Render(table)
		time.Sleep(time.Millisecond * 10)

	}
}

func _main(cmd *cobra.Command, args []string) {
	log.Info("Starting")
	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	t := getTable()
	opt := app.NewMainApp(cmd, args).PrepareRun().GetOpt()
	go updateValue(opt, t)

	uiEvents := ui.PollEvents()
	for {
		e := <-uiEvents
		switch e.ID {
		case "q", "<C-c>":
			return
		}
	}

}

var rootCmd = &cobra.Command{
	Use:   "imu_playground",
	Short: "imu_playground",
	Long:  "imu_playground",
	Run: func(cmd *cobra.Command, args []string) {
		_main(cmd, args)
	},
}

func main() {
	rootCmd.Flags().String("config", "", "default configuration path")
	rootCmd.Flags().IntP("poll", "p", config.DefaultPollMs, "sensor poll interval in milliseconds")
	rootCmd.Flags().Bool("debug", false, "toggle debug logging")

	err := rootCmd.Execute()
	if err != nil {
		return
	}
}
