package sensor

type IMUDataType struct {
	Acc       [3]float64
	Gyro      [3]float64
	Temp      float64
	Timestamp uint32
}

type IMUDataTypeWrapped struct {
	IMUDataType
	ID       string
	Seq      uint64
	SysTicks int64
}

type Sensor interface {
	Read() ([]IMUDataTypeWrapped, error)
	Reset() error
	Close() error
	Open() error
	ID() string
	Seq() uint64
}
