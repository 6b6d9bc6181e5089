package qmi8658c

// Register map, QMI8658C datasheet rev 1.0.
const (
	regWhoAmI   = 0x00 // WHO_AM_I, reads chipID
	regRevision = 0x01 // REVISION_ID

	regCtrl1 = 0x02 // serial interface: address auto increment, endianness
	regCtrl2 = 0x03 // accelerometer: full-scale bits 6:4, ODR bits 3:0
	regCtrl3 = 0x04 // gyroscope: full-scale bits 6:4, ODR bits 3:0
	regCtrl4 = 0x05 // magnetometer (unused, no mag on this part)
	regCtrl5 = 0x06 // low-pass filter settings
	regCtrl6 = 0x07 // motion on demand
	regCtrl7 = 0x08 // sensor enables: bit 0 accel, bit 1 gyro

	regTimeOut  = 0x30 // 24-bit sample timestamp, 3 bytes LE
	regTempOut  = 0x33 // temperature, int16 LE, 1/256 °C per LSB
	regAccelOut = 0x35 // AX_L..AZ_H, three int16 LE
	regGyroOut  = 0x3B // GX_L..GZ_H, three int16 LE
)

const (
	// chipID is the expected WHO_AM_I value.
	chipID = 0x05

	// ctrl1Init enables register address auto increment and big-endian
	// SPI reads. The SPI bits are don't-care over I2C.
	ctrl1Init = 0b0110_0000

	ctrl7AccEnable  = 0x01
	ctrl7GyroEnable = 0x02
)

// DefaultAddr is the default I2C slave address (SA0 pulled high).
const DefaultAddr = 0x6B
