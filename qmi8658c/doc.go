// Package qmi8658c controls a QST QMI8658C 6-axis inertial measurement
// unit (3-axis accelerometer + 3-axis gyroscope) over I²C.
//
// The driver exposes acceleration in m/s², angular velocity in rad/s and
// die temperature in °C, plus the full-scale range, output data rate and
// sensor enable configuration of the device.
//
// Datasheet:
// https://www.qstcorp.com/upload/pdf/202202/13-52-25%20QMI8658C%20datasheet%20rev%20a.pdf
//
// The accelerometer low-power rates cannot be combined with gyroscope
// operation; the driver enforces that interlock, see SetAccelerometerRate
// and SetGyroEnable.
package qmi8658c
