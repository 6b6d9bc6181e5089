package qmi8658c

import "errors"

// ErrDeviceNotFound signals that the identity register did not return the
// QMI8658C chip ID during construction.
var ErrDeviceNotFound = errors.New("no QMI8658C detected")

// ErrGyroDisabled signals that gyroscope data was requested while the
// gyroscope is disabled. The driver refuses to return stale or zero data.
var ErrGyroDisabled = errors.New("gyroscope is disabled")

// ErrConfigConflict signals a configuration transition that would leave
// the device in an illegal state (gyroscope enabled together with an
// accelerometer low-power mode).
var ErrConfigConflict = errors.New("configuration conflict")

// ErrInvalidArgument signals an unsupported enumerated configuration
// value. It is returned before any bus write is attempted.
var ErrInvalidArgument = errors.New("invalid argument")
