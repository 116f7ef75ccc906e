package repositories

import "github.com/SalinCodes/VoxVision/domain/entities"

// DeviceRepository authenticates devices by serial number and secret
type DeviceRepository interface {
	ValidateDevice(serialNumber, secret string) (*entities.Device, error)
}
