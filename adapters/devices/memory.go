package devices

import (
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

// Device lookup failures. Callers should not tell them apart to the client.
var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type registeredDevice struct {
	device *entities.Device
	secret []byte
}

// MemoryDeviceRepository keeps device credentials in memory
type MemoryDeviceRepository struct {
	mu      sync.RWMutex
	serials map[string]registeredDevice // serial_number -> device
}

// NewMemoryDeviceRepository creates a repository seeded with serial -> secret pairs
func NewMemoryDeviceRepository(credentials map[string]string) *MemoryDeviceRepository {
	m := &MemoryDeviceRepository{serials: make(map[string]registeredDevice)}
	for serial, secret := range credentials {
		m.RegisterDevice(serial, secret)
	}
	return m
}

// RegisterDevice adds or replaces a device. The id is derived from the serial
// number so it stays stable across restarts.
func (m *MemoryDeviceRepository) RegisterDevice(serialNumber, secret string) *entities.Device {
	device := &entities.Device{
		ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(serialNumber)).String(),
		SerialNumber: serialNumber,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.serials[serialNumber] = registeredDevice{device: device, secret: []byte(secret)}
	return device
}

// ValidateDevice validates device credentials (serial number + secret)
func (m *MemoryDeviceRepository) ValidateDevice(serialNumber, secret string) (*entities.Device, error) {
	m.mu.RLock()
	registered, exists := m.serials[serialNumber]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrDeviceNotFound
	}
	if subtle.ConstantTimeCompare(registered.secret, []byte(secret)) != 1 {
		return nil, ErrInvalidCredentials
	}

	deviceCopy := *registered.device
	return &deviceCopy, nil
}

// Count returns the number of registered devices
func (m *MemoryDeviceRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.serials)
}
