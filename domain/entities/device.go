package entities

// Device is a camera/microphone unit allowed to open a realtime session
type Device struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
}
