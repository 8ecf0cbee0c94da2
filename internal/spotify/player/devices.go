package player

import (
	"context"

	"github.com/tessro/moodplay/internal/core"
	"github.com/tessro/moodplay/internal/spotify/client"
)

// DeviceLister lists Spotify Connect devices.
type DeviceLister interface {
	GetDevices(ctx context.Context) ([]client.Device, error)
}

// GetDevices returns the user's available playback devices.
func GetDevices(ctx context.Context, api DeviceLister) ([]core.Device, error) {
	devices, err := api.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]core.Device, len(devices))
	for i, d := range devices {
		result[i] = *convertDevice(&d)
	}
	return result, nil
}

// convertDevice converts a Spotify device to a core device.
func convertDevice(d *client.Device) *core.Device {
	if d == nil {
		return nil
	}

	deviceType := core.DeviceType(d.Type)
	switch d.Type {
	case "Computer":
		deviceType = core.DeviceTypeComputer
	case "Smartphone":
		deviceType = core.DeviceTypePhone
	case "Speaker":
		deviceType = core.DeviceTypeSpeaker
	case "TV":
		deviceType = core.DeviceTypeTV
	}

	dev := &core.Device{
		ID:       d.ID,
		Name:     d.Name,
		Type:     deviceType,
		IsActive: d.IsActive,
	}
	if d.VolumePercent != nil {
		dev.Volume = *d.VolumePercent
	}
	return dev
}
