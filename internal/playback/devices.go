package playback

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes one playback-capable device.
type Device struct {
	Name       string
	Channels   int
	SampleRate float64
	Default    bool
}

// Devices returns all playback-capable devices known to the backend, in
// enumeration order. The backend context must be initialized (the context
// is process-wide in PortAudio, but ownership here follows the player
// instance).
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceEnumeration, err)
	}
	def, _ := portaudio.DefaultOutputDevice()

	var devs []Device
	for _, info := range infos {
		if info.MaxOutputChannels > 0 {
			devs = append(devs, Device{
				Name:       info.Name,
				Channels:   info.MaxOutputChannels,
				SampleRate: info.DefaultSampleRate,
				Default:    info == def,
			})
		}
	}
	return devs, nil
}

// findOutputDevice returns the device info whose name matches exactly.
func findOutputDevice(name string) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceEnumeration, err)
	}

	for _, info := range infos {
		if info.MaxOutputChannels > 0 && info.Name == name {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}
