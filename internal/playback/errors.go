package playback

import "errors"

// Error kinds for the playback subsystem. All of them are non-fatal to the
// filter instance: the gate and trigger keep running, audio notification
// degrades to a no-op and failures are surfaced through logging only.
var (
	// ErrContextInit means the audio backend failed to initialize at
	// startup. Playback stays disabled for the player's lifetime.
	ErrContextInit = errors.New("audio context initialization failed")

	// ErrDecode means the clip file is missing or not a decodable WAV.
	ErrDecode = errors.New("clip decode failed")

	// ErrDeviceEnumeration means the backend could not list playback
	// devices.
	ErrDeviceEnumeration = errors.New("device enumeration failed")

	// ErrDeviceNotFound means no playback device matches the configured
	// name exactly.
	ErrDeviceNotFound = errors.New("playback device not found")

	// ErrDeviceInit means the named device exists but opening its output
	// stream failed.
	ErrDeviceInit = errors.New("playback device initialization failed")
)
