// ABOUTME: Malgo-based playback device
// ABOUTME: Pulls float32 blocks from a callback on the miniaudio thread
package output

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/malgo"
)

// Malgo is a playback device backed by miniaudio. It satisfies the pull
// contract: the audio thread invokes the session callback for every
// period and maps its status to device lifecycle.
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	channels int

	mu       sync.Mutex
	cb       Callback
	stopped  bool
	finished chan struct{}
}

// NewMalgo creates an unopened malgo device.
func NewMalgo() *Malgo {
	return &Malgo{finished: make(chan struct{})}
}

// Open initializes the playback device and starts pulling from cb.
func (m *Malgo) Open(sampleRate, channels, blockFrames int, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("device already open")
	}
	// A fresh completion channel per session so the device can be
	// reopened after a previous stream played out.
	m.finished = make(chan struct{})
	m.stopped = false

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.malgoCtx = ctx
	m.cb = cb
	m.channels = channels

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(blockFrames)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			m.dataCallback(pOutput)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		m.teardownContext()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		m.teardownContext()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	log.Debug("playback device started",
		"rate", sampleRate, "channels", channels, "blockFrames", blockFrames)
	return nil
}

// dataCallback runs on the miniaudio thread. After the session callback
// signals termination it keeps emitting silence until the device stops.
func (m *Malgo) dataCallback(out []byte) {
	m.mu.Lock()
	stopped := m.stopped
	cb := m.cb
	m.mu.Unlock()

	if stopped || cb == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}

	status := cb(out)
	if status == StatusContinue {
		return
	}

	if status == StatusAbort {
		log.Error("playback aborted by session callback")
	}
	m.finish()
}

// finish marks the stream done and stops the device off-thread.
// miniaudio forbids stopping a device from its own data callback.
func (m *Malgo) finish() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	device := m.device
	m.mu.Unlock()

	go func() {
		if device != nil {
			if err := device.Stop(); err != nil {
				log.Warn("device stop error", "error", err)
			}
		}
		close(m.finished)
	}()
}

// Finished reports device completion.
func (m *Malgo) Finished() <-chan struct{} {
	return m.finished
}

// Close releases device resources.
func (m *Malgo) Close() error {
	m.mu.Lock()
	device := m.device
	m.device = nil
	m.cb = nil
	m.mu.Unlock()

	if device != nil {
		if err := device.Stop(); err != nil {
			log.Warn("device stop error", "error", err)
		}
		device.Uninit()
	}
	m.teardownContext()
	return nil
}

func (m *Malgo) teardownContext() {
	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Warn("malgo context uninit error", "error", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
}
