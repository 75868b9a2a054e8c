//go:build !linux

package audio

import (
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

type malgoOutput struct {
	sampleRate int
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
}

func newNativeOutput(sampleRate int) graph.Output {
	return &malgoOutput{sampleRate: sampleRate}
}

func (o *malgoOutput) Start(src graph.Source) error {
	if o.device != nil {
		return errors.New("audio: output already started")
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("malgo: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(o.sampleRate)

	reader := NewStreamReader(src)
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n, _ := reader.Read(out)
			clear(out[n:])
		},
	}
	dev, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("malgo device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("malgo start: %w", err)
	}
	o.ctx = ctx
	o.device = dev
	return nil
}

func (o *malgoOutput) Close() error {
	if o.device == nil {
		return nil
	}
	err := o.device.Stop()
	o.device.Uninit()
	_ = o.ctx.Uninit()
	o.ctx.Free()
	o.device = nil
	o.ctx = nil
	return err
}
