package audio

import (
	"errors"

	"github.com/ebitengine/oto/v3"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

var otoContext = deviceContext[*oto.Context]{name: "oto"}

func openOto(sampleRate int) (*oto.Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return ctx, nil
}

type otoOutput struct {
	sampleRate int
	player     *oto.Player
}

func (o *otoOutput) Start(src graph.Source) error {
	if o.player != nil {
		return errors.New("audio: output already started")
	}
	ctx, err := otoContext.get(o.sampleRate, openOto)
	if err != nil {
		return err
	}
	o.player = ctx.NewPlayer(NewStreamReader(src))
	o.player.Play()
	return nil
}

func (o *otoOutput) Close() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	return err
}
