package audio

import (
	"errors"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cbegin/ambientpad-go/internal/graph"
)

var ebitenContext = deviceContext[*ebitaudio.Context]{name: "ebiten"}

func openEbiten(sampleRate int) (*ebitaudio.Context, error) {
	return ebitaudio.NewContext(sampleRate), nil
}

type ebitenOutput struct {
	sampleRate int
	player     *ebitaudio.Player
	reader     *StreamReader
}

func (o *ebitenOutput) Start(src graph.Source) error {
	if o.player != nil {
		return errors.New("audio: output already started")
	}
	ctx, err := ebitenContext.get(o.sampleRate, openEbiten)
	if err != nil {
		return err
	}
	reader := NewStreamReader(src)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return err
	}
	pl.Play()
	o.player = pl
	o.reader = reader
	return nil
}

func (o *ebitenOutput) Close() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	return errors.Join(err, o.reader.Close())
}
