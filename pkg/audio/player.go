package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	log "github.com/sirupsen/logrus"
)

const (
	sampleRate = 44100
	channels   = 2
)

// Global audio context singleton; oto allows only one per process.
var (
	audioCtx     *oto.Context
	audioCtxOnce sync.Once
	audioReady   bool
)

func initContext() {
	audioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.WithError(err).Error("Failed to initialize audio context")
			return
		}

		// Wait for the hardware audio devices to be ready.
		<-readyChan

		audioCtx = ctx
		audioReady = true
	})
}

// Player loops the alert chime until stopped.
type Player struct {
	stopChan chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

// PlayChime starts looping the alert chime. Returns nil when no audio
// device is available; callers treat that as a silent alert.
func PlayChime() *Player {
	initContext()
	if !audioReady || audioCtx == nil {
		log.Warn("Audio context not ready; alert will be silent")
		return nil
	}

	p := &Player{stopChan: make(chan struct{})}
	go p.playLoop(chimeSamples())
	return p
}

func (p *Player) playLoop(pcm []byte) {
	for {
		p.player = audioCtx.NewPlayer(bytes.NewReader(pcm))
		p.player.Play()

		for p.player.IsPlaying() {
			select {
			case <-p.stopChan:
				p.player.Pause()
				p.player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := p.player.Close(); err != nil {
			log.WithError(err).Warn("Failed to close audio player")
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

// Stop stops the audio playback
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.stopChan)
		if p.player != nil {
			p.player.Pause()
		}
	}
}

// chimeSamples synthesizes one chime cycle as 16-bit stereo PCM: two
// short tones followed by a pause, so looping sounds like a doorbell
// rather than a siren.
func chimeSamples() []byte {
	type segment struct {
		freq     float64 // 0 means silence
		duration time.Duration
	}
	segments := []segment{
		{freq: 880, duration: 200 * time.Millisecond},
		{freq: 0, duration: 100 * time.Millisecond},
		{freq: 660, duration: 300 * time.Millisecond},
		{freq: 0, duration: 1400 * time.Millisecond},
	}

	var buf bytes.Buffer
	for _, seg := range segments {
		n := int(float64(sampleRate) * seg.duration.Seconds())
		for i := 0; i < n; i++ {
			var sample int16
			if seg.freq > 0 {
				// Short fade in/out avoids clicks at segment edges.
				envelope := 1.0
				fade := sampleRate / 100
				if i < fade {
					envelope = float64(i) / float64(fade)
				} else if n-i < fade {
					envelope = float64(n-i) / float64(fade)
				}
				v := math.Sin(2 * math.Pi * seg.freq * float64(i) / sampleRate)
				sample = int16(v * envelope * 0.4 * math.MaxInt16)
			}
			for c := 0; c < channels; c++ {
				binary.Write(&buf, binary.LittleEndian, sample)
			}
		}
	}
	return buf.Bytes()
}
