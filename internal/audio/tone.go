package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ToneSpec describes one beep and how often it repeats.
type ToneSpec struct {
	Frequency  float64
	Duration   time.Duration
	StartGain  float64
	EndGain    float64
	SampleRate int
	Repeats    int
	Gap        time.Duration
}

// DefaultToneSpec is an 800 Hz sine, half a second long, decaying
// exponentially from 0.3 to 0.01, played three times 200ms apart.
func DefaultToneSpec() ToneSpec {
	return ToneSpec{
		Frequency:  800,
		Duration:   500 * time.Millisecond,
		StartGain:  0.3,
		EndGain:    0.01,
		SampleRate: 44100,
		Repeats:    3,
		Gap:        200 * time.Millisecond,
	}
}

// SynthesizeWAV writes one beep as 16-bit mono PCM WAV.
func SynthesizeWAV(w io.Writer, spec ToneSpec) error {
	if spec.SampleRate <= 0 || spec.Duration <= 0 || spec.StartGain <= 0 || spec.EndGain <= 0 {
		return fmt.Errorf("audio: invalid tone spec %+v", spec)
	}
	samples := int(float64(spec.SampleRate) * spec.Duration.Seconds())
	dataSize := uint32(samples * 2)

	bw := bufio.NewWriter(w)
	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + dataSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1),
		uint16(1),
		uint32(spec.SampleRate),
		uint32(spec.SampleRate * 2),
		uint16(2),
		uint16(16),
		[4]byte{'d', 'a', 't', 'a'},
		dataSize,
	}
	for _, field := range header {
		if err := binary.Write(bw, binary.LittleEndian, field); err != nil {
			return err
		}
	}

	ratio := spec.EndGain / spec.StartGain
	total := spec.Duration.Seconds()
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(spec.SampleRate)
		gain := spec.StartGain * math.Pow(ratio, t/total)
		v := math.Sin(2*math.Pi*spec.Frequency*t) * gain
		if err := binary.Write(bw, binary.LittleEndian, int16(v*math.MaxInt16)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Tone synthesizes the beep on first use and plays it through a system
// player. The generated file is kept for the life of the process.
type Tone struct {
	spec     ToneSpec
	player   string
	lookPath func(string) (string, error)
	launch   launcher
	dir      string

	once    sync.Once
	path    string
	initErr error
}

func NewTone(spec ToneSpec, player string) *Tone {
	return &Tone{
		spec:     spec,
		player:   player,
		lookPath: exec.LookPath,
		launch:   execLaunch,
	}
}

func (t *Tone) ensureFile() (string, error) {
	t.once.Do(func() {
		f, err := os.CreateTemp(t.dir, "focusdeck-beep-*.wav")
		if err != nil {
			t.initErr = fmt.Errorf("create tone file: %w", err)
			return
		}
		defer f.Close()
		if err := SynthesizeWAV(f, t.spec); err != nil {
			t.initErr = fmt.Errorf("synthesize tone: %w", err)
			return
		}
		t.path = f.Name()
	})
	return t.path, t.initErr
}

// PlayAlert starts each repeat Gap apart without waiting for the previous
// one to finish, so beeps may overlap.
func (t *Tone) PlayAlert(ctx context.Context) error {
	path, err := t.ensureFile()
	if err != nil {
		return err
	}
	name, args, err := resolvePlayer(t.lookPath, t.player)
	if err != nil {
		return err
	}
	repeats := t.spec.Repeats
	if repeats <= 0 {
		repeats = 1
	}
	for i := 0; i < repeats; i++ {
		if i > 0 {
			if err := sleepContext(ctx, t.spec.Gap); err != nil {
				return err
			}
		}
		if _, err := t.launch(name, append(append([]string(nil), args...), path)...); err != nil {
			return err
		}
	}
	return nil
}

// Close removes the generated file.
func (t *Tone) Close() error {
	if t.path == "" {
		return nil
	}
	return os.Remove(t.path)
}
