package ffmpeg

import (
	"errors"
	"fmt"
	"io"
	"os"

	"ytgrab/internal/domain/media"
)

// input binds one upstream stream to the parent end of a transcoder input pipe.
type input struct {
	name string
	src  io.Reader
	dst  *os.File
}

// wiring holds the pipes of one ffmpeg invocation. child ends are handed to
// the process and closed in the parent once it has started.
type wiring struct {
	args   []string
	stdin  *os.File
	stdout *os.File
	extra  []*os.File
	inputs []input
	output *os.File
	child  []*os.File
}

// wire maps the plan's streams onto ffmpeg's channels: stdin for audio-only
// jobs with stdout feeding the output, or fd 3 (audio) and fd 4 (video) for
// mux jobs writing straight to the output path.
func wire(plan media.TranscodePlan) (*wiring, error) {
	if plan.Audio == nil || plan.Output == nil {
		return nil, errors.New("transcode plan needs an audio stream and an output")
	}

	w := &wiring{}
	switch plan.Kind {
	case media.KindAudio:
		inR, inW, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("create stdin pipe: %w", err)
		}
		outR, outW, err := os.Pipe()
		if err != nil {
			closeFiles(inR, inW)
			return nil, fmt.Errorf("create stdout pipe: %w", err)
		}
		w.args = AudioArgs()
		w.stdin = inR
		w.stdout = outW
		w.inputs = []input{{name: plan.Audio.Name, src: plan.Audio.Body, dst: inW}}
		w.output = outR
		w.child = []*os.File{inR, outW}

	case media.KindVideo:
		if plan.Video == nil {
			return nil, errors.New("video transcode plan needs a video stream")
		}
		aR, aW, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("create audio pipe: %w", err)
		}
		vR, vW, err := os.Pipe()
		if err != nil {
			closeFiles(aR, aW)
			return nil, fmt.Errorf("create video pipe: %w", err)
		}
		w.args = MuxArgs(plan.Output.Path())
		// ExtraFiles[i] becomes fd 3+i in the child.
		w.extra = []*os.File{aR, vR}
		w.inputs = []input{
			{name: plan.Audio.Name, src: plan.Audio.Body, dst: aW},
			{name: plan.Video.Name, src: plan.Video.Body, dst: vW},
		}
		w.child = []*os.File{aR, vR}

	default:
		return nil, fmt.Errorf("unsupported kind %q", plan.Kind)
	}
	return w, nil
}

func (w *wiring) closeChildEnds() {
	closeFiles(w.child...)
}

func (w *wiring) closeAll() {
	w.closeChildEnds()
	for _, in := range w.inputs {
		_ = in.dst.Close()
	}
	if w.output != nil {
		_ = w.output.Close()
	}
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
