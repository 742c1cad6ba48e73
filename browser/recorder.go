package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// recorder writes screencast frames of one page as numbered JPEGs.
// Chrome stops sending frames until each one is acknowledged.
type recorder struct {
	page *rod.Page
	dir  string

	mu     sync.Mutex
	frames int
	err    error
	stop   func()
}

func (p *rodPage) startRecording(ctx context.Context, root string, index int) error {
	dir := filepath.Join(root, fmt.Sprintf("page-%d", index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create video dir: %w", err)
	}

	rctx, cancel := context.WithCancel(p.ctx)
	rec := &recorder{page: p.page.Context(rctx), dir: dir}

	wait := rec.page.EachEvent(func(ev *proto.PageScreencastFrame) {
		rec.write(ev.Data)
		_ = proto.PageScreencastFrameAck{SessionID: ev.SessionID}.Call(rec.page)
	})
	go wait()

	quality := 60
	if err := (proto.PageStartScreencast{
		Format:  proto.PageStartScreencastFormatJpeg,
		Quality: &quality,
	}).Call(p.page.Context(ctx)); err != nil {
		cancel()
		return fmt.Errorf("start screencast: %w", err)
	}

	rec.stop = func() {
		_ = proto.PageStopScreencast{}.Call(rec.page)
		cancel()
	}
	p.mu.Lock()
	p.recorder = rec
	p.mu.Unlock()
	return nil
}

func (r *recorder) write(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	name := filepath.Join(r.dir, fmt.Sprintf("frame-%05d.jpg", r.frames))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		r.err = err
		return
	}
	r.frames++
}
