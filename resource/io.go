package resource

import (
	"context"
	"io"
)

// RateLimitedWriter charges every write against the IO budget of a
// Controller before passing it on.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter wraps w. A nil controller imposes no limit.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, rc: rc}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader charges the bytes actually read, so short reads from
// remote bodies are not over-throttled.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r. A nil controller imposes no limit.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n == 0 {
		return 0, err
	}
	if lerr := r.rc.AcquireIO(r.ctx, n); lerr != nil {
		return n, lerr
	}
	return n, err
}

// ReadAll reads r to the end under the IO budget of rc.
func ReadAll(ctx context.Context, r io.Reader, rc *Controller) ([]byte, error) {
	if rc == nil {
		return io.ReadAll(r)
	}
	return io.ReadAll(NewRateLimitedReader(ctx, r, rc))
}
