package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil c is
// ignored, so it can be deferred right after a fallible open.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed",
			"target", fmt.Sprintf("%T", c),
			"error", err.Error())
	}
}

// Write writes data to w and logs a failure. Used for response bodies where
// the status line is already sent and nothing else can be done.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("write failed",
			"written", n,
			"size", len(data),
			"error", err.Error())
	}
}
