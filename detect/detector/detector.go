package detector

import (
	"context"
	"fmt"

	"github.com/sebastienrousseau/langweave/detect/common"
)

// Result is the outcome of a non-blocking detection.
type Result struct {
	Language string
	Err      error
}

// LanguageDetector is implemented by every detection strategy.
//
// Detect blocks the calling goroutine. DetectAsync returns immediately; the
// returned channel receives exactly one Result. Failures of either form are
// reported as common.KindDetectionFailed.
type LanguageDetector interface {
	Detect(text string) (string, error)
	DetectAsync(ctx context.Context, text string) <-chan Result
}

// Named is implemented by detectors that have a name for logs and metrics.
type Named interface {
	GetName() string
}

func nameOf(d LanguageDetector) string {
	if n, ok := d.(Named); ok {
		return n.GetName()
	}
	return fmt.Sprintf("%T", d)
}

// Offload runs detect on its own goroutine and delivers its outcome on the
// returned channel. If the worker panics, or ctx is done before it finishes,
// a detection failure is delivered instead. The worker is never interrupted;
// a result that arrives after ctx is done is dropped.
func Offload(ctx context.Context, detect func() (string, error)) <-chan Result {
	out := make(chan Result, 1)
	done := make(chan Result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result{Err: common.NewDetectionFailed(fmt.Errorf("detection worker panicked: %v", r))}
			}
		}()
		lang, err := detect()
		done <- Result{Language: lang, Err: err}
	}()

	go func() {
		select {
		case r := <-done:
			out <- r
		case <-ctx.Done():
			out <- Result{Err: common.NewDetectionFailed(ctx.Err())}
		}
	}()
	return out
}

// Await blocks until r delivers and unpacks it.
func Await(r <-chan Result) (string, error) {
	res := <-r
	return res.Language, res.Err
}
