package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffloadDeliversResult(t *testing.T) {
	lang, err := Await(Offload(context.Background(), func() (string, error) {
		return "en", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	cause := common.NewDetectionFailed(nil)
	_, err = Await(Offload(context.Background(), func() (string, error) {
		return "", cause
	}))
	assert.Same(t, cause, err)
}

func TestOffloadRecoversPanic(t *testing.T) {
	lang, err := Await(Offload(context.Background(), func() (string, error) {
		panic("boom")
	}))
	assert.Empty(t, lang)
	assert.True(t, common.IsDetectionFailed(err))
}

func TestOffloadContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	finished := make(chan struct{})

	r := Offload(ctx, func() (string, error) {
		defer close(finished)
		<-release
		return "en", nil
	})
	cancel()

	select {
	case res := <-r:
		assert.True(t, common.IsDetectionFailed(res.Err))
		assert.True(t, errors.Is(res.Err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("no result after cancellation")
	}

	// The worker still runs to completion
	close(release)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
	}
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, HYBRID, nameOf(NewHybrid()))
	assert.Equal(t, "*detector.stubDetector", nameOf(&stubDetector{}))
}
