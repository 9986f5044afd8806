package detector

import (
	"context"
	"errors"
	"testing"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	lang  string
	err   error
	calls int
}

func (s *stubDetector) Detect(string) (string, error) {
	s.calls++
	return s.lang, s.err
}

func (s *stubDetector) DetectAsync(ctx context.Context, text string) <-chan Result {
	return Offload(ctx, func() (string, error) {
		return s.Detect(text)
	})
}

func TestCompositeEmptyFails(t *testing.T) {
	c := NewComposite()
	assert.Equal(t, 0, c.Len())

	_, err := c.Detect("hello")
	assert.True(t, common.IsDetectionFailed(err))

	_, err = Await(c.DetectAsync(context.Background(), "hello"))
	assert.True(t, common.IsDetectionFailed(err))
}

func TestCompositeFirstSuccessWins(t *testing.T) {
	failing := &stubDetector{err: common.NewDetectionFailed(nil)}
	second := &stubDetector{lang: "fr"}
	third := &stubDetector{lang: "de"}

	c := NewComposite()
	c.Add(failing)
	c.Add(second)
	c.Add(third)
	assert.Equal(t, 3, c.Len())

	lang, err := c.Detect("anything")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)

	lang, err = Await(c.DetectAsync(context.Background(), "anything"))
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
	assert.Equal(t, 0, third.calls)
}

func TestCompositeAllFailed(t *testing.T) {
	c := NewComposite()
	c.Add(&stubDetector{err: errors.New("remote down")})
	c.Add(&stubDetector{err: common.NewDetectionFailed(nil)})

	_, err := c.Detect("hello")
	assert.True(t, common.IsDetectionFailed(err))

	_, err = Await(c.DetectAsync(context.Background(), "hello"))
	assert.True(t, common.IsDetectionFailed(err))
}

func TestCompositeWithHybrid(t *testing.T) {
	c := NewComposite()
	c.Add(NewHybrid(WithClassifier(unsure)))
	c.Add(&stubDetector{lang: "el"})

	lang, err := c.Detect("hello")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	lang, err = c.Detect("Καλημέρα")
	require.NoError(t, err)
	assert.Equal(t, "el", lang)
}
