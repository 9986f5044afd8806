package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebastienrousseau/langweave/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreamer(t *testing.T, workers int) *Streamer {
	t.Helper()
	service, err := detect.NewService(detect.NewServiceConfig())
	require.NoError(t, err)
	s, err := newStreamer(StreamConfig{WorkerPoolSize: workers}, service)
	require.NoError(t, err)
	return s
}

func TestStreamerKeepsInputOrder(t *testing.T) {
	s := newTestStreamer(t, 8)

	samples := []struct{ text, lang string }{
		{"hello", "en"},
		{"Bonjour", "fr"},
		{"Danke", "de"},
		{"안녕하세요", "ko"},
		{"你好", "zh"},
		{"مرحبا", "ar"},
	}
	var in, want strings.Builder
	for i := 0; i < 50; i++ {
		sample := samples[i%len(samples)]
		fmt.Fprintln(&in, sample.text)
		fmt.Fprintf(&want, "%s\t%s\n", sample.lang, sample.text)
	}

	out := new(bytes.Buffer)
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in.String()), out))
	assert.Equal(t, want.String(), out.String())
}

func TestStreamerReload(t *testing.T) {
	s := newTestStreamer(t, 1)
	first := s.currentService()

	c := detect.NewServiceConfig()
	c.Strategies = []string{detect.StrategyHybrid}
	service, err := detect.NewService(c)
	require.NoError(t, err)

	s.Reload(StreamConfig{WorkerPoolSize: 3}, service)
	assert.Same(t, service, s.currentService())
	assert.NotSame(t, first, s.currentService())
	assert.Equal(t, 1, s.workerPoolSize)
}

func TestNewStreamerRejectsEmptyPool(t *testing.T) {
	_, err := newStreamer(StreamConfig{}, nil)
	assert.Error(t, err)
}

func TestLineTraceId(t *testing.T) {
	a := newLine(1, "hello")
	b := newLine(2, "hello")
	assert.Len(t, a.TraceId, 32)
	assert.NotEqual(t, a.TraceId, b.TraceId)
	assert.Equal(t, a.TraceId, newLine(1, "hello").TraceId)
}
