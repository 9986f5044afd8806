package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sebastienrousseau/langweave/detect"
	"github.com/sirupsen/logrus"
)

const undeterminedLanguage = "und"

// Streamer detects the language of every input line with a bounded pool of
// workers and writes "<code>\t<line>" in input order.
type Streamer struct {
	service        *detect.Service
	workerPoolSize int
	configMu       *sync.RWMutex
}

func newStreamer(conf StreamConfig, service *detect.Service) (s *Streamer, err error) {
	if conf.WorkerPoolSize <= 0 {
		err = fmt.Errorf("invalid 'worker_pool_size': %d", conf.WorkerPoolSize)
		return
	}
	s = &Streamer{
		service:        service,
		workerPoolSize: conf.WorkerPoolSize,
		configMu:       &sync.RWMutex{},
	}
	return
}

// Reload swaps the detection service used for lines read from now on.
func (s *Streamer) Reload(conf StreamConfig, service *detect.Service) {
	logrus.Trace("acquiring streamer.configMu")
	s.configMu.Lock()
	logrus.Trace("acquired streamer.configMu")

	s.service = service
	if s.workerPoolSize != conf.WorkerPoolSize {
		logrus.Warn("worker pool size changed, please restart to apply")
	}

	s.configMu.Unlock()
	logrus.Trace("released streamer.configMu")
}

func (s *Streamer) currentService() *detect.Service {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.service
}

// Serve reads r until EOF or ctx is done. Blank lines are skipped.
func (s *Streamer) Serve(ctx context.Context, r io.Reader, w io.Writer) (err error) {
	q := make(chan int, s.workerPoolSize)
	// Results are written in the order lines were read.
	ordered := make(chan chan string, s.workerPoolSize)

	writerDone := make(chan error, 1)
	go func() {
		var werr error
		for res := range ordered {
			out := <-res
			if werr == nil {
				_, werr = io.WriteString(w, out)
			}
		}
		writerDone <- werr
	}()

	logrus.Infof("begin stream loop, queue size: %d", s.workerPoolSize)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		n++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		line := newLine(n, text)
		line.onPending()
		logrus.Trace("acquiring queue")
		q <- 1
		line.onProcessing()
		logrus.Trace("acquired queue")

		res := make(chan string, 1)
		ordered <- res
		go func(l *Line, service *detect.Service) {
			defer func() {
				<-q
				logrus.Trace("released queue")
			}()
			res <- s.handleLine(ctx, l, service)
		}(line, s.currentService())
	}
	close(ordered)

	werr := <-writerDone
	if err = scanner.Err(); err != nil {
		return fmt.Errorf("read input failed: %w", err)
	}
	if werr != nil {
		return fmt.Errorf("write output failed: %w", werr)
	}
	return
}

func (s *Streamer) handleLine(ctx context.Context, l *Line, service *detect.Service) (out string) {
	lang := undeterminedLanguage
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("panic recovered in handleLine: %v", r)
			l.onFailed(fmt.Errorf("%v", r))
			out = fmt.Sprintf("%s\t%s\n", undeterminedLanguage, l.Content)
		}
	}()

	res := <-service.DetectAsync(ctx, l.Content)
	if res.Err != nil {
		l.onFailed(res.Err)
	} else {
		lang = res.Language
		l.onSuccess(lang)
	}
	return fmt.Sprintf("%s\t%s\n", lang, l.Content)
}
