package detector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	registeredDetectorInstances = map[string]newDetectorInstanceFunc{}
)

type newDetectorInstanceFunc func(DetectorConfig) (Instance, error)

func registerDetectorInstance(name string, f newDetectorInstanceFunc) {
	if _, ok := registeredDetectorInstances[name]; !ok {
		registeredDetectorInstances[name] = f
		return
	}
	panic(fmt.Sprintf("detector instance type '%s' already registered", name))
}

// InstanceTypes lists the registered instance types, sorted.
func InstanceTypes() []string {
	types := make([]string, 0, len(registeredDetectorInstances))
	for t := range registeredDetectorInstances {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func NewDetectorInstance(conf DetectorConfig) (Instance, error) {
	if f, ok := registeredDetectorInstances[conf.Type]; ok {
		return f(conf)
	}
	return nil, fmt.Errorf("unknown detector type '%s', detector: %s", conf.Type, conf.Name)
}

type DetectRequest struct {
	Text    string
	TraceId string
}

type DetectResponse struct {
	Language   string
	Confidence float64
}

// Instance is a single configured backend (a local model or a remote API).
type Instance interface {
	Detect(context.Context, DetectRequest) (*DetectResponse, error)
	Name() string
}

type baseInstance struct {
	name                string
	confidenceThreshold float64
	sourceLangs         []string
	logger              *logrus.Entry
}

func newBaseInstance(conf DetectorConfig) baseInstance {
	langs := make([]string, 0, len(conf.SourceLangFilter))
	for _, l := range conf.SourceLangFilter {
		langs = append(langs, strings.ToLower(l))
	}
	return baseInstance{
		name:                conf.Name,
		confidenceThreshold: conf.SourceLangConfidenceThreshold,
		sourceLangs:         langs,
		logger:              logrus.WithField("detector_instance", conf.Name),
	}
}

func (t *baseInstance) Name() string {
	return t.name
}

// checkDetectResult returns a weak error when lang is empty, filtered out
// or below the confidence threshold.
func (t *baseInstance) checkDetectResult(lang string, confidence float64) (err error) {
	if lang == "" {
		err = newWeakError(fmt.Errorf("no reliable language detected"))
		return
	}
	if !slices.Contains(t.sourceLangs, lang) {
		err = newWeakError(fmt.Errorf("detected language '%s' is not in the configured source language filter", lang))
		return
	}
	if confidence < t.confidenceThreshold {
		err = newWeakError(
			fmt.Errorf("detected language '%s' (confidence: %.2f) is below threshold (%.2f)",
				lang, confidence, t.confidenceThreshold),
		)
		return
	}
	return
}

func (t *baseInstance) response(lang string, confidence float64) (*DetectResponse, error) {
	if err := t.checkDetectResult(lang, confidence); err != nil {
		return nil, err
	}
	return &DetectResponse{
		Language:   lang,
		Confidence: confidence,
	}, nil
}
