package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/4O4-Not-F0und/detectlanguage-go"
)

const (
	DETECT_LANGUAGE = "detect_language"
)

func init() {
	registerDetectorInstance(DETECT_LANGUAGE, newDetectLanguageInstance)
}

// InstanceDetectLanguage queries the detectlanguage.com API.
type InstanceDetectLanguage struct {
	baseInstance
	client *detectlanguage.Client
}

func newDetectLanguageInstance(conf DetectorConfig) (instance Instance, err error) {
	if conf.Token == "" {
		err = fmt.Errorf("%s: detectlanguage api token is required", conf.Name)
		return
	}

	ld := &InstanceDetectLanguage{
		baseInstance: newBaseInstance(conf),
		client:       detectlanguage.New(conf.Token),
	}

	// Check API status
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(conf.Timeout)*time.Second)
	defer cancel()

	ld.logger.Debug("checking detectlanguage api instance status")
	var user *detectlanguage.UserStatusResponse
	user, err = ld.client.UserStatus(ctx)
	if err != nil {
		err = fmt.Errorf("detectlanguage api status error: %w", err)
		return
	}
	if user.Status != "ACTIVE" {
		err = fmt.Errorf("detectlanguage api status error, user status: %s", user.Status)
		return
	}

	b, _ := json.Marshal(user)
	ld.logger.Info(string(b))

	return ld, nil
}

func (ld *InstanceDetectLanguage) Detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	var r []*detectlanguage.DetectionResult
	r, err = ld.client.Detect(ctx, req.Text)
	if err != nil {
		return
	}
	b, _ := json.Marshal(r)
	ld.logger.WithField("trace_id", req.TraceId).Debug(string(b))

	lang, confidence := pickReliable(r)
	return ld.response(lang, confidence)
}

// pickReliable returns the most confident reliable result, lowercased.
func pickReliable(results []*detectlanguage.DetectionResult) (lang string, confidence float64) {
	for _, cv := range results {
		if cv == nil || !cv.Reliable {
			continue
		}

		c := float64(cv.Confidence)
		if c > confidence {
			lang = strings.ToLower(cv.Language)
			confidence = c
		}
	}
	return
}
