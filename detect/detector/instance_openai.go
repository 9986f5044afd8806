package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sebastienrousseau/langweave/detect/common"
	"golang.org/x/text/language"
)

const (
	OPENAI = "openai"

	defaultOpenAISystemPrompt = "Identify the natural language of the user's message. " +
		"Reply with the ISO 639-1 code of that language only, in lowercase, " +
		"or with 'und' if it cannot be identified."
)

func init() {
	registerDetectorInstance(OPENAI, newOpenAIInstance)
}

// InstanceOpenAI asks an OpenAI style chat completion API for the language
// code of the text.
type InstanceOpenAI struct {
	baseInstance
	aiClient     openai.Client
	model        string
	systemPrompt string
}

func newOpenAIInstance(conf DetectorConfig) (instance Instance, err error) {
	openaiOpts := []option.RequestOption{
		// Retries are handled by the pool
		option.WithMaxRetries(0),
	}

	ld := &InstanceOpenAI{
		baseInstance: newBaseInstance(conf),
	}

	if conf.Token == "" {
		ld.logger.Warn("no API token configured, using empty")
	} else {
		openaiOpts = append(openaiOpts, option.WithAPIKey(conf.Token))
	}
	if conf.Endpoint != "" {
		openaiOpts = append(openaiOpts, option.WithBaseURL(conf.Endpoint))
	}

	if conf.Model == "" {
		err = fmt.Errorf("%s: no openai model configured", conf.Name)
		return
	}

	ld.aiClient = openai.NewClient(openaiOpts...)
	ld.model = conf.Model
	ld.systemPrompt = conf.SystemPrompt
	if ld.systemPrompt == "" {
		ld.systemPrompt = defaultOpenAISystemPrompt
	}

	ld.logger.Infof("initialized openai detector with model: %s, api url: %s", ld.model, conf.Endpoint)
	return ld, nil
}

func (ld *InstanceOpenAI) Detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	var chatCompletion *openai.ChatCompletion
	chatCompletion, err = ld.aiClient.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: ld.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(ld.systemPrompt),
				openai.UserMessage(req.Text),
			},
		},
	)

	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.Request != nil {
			// Mask sensitive data
			r := apiErr.Request.Clone(context.Background())
			r.Header.Set("Authorization", "********")
			err = &common.HTTPError{
				Err:      err,
				Request:  r,
				Response: apiErr.Response,
			}
		}
		return
	}

	if len(chatCompletion.Choices) == 0 {
		err = fmt.Errorf("no choice found in response")
		return
	}

	reply := chatCompletion.Choices[0].Message.Content
	ld.logger.WithField("trace_id", req.TraceId).Debugf("openai reply: %q", reply)
	return ld.response(parseCodeReply(reply), 1.0)
}

// parseCodeReply extracts a base language code from a model reply such as
// "fr", "FR." or "pt-BR". Unknown or undetermined replies give "".
func parseCodeReply(reply string) string {
	reply = strings.Trim(strings.TrimSpace(reply), ".\"'`")
	if reply == "" {
		return ""
	}
	tag, err := language.Parse(reply)
	if err != nil || tag.IsRoot() {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
