package minimax

import (
	"context"
	"encoding/json"
	"strings"
)

const textToSpeechPath = "/v1/t2a_v2"

// Speech defaults applied when the caller omits a parameter.
const (
	DefaultSpeechModel = "speech-01-hd"
	DefaultVoiceID     = "male-qn-qingse"
)

// SpeechRequest describes a synchronous text-to-speech call.
type SpeechRequest struct {
	Model   string
	Text    string
	VoiceID string
	Speed   float64
	Emotion string
}

// SpeechResult carries the base64 audio payload and the provider's usage
// block, passed through untouched.
type SpeechResult struct {
	Audio string
	Usage json.RawMessage
}

type voiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
	Emotion string  `json:"emotion,omitempty"`
}

type speechWireRequest struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	Stream       bool         `json:"stream"`
	VoiceSetting voiceSetting `json:"voice_setting"`
}

type speechWireResponse struct {
	Data struct {
		Audio string `json:"audio"`
	} `json:"data"`
	ExtraInfo json.RawMessage `json:"extra_info"`
	BaseResp  *BaseResp       `json:"base_resp"`
}

// TextToSpeech performs one synchronous synthesis call. The provider returns
// audio inline, so there is no polling.
func (c *Client) TextToSpeech(ctx context.Context, apiKey string, req SpeechRequest) (SpeechResult, error) {
	payload := speechWireRequest{
		Model:  strings.TrimSpace(req.Model),
		Text:   req.Text,
		Stream: false,
		VoiceSetting: voiceSetting{
			VoiceID: strings.TrimSpace(req.VoiceID),
			Speed:   req.Speed,
			Vol:     1.0,
			Pitch:   0,
			Emotion: req.Emotion,
		},
	}
	if payload.Model == "" {
		payload.Model = DefaultSpeechModel
	}
	if payload.VoiceSetting.VoiceID == "" {
		payload.VoiceSetting.VoiceID = DefaultVoiceID
	}
	if payload.VoiceSetting.Speed <= 0 {
		payload.VoiceSetting.Speed = 1.0
	}

	var resp speechWireResponse
	if err := c.postJSON(ctx, textToSpeechPath, apiKey, payload, &resp); err != nil {
		return SpeechResult{}, err
	}
	if err := resp.BaseResp.Err(FamilySpeech); err != nil {
		return SpeechResult{}, err
	}
	return SpeechResult{Audio: resp.Data.Audio, Usage: resp.ExtraInfo}, nil
}
