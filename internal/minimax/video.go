package minimax

import (
	"context"

	"github.com/buildwise/minimax-relay/internal/models"
)

const (
	videoSubmitPath = "/v1/video_generation"
	videoQueryPath  = "/v1/query/video_generation"
)

// VideoRequest describes a video-generation job. FirstFrameImage optionally
// pins the opening frame to a caller-supplied image (base64 or data: URL).
type VideoRequest struct {
	Prompt          string
	FirstFrameImage string
}

type videoSubmitRequest struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	FirstFrameImage string `json:"first_frame_image,omitempty"`
}

// GenerateVideo submits a video-generation job and polls it to completion.
// Identical protocol to image generation; video jobs just get a longer
// polling budget from the caller.
func (c *Client) GenerateVideo(ctx context.Context, apiKey string, req VideoRequest, policy PollPolicy) (models.GenerationResult, error) {
	var submitted taskSubmitResponse
	payload := videoSubmitRequest{
		Model:           VideoModel,
		Prompt:          req.Prompt,
		FirstFrameImage: req.FirstFrameImage,
	}
	if err := c.postJSON(ctx, videoSubmitPath, apiKey, payload, &submitted); err != nil {
		return models.GenerationResult{}, err
	}
	if err := submitted.BaseResp.Err(FamilyGeneration); err != nil {
		return models.GenerationResult{}, err
	}
	if submitted.TaskID == "" {
		return models.GenerationResult{}, ErrNoTaskID
	}

	fileID, err := c.awaitTask(ctx, apiKey, "video", videoQueryPath, submitted.TaskID, policy)
	if err != nil {
		return models.GenerationResult{}, err
	}
	return models.GenerationResult{
		TaskID: submitted.TaskID,
		FileID: fileID,
		URL:    c.FileURL(fileID),
	}, nil
}
