package minimax

import (
	"context"

	"github.com/buildwise/minimax-relay/internal/models"
)

const (
	imageSubmitPath = "/v1/image_generation"
	imageQueryPath  = "/v1/query/image_generation"
)

type imageSubmitRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type taskSubmitResponse struct {
	TaskID   string    `json:"task_id"`
	BaseResp *BaseResp `json:"base_resp"`
}

// GenerateImage submits an image-generation job and polls it to completion.
// On success the result carries a retrieval URL for the generated file.
func (c *Client) GenerateImage(ctx context.Context, apiKey, prompt string, policy PollPolicy) (models.GenerationResult, error) {
	var submitted taskSubmitResponse
	payload := imageSubmitRequest{Model: ImageModel, Prompt: prompt}
	if err := c.postJSON(ctx, imageSubmitPath, apiKey, payload, &submitted); err != nil {
		return models.GenerationResult{}, err
	}
	if err := submitted.BaseResp.Err(FamilyGeneration); err != nil {
		return models.GenerationResult{}, err
	}
	if submitted.TaskID == "" {
		return models.GenerationResult{}, ErrNoTaskID
	}

	fileID, err := c.awaitTask(ctx, apiKey, "image", imageQueryPath, submitted.TaskID, policy)
	if err != nil {
		return models.GenerationResult{}, err
	}
	return models.GenerationResult{
		TaskID: submitted.TaskID,
		FileID: fileID,
		URL:    c.FileURL(fileID),
	}, nil
}
