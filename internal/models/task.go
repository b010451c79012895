package models

// GenerationResult is the terminal outcome of a successful generation job.
// URL is a retrieval URL built from the provider's file endpoint; the caller
// dereferences it separately.
type GenerationResult struct {
	TaskID string `json:"taskId"`
	FileID string `json:"fileId"`
	URL    string `json:"url"`
}
