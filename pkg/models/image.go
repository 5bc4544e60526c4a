package models

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt     string `json:"prompt"`
	Size       string `json:"size,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Background string `json:"background,omitempty"`
}

// EditRequest is the body of POST /api/edit. Images and Mask name files
// previously stored through POST /api/upload.
type EditRequest struct {
	Prompt  string   `json:"prompt"`
	Size    string   `json:"size,omitempty"`
	Quality string   `json:"quality,omitempty"`
	Images  []string `json:"images"`
	Mask    string   `json:"mask,omitempty"`
}

// PromptRequest is the body of POST /api/prompt-helper.
type PromptRequest struct {
	Idea  string `json:"idea"`
	Style string `json:"style,omitempty"`
	Mood  string `json:"mood,omitempty"`
}

// GenerateResponse is returned by generation and edit.
type GenerateResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
}

// ImageEntry is one stored image in a listing. Timestamp is the last
// modification time in Unix milliseconds.
type ImageEntry struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// ListResponse is returned by the listing endpoints. Images is never null.
type ListResponse struct {
	Success bool         `json:"success"`
	Images  []ImageEntry `json:"images"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// PromptResponse is returned by POST /api/prompt-helper.
type PromptResponse struct {
	Success bool     `json:"success"`
	Prompts []string `json:"prompts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
