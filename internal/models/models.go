package models

type AnalyseResponse struct {
	Result string `json:"result"`
	Image  string `json:"image"`
}

// DownloadRequest carries an earlier analysis back for rendering. Result is
// a pointer so an empty analysis is accepted while a missing one is not.
type DownloadRequest struct {
	Result *string `json:"result" binding:"required"`
	Image  string  `json:"image,omitempty"`
}
