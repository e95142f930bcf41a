package queue

// ThumbnailJob asks the worker to derive resized variants of an
// uploaded image.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// WelcomeJob asks the worker to run the post-registration side effect.
type WelcomeJob struct {
	UserID string `json:"userId"`
}
