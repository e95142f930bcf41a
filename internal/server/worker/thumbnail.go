package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/image/draw"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
	"github.com/ubonisrael/alx-files-manager/internal/server/storage"
)

// ThumbnailWidths are the derivative sizes generated for every image.
var ThumbnailWidths = [3]int{100, 250, 500}

const jpegQuality = 90

// FileGetter is the slice of the file repository the worker needs.
type FileGetter interface {
	GetOwned(ctx context.Context, id, userID bson.ObjectID) (*database.File, error)
}

// ThumbnailWorker derives resized raster variants from original image
// blobs. Derivative writes overwrite prior artifacts, so redelivered
// jobs are safe to rerun.
type ThumbnailWorker struct {
	files FileGetter
	blobs storage.Store
}

// NewThumbnailWorker creates a thumbnail worker.
func NewThumbnailWorker(files FileGetter, blobs storage.Store) *ThumbnailWorker {
	return &ThumbnailWorker{files: files, blobs: blobs}
}

// Process handles one thumbnail job. Missing payload fields and
// unresolvable records are permanent failures. Each width is attempted
// independently; the job fails with the first per-width error, but
// derivatives written for other widths are retained.
func (w *ThumbnailWorker) Process(ctx context.Context, raw []byte) error {
	var payload queue.ThumbnailJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("malformed thumbnail payload: %w", err))
	}

	if payload.FileID == "" {
		return Permanent(errors.New("Missing fileId"))
	}
	if payload.UserID == "" {
		return Permanent(errors.New("Missing userId"))
	}

	fileID, err := bson.ObjectIDFromHex(payload.FileID)
	if err != nil {
		return Permanent(fmt.Errorf("invalid fileId: %w", err))
	}
	userID, err := bson.ObjectIDFromHex(payload.UserID)
	if err != nil {
		return Permanent(fmt.Errorf("invalid userId: %w", err))
	}

	file, err := w.files.GetOwned(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return Permanent(errors.New("File not found"))
		}
		return err
	}

	data, err := w.blobs.Read(file.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to read original blob: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", file.ID.Hex(), err)
	}

	// Every width is attempted; results are aggregated so a partial
	// failure stays observable instead of being masked by earlier
	// successes.
	var results [len(ThumbnailWidths)]error
	for i, width := range ThumbnailWidths {
		results[i] = w.writeThumbnail(file, src, format, width)
	}

	for i, width := range ThumbnailWidths {
		if results[i] != nil {
			return fmt.Errorf("thumbnail width %d: %w", width, results[i])
		}
	}

	slog.Info("thumbnails generated", "file_id", file.ID.Hex())
	return nil
}

func (w *ThumbnailWorker) writeThumbnail(file *database.File, src image.Image, format string, width int) error {
	resized := resize(src, width)

	var buf bytes.Buffer
	if err := encode(&buf, resized, format); err != nil {
		return err
	}

	return w.blobs.WriteDerivative(file.LocalPath, width, buf.Bytes())
}

// resize scales src to the target width preserving aspect ratio.
func resize(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// encode re-encodes img in the source blob's format.
func encode(buf *bytes.Buffer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		return gif.Encode(buf, img, nil)
	default:
		return png.Encode(buf, img)
	}
}
