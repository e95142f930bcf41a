package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ubonisrael/alx-files-manager/internal/server/database"
	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
	"github.com/ubonisrael/alx-files-manager/internal/server/storage"
)

type fixture struct {
	svc   *FileService
	repo  *fakeFileRepo
	queue *fakeQueue
	dir   string
	user  *database.User
	other *database.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo := &fakeFileRepo{}
	q := &fakeQueue{}
	return &fixture{
		svc:   NewFileService(repo, storage.NewBlobStore(dir), q),
		repo:  repo,
		queue: q,
		dir:   dir,
		user:  &database.User{ID: bson.NewObjectID(), Email: "a@x.com"},
		other: &database.User{ID: bson.NewObjectID(), Email: "b@x.com"},
	}
}

func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return len(entries)
}

func b64(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  UploadRequest
		want error
	}{
		{"missing name", UploadRequest{Type: "file", Data: b64("x")}, ErrMissingName},
		{"missing type", UploadRequest{Name: "a"}, ErrMissingType},
		{"unknown type", UploadRequest{Name: "a", Type: "video", Data: b64("x")}, ErrMissingType},
		{"missing data for file", UploadRequest{Name: "a", Type: "file"}, ErrMissingData},
		{"missing data for image", UploadRequest{Name: "a", Type: "image"}, ErrMissingData},
		{"invalid base64", UploadRequest{Name: "a", Type: "file", Data: "!!not-base64!!"}, ErrMissingData},
		{"unparseable parent", UploadRequest{Name: "a", Type: "file", Data: b64("x"), ParentID: "zzz"}, ErrParentNotFound},
		{"unknown parent", UploadRequest{Name: "a", Type: "file", Data: b64("x"), ParentID: bson.NewObjectID().Hex()}, ErrParentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Upload(ctx, f.user, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.repo.files, "no record may exist after a failed upload")
		})
	}

	t.Run("parent is not a folder", func(t *testing.T) {
		f := newFixture(t)
		parent, err := f.svc.Upload(ctx, f.user, UploadRequest{Name: "doc", Type: "file", Data: b64("x")})
		require.NoError(t, err)

		_, err = f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "a", Type: "file", Data: b64("y"), ParentID: parent.ID,
		})
		assert.ErrorIs(t, err, ErrParentNotFolder)
		assert.Len(t, f.repo.files, 1)
	})

	t.Run("name is checked before type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Upload(ctx, f.user, UploadRequest{})
		assert.ErrorIs(t, err, ErrMissingName)
	})
}

func TestUploadFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.Upload(ctx, f.user, UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	assert.Equal(t, "docs", view.Name)
	assert.Equal(t, "folder", view.Type)
	assert.Equal(t, RootParentID, view.ParentID)
	assert.Equal(t, f.user.ID.Hex(), view.UserID)
	assert.Equal(t, 0, f.blobCount(t), "folders never write a blob")
	assert.Empty(t, f.repo.files[0].LocalPath)
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("writes exactly one blob and records its path", func(t *testing.T) {
		f := newFixture(t)

		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "notes.txt", Type: "file", Data: b64("hello world"),
		})
		require.NoError(t, err)

		assert.Equal(t, 1, f.blobCount(t))

		rec := f.repo.files[0]
		require.NotEmpty(t, rec.LocalPath)
		data, err := os.ReadFile(rec.LocalPath)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))

		assert.Equal(t, rec.ID.Hex(), view.ID)
		assert.Empty(t, f.queue.payloads, "plain files enqueue no job")
	})

	t.Run("nests under a folder parent", func(t *testing.T) {
		f := newFixture(t)
		folder, err := f.svc.Upload(ctx, f.user, UploadRequest{Name: "docs", Type: "folder"})
		require.NoError(t, err)

		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "notes.txt", Type: "file", Data: b64("x"), ParentID: folder.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, folder.ID, view.ParentID)
	})

	t.Run("defaults to private", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "notes.txt", Type: "file", Data: b64("x"),
		})
		require.NoError(t, err)
		assert.False(t, view.IsPublic)
	})
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.Upload(ctx, f.user, UploadRequest{
		Name: "img.png",
		Type: "image",
		Data: base64.StdEncoding.EncodeToString(pngBytes(t)),
	})
	require.NoError(t, err)

	require.Len(t, f.queue.payloads, 1)
	job, ok := f.queue.payloads[0].(queue.ThumbnailJob)
	require.True(t, ok)
	assert.Equal(t, view.ID, job.FileID)
	assert.Equal(t, f.user.ID.Hex(), job.UserID)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.Upload(ctx, f.user, UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	t.Run("owner sees the record", func(t *testing.T) {
		got, err := f.svc.Get(ctx, f.user, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ID, got.ID)
	})

	t.Run("another user's lookup is a miss", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.other, view.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unparseable id is a miss", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.user, "zzz")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	folder, err := f.svc.Upload(ctx, f.user, UploadRequest{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		_, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "f", Type: "folder", ParentID: folder.ID,
		})
		require.NoError(t, err)
	}

	t.Run("first page holds 20 records", func(t *testing.T) {
		views, err := f.svc.List(ctx, f.user, folder.ID, 0)
		require.NoError(t, err)
		assert.Len(t, views, 20)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		page0, err := f.svc.List(ctx, f.user, folder.ID, 0)
		require.NoError(t, err)
		page1, err := f.svc.List(ctx, f.user, folder.ID, 1)
		require.NoError(t, err)

		assert.Len(t, page1, 5)
		for _, v := range page1 {
			for _, p := range page0 {
				assert.NotEqual(t, p.ID, v.ID)
			}
		}
	})

	t.Run("root listing excludes nested records", func(t *testing.T) {
		views, err := f.svc.List(ctx, f.user, "", 0)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, folder.ID, views[0].ID)
	})

	t.Run("unparseable parent matches nothing", func(t *testing.T) {
		views, err := f.svc.List(ctx, f.user, "zzz", 0)
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestSetVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.svc.Upload(ctx, f.user, UploadRequest{
		Name: "notes.txt", Type: "file", Data: b64("x"),
	})
	require.NoError(t, err)

	t.Run("publish then unpublish", func(t *testing.T) {
		got, err := f.svc.SetVisibility(ctx, f.user, view.ID, true)
		require.NoError(t, err)
		assert.True(t, got.IsPublic)

		got, err = f.svc.SetVisibility(ctx, f.user, view.ID, false)
		require.NoError(t, err)
		assert.False(t, got.IsPublic)
	})

	t.Run("another user's toggle is a miss", func(t *testing.T) {
		_, err := f.svc.SetVisibility(ctx, f.other, view.ID, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestContent(t *testing.T) {
	ctx := context.Background()

	upload := func(t *testing.T, f *fixture, public bool) *FileView {
		t.Helper()
		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "notes.txt", Type: "file", Data: b64("hello world"), IsPublic: public,
		})
		require.NoError(t, err)
		return view
	}

	t.Run("owned public file with blob on disk", func(t *testing.T) {
		f := newFixture(t)
		view := upload(t, f, true)

		data, contentType, err := f.svc.Content(ctx, f.user, view.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
		assert.Contains(t, contentType, "text/plain")
	})

	t.Run("sniffs image content", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name:     "img.png",
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(pngBytes(t)),
			IsPublic: true,
		})
		require.NoError(t, err)

		_, contentType, err := f.svc.Content(ctx, f.user, view.ID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("private file", func(t *testing.T) {
		f := newFixture(t)
		view := upload(t, f, false)

		_, _, err := f.svc.Content(ctx, f.user, view.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("public file of another owner", func(t *testing.T) {
		f := newFixture(t)
		view := upload(t, f, true)

		_, _, err := f.svc.Content(ctx, f.other, view.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("folder", func(t *testing.T) {
		f := newFixture(t)
		view, err := f.svc.Upload(ctx, f.user, UploadRequest{
			Name: "docs", Type: "folder", IsPublic: true,
		})
		require.NoError(t, err)

		_, _, err = f.svc.Content(ctx, f.user, view.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blob missing on disk", func(t *testing.T) {
		f := newFixture(t)
		view := upload(t, f, true)
		require.NoError(t, os.Remove(f.repo.files[0].LocalPath))

		_, _, err := f.svc.Content(ctx, f.user, view.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
