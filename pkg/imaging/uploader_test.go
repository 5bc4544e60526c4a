package imaging_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/metrics"
)

func upload(field, name, contentType string, body io.Reader) imaging.UploadedFile {
	return imaging.UploadedFile{FieldName: field, FileName: name, ContentType: contentType, Body: body}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadAcceptsImageAndKeepsExtension(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)
	body := bytes.Repeat([]byte{0xff}, 4<<20)

	img, err := u.Receive(context.Background(), upload("file", "Holiday.JPG", "image/jpeg", bytes.NewReader(body)))
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(img.Filename, ".jpg"))
	require.NotEqual(t, "Holiday.JPG", img.Filename)
	require.Equal(t, "/uploads/"+img.Filename, img.URL)

	stored, err := os.ReadFile(filepath.Join(f.uploadsDir, img.Filename))
	require.NoError(t, err)
	require.Equal(t, body, stored)
}

func TestUploadDerivesExtensionFromMediaType(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)

	img, err := u.Receive(context.Background(), upload("file", "blob", "image/png", bytes.NewReader(pngBytes)))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(img.Filename, ".png"))
	require.True(t, imaging.IsImageName(img.Filename))
}

func TestUploadExactlyAtCeiling(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 1024, f.reg)

	_, err := u.Receive(context.Background(), upload("file", "a.png", "image/png", bytes.NewReader(make([]byte, 1024))))
	require.NoError(t, err)
}

func TestUploadTooLargeLeavesNothing(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)
	body := bytes.NewReader(make([]byte, 6<<20))

	_, err := u.Receive(context.Background(), upload("file", "big.png", "image/png", body))

	var verr *imaging.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "File size exceeds 5MB limit", verr.Message)
	require.Empty(t, dirEntries(t, f.uploadsDir))
	require.Equal(t, int64(1), f.reg.Value(metrics.UploadsRejected, metrics.Labels{"reason": "size"}))
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)

	for _, ct := range []string{"image/gif", "text/plain", "", "not a media type"} {
		_, err := u.Receive(context.Background(), upload("file", "x.png", ct, strings.NewReader("data")))

		var verr *imaging.ValidationError
		require.ErrorAs(t, err, &verr, ct)
		require.Contains(t, verr.Message, "image/jpeg, image/png, image/webp")
	}
	require.Empty(t, dirEntries(t, f.uploadsDir))
}

func TestUploadAcceptsMediaTypeParameters(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)

	img, err := u.Receive(context.Background(), upload("file", "pic.webp", "IMAGE/WEBP; q=1", strings.NewReader("data")))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(img.Filename, ".webp"))
}

func TestUploadWrongFieldIsNoFile(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)

	_, err := u.Receive(context.Background(), upload("image", "x.png", "image/png", strings.NewReader("data")))
	require.ErrorIs(t, err, imaging.ErrNoFile)

	_, err = u.Receive(context.Background(), upload("file", "", "image/png", strings.NewReader("data")))
	require.ErrorIs(t, err, imaging.ErrNoFile)
	require.Empty(t, dirEntries(t, f.uploadsDir))
}

func TestUploadStorageFailure(t *testing.T) {
	u := imaging.NewUploader(brokenRepository{}, 0, nil)

	_, err := u.Receive(context.Background(), upload("file", "x.png", "image/png", strings.NewReader("data")))

	var serr *imaging.StorageError
	require.ErrorAs(t, err, &serr)
}

func TestUploadDiscard(t *testing.T) {
	f := newFixture(t)
	u := imaging.NewUploader(f.uploads, 0, f.reg)
	ctx := context.Background()

	img, err := u.Receive(ctx, upload("file", "x.png", "image/png", strings.NewReader("data")))
	require.NoError(t, err)
	require.Len(t, dirEntries(t, f.uploadsDir), 1)

	u.Discard(ctx, img)
	require.Empty(t, dirEntries(t, f.uploadsDir))
}

func TestUploadSizeErrorFormatting(t *testing.T) {
	require.Equal(t, "File size exceeds 5MB limit", imaging.NewUploader(nil, 0, nil).SizeError().Message)
	require.Equal(t, "File size exceeds 512KB limit", imaging.NewUploader(nil, 512<<10, nil).SizeError().Message)
	require.Equal(t, "File size exceeds 1000 bytes limit", imaging.NewUploader(nil, 1000, nil).SizeError().Message)
}
