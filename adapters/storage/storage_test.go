package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap/zaptest"

	"github.com/SalinCodes/VoxVision/domain/entities"
)

func TestFileStore_SaveAndStat(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "audio"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	path, err := store.Save(context.Background(), "speech_1.mp3", strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !filepath.IsAbs(path) || filepath.Dir(path) != store.Root() {
		t.Errorf("unexpected path %s", path)
	}

	size, err := store.Stat("speech_1.mp3")
	if err != nil || size != 3 {
		t.Errorf("Stat = %d, %v; want 3, nil", size, err)
	}

	if _, err := store.Save(context.Background(), "speech_1.mp3", strings.NewReader("x")); err == nil {
		t.Error("existing artifacts must not be overwritten")
	}
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.mp3", `..\x.mp3`} {
		if _, err := store.Path(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Path(%q) should be rejected, got %v", name, err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestFileStore_RemovesPartialFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, err := store.Save(context.Background(), "broken.mp3", failingReader{}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "broken.mp3")); !os.IsNotExist(err) {
		t.Error("partial file should be removed")
	}
}

type fakeUploader struct {
	container string
	name      string
	data      []byte
	opts      *azblob.UploadBufferOptions
	err       error
}

func (f *fakeUploader) UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error) {
	f.container, f.name, f.data, f.opts = containerName, blobName, buffer, o
	return azblob.UploadBufferResponse{}, f.err
}

func TestBlobArchive(t *testing.T) {
	uploader := &fakeUploader{}
	archive := &BlobArchive{client: uploader, container: "captures", logger: zaptest.NewLogger(t)}

	img := &entities.CapturedImage{
		Path:       "/srv/static/images/capture_42.jpg",
		Data:       []byte{0xff, 0xd8},
		MIMEType:   "image/jpeg",
		Provenance: entities.ProvenanceFresh,
	}
	if err := archive.Archive(context.Background(), "req-1", img); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if uploader.container != "captures" || uploader.name != "req-1/capture_42.jpg" {
		t.Errorf("unexpected destination %s/%s", uploader.container, uploader.name)
	}
	if *uploader.opts.HTTPHeaders.BlobContentType != "image/jpeg" {
		t.Error("content type should be set from the frame")
	}

	if err := archive.Archive(context.Background(), "req-2", &entities.CapturedImage{Provenance: entities.ProvenanceNone}); err == nil {
		t.Error("unusable frames should not be archived")
	}

	uploader.err = errors.New("403")
	if err := archive.Archive(context.Background(), "req-3", img); err == nil {
		t.Error("upload errors should be returned")
	}
}
