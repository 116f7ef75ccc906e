package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"go.uber.org/zap"

	"github.com/SalinCodes/VoxVision/domain/entities"
	"github.com/SalinCodes/VoxVision/domain/repositories"
)

// blobUploader is the part of *azblob.Client the archive needs
type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobArchive uploads captured frames to an Azure Blob Storage container
type BlobArchive struct {
	client    blobUploader
	container string
	logger    *zap.Logger
}

var _ repositories.ImageArchive = (*BlobArchive)(nil)

// NewBlobArchive authenticates with a shared key
func NewBlobArchive(accountName, accountKey, container string, logger *zap.Logger) (*BlobArchive, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}

	return &BlobArchive{client: client, container: container, logger: logger}, nil
}

// Archive stores the frame as <requestID>/<filename>
func (a *BlobArchive) Archive(ctx context.Context, requestID string, image *entities.CapturedImage) error {
	if !image.Usable() {
		return fmt.Errorf("nothing to archive for request %s", requestID)
	}

	name := blobName(requestID, image)
	contentType := image.MIMEType
	_, err := a.client.UploadBuffer(ctx, a.container, name, image.Data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		Metadata: map[string]*string{
			"provenance": strPtr(string(image.Provenance)),
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	a.logger.Info("Archived captured frame",
		zap.String("requestID", requestID),
		zap.String("container", a.container),
		zap.String("blob", name))
	return nil
}

func blobName(requestID string, image *entities.CapturedImage) string {
	return requestID + "/" + filepath.Base(image.Path)
}

func strPtr(s string) *string {
	return &s
}
