package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const receiptFolder = "receipts"

// UploadReceipt uploads a rendered receipt document and returns its hosted
// URL. Re-uploading the same name overwrites the previous document, so a
// redelivered confirmation task converges on the same URL.
func (s *StorageServiceImpl) UploadReceipt(ctx context.Context, name string, html []byte) (string, error) {
	uploadParams := uploader.UploadParams{
		PublicID:     name,
		Folder:       receiptFolder,
		ResourceType: "raw",
		Overwrite:    api.Bool(true),
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(html), uploadParams)
	if err != nil {
		return "", fmt.Errorf("StorageServiceImpl: failed to upload receipt: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("StorageServiceImpl: no URL returned for receipt %s", name)
	}
	return result.SecureURL, nil
}
