package storage

import (
	"context"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService hosts payment receipts as publicly reachable documents.
type StorageService interface {
	UploadReceipt(ctx context.Context, name string, html []byte) (string, error)
}

// StorageServiceImpl implements StorageService on Cloudinary.
type StorageServiceImpl struct {
	cld *cloudinary.Cloudinary
}

// NewStorageService creates a new StorageServiceImpl instance.
func NewStorageService(cld *cloudinary.Cloudinary) StorageService {
	return &StorageServiceImpl{cld: cld}
}
