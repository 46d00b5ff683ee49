package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"share-ingest-service/internal/metrics"
	"share-ingest-service/internal/storage"
)

const uploadPrefix = "uploads/"

// Asset is one shared image as received from the client.
type Asset struct {
	Name string // original filename, informational only
	Data []byte
}

// UploadResult describes one successfully stored asset.
type UploadResult struct {
	ObjectName  string // "<uuid>.jpg", becomes the work item content
	StoragePath string // "uploads/<uuid>.jpg", the worker's deletion handle
	URL         string // public retrieval address
}

type AssetUploader struct {
	store storage.Store
}

func NewAssetUploader(store storage.Store) *AssetUploader {
	return &AssetUploader{store: store}
}

// Upload writes one asset to the content store under a fresh object name and
// resolves its public URL. One attempt per call: no retry, no uniqueness
// check on the generated name. A failure aborts only this asset's branch.
func (u *AssetUploader) Upload(ctx context.Context, asset Asset) (UploadResult, error) {
	name := uuid.NewString() + ".jpg"
	storePath := uploadPrefix + name

	jpegBytes, err := normalizeJPEG(asset.Data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return UploadResult{}, &UploadError{Object: storePath, Err: err}
	}

	if err := u.store.Write(ctx, storePath, bytes.NewReader(jpegBytes)); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return UploadResult{}, &UploadError{Object: storePath, Err: err}
	}

	url, err := u.store.ResolveURL(storePath)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return UploadResult{}, &UploadError{Object: storePath, Err: err}
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return UploadResult{ObjectName: name, StoragePath: storePath, URL: url}, nil
}

// normalizeJPEG re-encodes the shared image as JPEG so every stored object
// matches the uploads/<uuid>.jpg convention regardless of the source format.
func normalizeJPEG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
