package usecase

import (
	"context"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/imaging"
	"alumni-prep-backend/pkg/logger"
	"alumni-prep-backend/pkg/metrics"

	"github.com/google/uuid"
)

const pictureKeyPrefix = "alumni/pictures/"

type pictureUploader struct {
	store   domain.ObjectStore
	timeout time.Duration
}

// NewPictureUploader builds the upload coordinator. It performs exactly one
// object-store write per call and never retries.
func NewPictureUploader(store domain.ObjectStore, timeout time.Duration) domain.PictureUploader {
	return &pictureUploader{
		store:   store,
		timeout: timeout,
	}
}

func (u *pictureUploader) Upload(ctx context.Context, file domain.StagedFile) (string, error) {
	prepared := imaging.Prepare(file.Data, imaging.DefaultMaxDimension, imaging.DefaultQuality)
	key := pictureKeyPrefix + uuid.NewString() + prepared.Extension

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	url, err := u.store.Put(ctx, key, prepared.ContentType, prepared.Body)
	if err != nil {
		err = domain.MarkTimeout(err)
		logger.Log.Warnw("Picture upload failed", "file", file.Name, "key", key, "error", err)
		metrics.PictureUploads.WithLabelValues("failed").Inc()
		return "", domain.UploadFailed(err)
	}

	metrics.PictureUploads.WithLabelValues("ok").Inc()
	logger.Log.Debugw("Picture uploaded", "file", file.Name, "key", key, "bytes", len(prepared.Body))
	return url, nil
}
