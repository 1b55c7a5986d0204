package services

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/storage"
	"github.com/atelia/agentdesk/internal/utils"
)

// SourceService stores an uploaded source file in the blob store and
// hands back the Source entry the caller puts into an AgentConfig. No
// database row exists for a source; the list lives inline in the config.
type SourceService interface {
	Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.Source, error)
}

type sourceService struct {
	uploader storage.Uploader
}

func NewSourceService(uploader storage.Uploader) SourceService {
	return &sourceService{uploader: uploader}
}

func (s *sourceService) Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (*models.Source, error) {
	const op = "SourceService.Upload"

	if userID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and file name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	objectName := "sources/" + userID + "/" + uuid.NewString() + path.Ext(fileName)

	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	return &models.Source{
		Type: models.SourceTypeFile,
		Path: storedPath,
		Name: fileName,
		Mime: mimeType,
	}, nil
}
