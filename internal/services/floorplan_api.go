package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"chatfront/internal/models"
)

const DefaultArtifactName = "floor_plan.dxf"

// Artifact is a downloaded file.
type Artifact struct {
	Filename string
	Content  []byte
}

// FloorPlanAPI talks to the floor-plan generator backend.
type FloorPlanAPI struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewFloorPlanAPI(client *resty.Client, logger *zap.Logger) *FloorPlanAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FloorPlanAPI{http: client, logger: logger}
}

// Generate asks for a floor plan. The generator expects the prompt itself to
// be JSON encoded inside the message field.
func (a *FloorPlanAPI) Generate(ctx context.Context, prompt string) (*models.FloorPlanPayload, error) {
	encoded, err := json.Marshal(prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Cache-Control", "no-store").
		SetBody(models.FloorPlanRequest{Message: string(encoded)}).
		Post("/api/chat")
	if err != nil {
		return nil, &TransportError{Op: "generate floor plan", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, apiErrorFrom(resp)
	}

	var out models.FloorPlanResponse
	if err := decodeBody("generate floor plan", resp, &out); err != nil {
		return nil, err
	}

	a.logger.Info("floor plan generated",
		zap.Int("bytes", len(resp.Body())),
		zap.Bool("has_payload", out.Data != nil),
	)
	return out.Data, nil
}

// Download fetches the DXF artifact derived from the last generated plan.
func (a *FloorPlanAPI) Download(ctx context.Context) (Artifact, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Cache-Control", "no-store").
		Get("/api/download")
	if err != nil {
		return Artifact{}, &TransportError{Op: "download artifact", Err: err}
	}
	if !resp.IsSuccess() {
		return Artifact{}, apiErrorFrom(resp)
	}

	return Artifact{
		Filename: artifactName(resp.Header().Get("Content-Disposition")),
		Content:  resp.Body(),
	}, nil
}

// artifactName takes the server's suggested filename, reduced to a bare
// file name, or falls back to the default.
func artifactName(disposition string) string {
	if disposition == "" {
		return DefaultArtifactName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultArtifactName
	}

	name := filepath.Base(strings.ReplaceAll(params["filename"], "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return DefaultArtifactName
	}
	return name
}
