package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInstanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInstance",
		Method:      http.MethodGet,
		Path:        "/api/v1/instance",
		Summary:     "Get server instance",
		Description: "Returns the server identity, registration policy, and setup status. Clients call this before pairing.",
		Tags:        []string{"Instance"},
	}, s.handleGetInstance)
}

// InstanceResponse describes this server to clients.
type InstanceResponse struct {
	ID               string    `json:"id" doc:"Instance ID"`
	Name             string    `json:"name" doc:"Server name"`
	Version          string    `json:"version" doc:"Server version"`
	LocalURL         string    `json:"local_url" doc:"Local network URL"`
	RemoteURL        string    `json:"remote_url,omitempty" doc:"Remote access URL"`
	OpenRegistration bool      `json:"open_registration" doc:"Whether public registration is enabled"`
	SetupRequired    bool      `json:"setup_required" doc:"Whether initial setup is needed"`
	CreatedAt        time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt        time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// InstanceOutput wraps the instance response for Huma.
type InstanceOutput struct {
	Body InstanceResponse
}

// handleGetInstance is deliberately unauthenticated: setup wizards and
// login screens need it before any credentials exist.
func (s *Server) handleGetInstance(ctx context.Context, _ *struct{}) (*InstanceOutput, error) {
	instance, err := s.services.Instance.GetInstance(ctx)
	if err != nil {
		s.logger.Error("Failed to get instance", "error", err)
		return nil, huma.Error404NotFound("Server instance configuration not found")
	}

	return &InstanceOutput{
		Body: InstanceResponse{
			ID:               instance.ID,
			Name:             instance.Name,
			Version:          instance.Version,
			LocalURL:         instance.LocalURL,
			RemoteURL:        instance.RemoteURL,
			OpenRegistration: instance.OpenRegistration,
			SetupRequired:    instance.IsSetupRequired(),
			CreatedAt:        instance.CreatedAt,
			UpdatedAt:        instance.UpdatedAt,
		},
	}, nil
}
