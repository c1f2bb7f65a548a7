package domain

import "time"

// Instance represents the singleton server instance configuration.
type Instance struct {
	Name             string    `json:"name"`
	Version          string    `json:"version"`
	LocalURL         string    `json:"local_url,omitempty"`
	RemoteURL        string    `json:"remote_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ID               string    `json:"id"`
	RootUserID       string    `json:"root_user_id,omitempty"`
	HasRootUser      bool      `json:"has_root_user"`
	OpenRegistration bool      `json:"open_registration"`
}

// IsSetupRequired returns true if the server still needs its first user.
func (i *Instance) IsSetupRequired() bool {
	return !i.HasRootUser
}

// SetRootUser records the root user created during initial setup.
func (i *Instance) SetRootUser(userID string) {
	i.RootUserID = userID
	i.HasRootUser = true
	i.UpdatedAt = time.Now()
}

// SetOpenRegistration toggles public registration.
// Registered users still require admin approval before they can log in.
func (i *Instance) SetOpenRegistration(enabled bool) {
	i.OpenRegistration = enabled
	i.UpdatedAt = time.Now()
}
