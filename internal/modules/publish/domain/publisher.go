package domain

import (
	"errors"
	"fmt"
	"regexp"
)

type Capability string

const (
	CapabilityPublish  Capability = "publish"
	CapabilityValidate Capability = "validate"
)

var (
	ErrPublisherDisabled = errors.New("publisher is disabled")
	ErrChecksumMismatch  = errors.New("publisher checksum mismatch")
	ErrCapabilityMissing = errors.New("publisher capability missing")
	ErrTargetNotFound    = errors.New("publish target not found")
	ErrPublisherTimeout  = errors.New("publisher timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one installed publisher plugin. Publishers are
// out-of-process binaries that deliver a finished export somewhere.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("publisher name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("publisher version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("publisher binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("publisher sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("publisher capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityPublish, CapabilityValidate:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// TargetDescriptor is one destination a publisher can deliver to, e.g. a
// local directory or a bucket.
type TargetDescriptor struct {
	ID              string
	Title           string
	Description     string
	InputSchemaJSON string
	TimeoutMS       int
}

func (d TargetDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("target id is required")
	}
	return nil
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// PublishContext carries everything a publisher needs about the export
// being delivered.
type PublishContext struct {
	ProjectID  string
	Title      string
	ExportPath string
	Env        map[string]string
}

type PublishRequest struct {
	TargetID  string
	InputJSON string
	Context   PublishContext
}

func (r PublishRequest) Validate() error {
	if r.TargetID == "" {
		return fmt.Errorf("target id is required")
	}
	if r.Context.ExportPath == "" {
		return fmt.Errorf("export path is required")
	}
	return nil
}

type PublishResult struct {
	URL      string
	Detail   string
	Stderr   string
	ExitCode int
}
