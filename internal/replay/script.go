// Package replay drives a conversation manager from a scripted list of user
// actions, without a terminal.
package replay

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/models"
)

// Action names a user action
type Action string

const (
	ActionCreate Action = "create"
	ActionSelect Action = "select"
	ActionDelete Action = "delete"
	ActionSend   Action = "send"
	ActionWait   Action = "wait"
	ActionSleep  Action = "sleep"
)

// Step is one scripted action.
//
// select and delete address a conversation either by the Label given to an
// earlier create, or by Index into the current list (newest first). Index is
// a pointer so that 0 is distinguishable from unset.
type Step struct {
	Action Action `yaml:"action"`
	Label  string `yaml:"label,omitempty"`
	Index  *int   `yaml:"index,omitempty"`

	Text        string           `yaml:"text,omitempty"`
	Attachments []AttachmentSpec `yaml:"attachments,omitempty"`
	// Files are local paths described through attach.FromPath
	Files []string `yaml:"files,omitempty"`
	// Async returns from send without waiting for the reply
	Async bool `yaml:"async,omitempty"`

	Duration string `yaml:"duration,omitempty"`

	// ExpectError makes the step pass only if it fails with this kind:
	// "validation", "not_found" or "pending".
	ExpectError string `yaml:"expect_error,omitempty"`
}

// AttachmentSpec describes a file that does not need to exist locally
type AttachmentSpec struct {
	Name     string `yaml:"name"`
	Size     int64  `yaml:"size"`
	MimeType string `yaml:"mime_type"`
}

// Attachment converts the entry, deriving the category from the MIME type
func (a AttachmentSpec) Attachment() models.Attachment {
	return models.NewAttachment(a.Name, a.Size, a.MimeType)
}

// Script is a named list of steps
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// ParseYAML decodes a YAML script
func ParseYAML(data []byte) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// ParseJSON decodes a JSON script
func ParseJSON(data []byte) (Script, error) {
	if !gjson.ValidBytes(data) {
		return Script{}, apierrors.NewValidationError("script", "invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	s := Script{Name: doc.Get("name").String()}

	steps := doc.Get("steps")
	if !steps.IsArray() {
		return Script{}, apierrors.NewValidationError("steps", "must be an array")
	}
	for _, raw := range steps.Array() {
		s.Steps = append(s.Steps, stepFromJSON(raw))
	}

	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

func stepFromJSON(raw gjson.Result) Step {
	step := Step{
		Action:      Action(raw.Get("action").String()),
		Label:       raw.Get("label").String(),
		Text:        raw.Get("text").String(),
		Async:       raw.Get("async").Bool(),
		Duration:    raw.Get("duration").String(),
		ExpectError: raw.Get("expect_error").String(),
	}
	if idx := raw.Get("index"); idx.Exists() {
		i := int(idx.Int())
		step.Index = &i
	}
	raw.Get("attachments").ForEach(func(_, a gjson.Result) bool {
		step.Attachments = append(step.Attachments, AttachmentSpec{
			Name:     a.Get("name").String(),
			Size:     a.Get("size").Int(),
			MimeType: a.Get("mime_type").String(),
		})
		return true
	})
	raw.Get("files").ForEach(func(_, f gjson.Result) bool {
		step.Files = append(step.Files, f.String())
		return true
	})
	return step
}

// Load reads a script file, choosing the decoder by extension
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml", "":
		return ParseYAML(data)
	default:
		return Script{}, apierrors.NewValidationError("script", "unsupported extension "+filepath.Ext(path))
	}
}

// Validate checks every step before anything runs
func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return apierrors.NewValidationError("steps", "script has no steps")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Action {
	case ActionCreate, ActionWait:
	case ActionSelect, ActionDelete:
		if st.Label == "" && st.Index == nil {
			return apierrors.NewValidationError("label", string(st.Action)+" needs a label or an index")
		}
	case ActionSend:
	case ActionSleep:
		if _, err := st.SleepDuration(); err != nil {
			return err
		}
	case "":
		return apierrors.NewValidationError("action", "missing action")
	default:
		return apierrors.NewValidationError("action", fmt.Sprintf("unknown action %q", st.Action))
	}

	switch st.ExpectError {
	case "", "validation", "not_found", "pending":
	default:
		return apierrors.NewValidationError("expect_error", fmt.Sprintf("unknown error kind %q", st.ExpectError))
	}
	return nil
}

// SleepDuration parses Duration
func (st Step) SleepDuration() (time.Duration, error) {
	d, err := time.ParseDuration(st.Duration)
	if err != nil {
		return 0, apierrors.NewValidationError("duration", err.Error())
	}
	if d < 0 {
		return 0, apierrors.NewValidationError("duration", "must not be negative")
	}
	return d, nil
}
