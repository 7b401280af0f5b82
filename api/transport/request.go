package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fastygo/questify/domain"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthCallbackRequest carries the id_token the provider returned to the client.
type OAuthCallbackRequest struct {
	IDToken string `json:"id_token"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name"`
}

type GrantXPRequest struct {
	Amount  int    `json:"amount"`
	SkillID string `json:"skill_id"`
}

type AreaRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type ProjectRequest struct {
	Name string `json:"name"`
}

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
	SkillID     string `json:"skill_id"`
	DueDate     string `json:"due_date"`
}

// ParseDueDate accepts RFC 3339 timestamps and plain dates.
func (r TaskRequest) ParseDueDate() (*time.Time, error) {
	if r.DueDate == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, r.DueDate); err == nil {
			return &parsed, nil
		}
	}
	return nil, domain.NewError(domain.ErrCodeInvalid, "due_date must be RFC 3339 or YYYY-MM-DD")
}

// CompleteTaskRequest defaults to completing when "completed" is omitted.
type CompleteTaskRequest struct {
	Completed    *bool `json:"completed"`
	FocusSeconds int   `json:"focus_seconds"`
	BonusXP      int   `json:"bonus_xp"`
}

type CompleteMissionRequest struct {
	Completed *bool `json:"completed"`
}

type SkillRequest struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	ParentID string `json:"parent_id"`
}

// Decode unmarshals body into v. Strict decoding rejects unknown keys, which
// is how typed patches refuse fields they do not define.
func Decode(body []byte, v any, strict bool) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, errors.New("empty body"))
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, fmt.Errorf("trailing data after json body"))
	}
	return nil
}
