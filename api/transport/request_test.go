package transport

import (
	"testing"
	"time"

	"github.com/fastygo/questify/domain"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		strict bool
		ok     bool
	}{
		{"known keys", `{"title":"a"}`, true, true},
		{"unknown key strict", `{"title":"a","status":"done"}`, true, false},
		{"unknown key lenient", `{"title":"a","status":"done"}`, false, true},
		{"empty body", "  ", false, false},
		{"trailing object", `{"title":"a"}{"title":"b"}`, false, false},
		{"trailing whitespace", "{\"title\":\"a\"}\n", true, true},
		{"wrong type", `{"title":5}`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch domain.TaskPatch
			err := Decode([]byte(tt.body), &patch, tt.strict)
			if tt.ok && err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !tt.ok && !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("err = %v, want INVALID", err)
			}
		})
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in      string
		want    *time.Time
		wantErr bool
	}{
		{"", nil, false},
		{"2026-11-02", ptrTime(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)), false},
		{"2026-11-02T15:04:05Z", ptrTime(time.Date(2026, 11, 2, 15, 4, 5, 0, time.UTC)), false},
		{"next tuesday", nil, true},
	}
	for _, tt := range tests {
		got, err := TaskRequest{DueDate: tt.in}.ParseDueDate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDueDate(%q) err = %v", tt.in, err)
		}
		if (got == nil) != (tt.want == nil) || (got != nil && !got.Equal(*tt.want)) {
			t.Fatalf("ParseDueDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrTokenExpired, 401, CodeTokenExpired},
		{domain.ErrInvalidCredentials, 401, "UNAUTHORIZED"},
		{domain.ErrSkillNotSelectable, 400, "INVALID"},
		{domain.ErrTaskNotFound, 404, "NOT_FOUND"},
		{domain.ErrAlreadyInState, 409, "CONFLICT"},
		{domain.ErrRewardLocked, 409, "CONFLICT"},
		{domain.ErrSuggestionFailed, 503, "UNAVAILABLE"},
		{domain.NewError(domain.ErrCodeForbidden, "no"), 403, "FORBIDDEN"},
		{domain.WrapError(domain.ErrCodeInternal, "db", nil), 500, "INTERNAL"},
	}
	for _, tt := range tests {
		status, code := StatusFor(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("StatusFor(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
	if PublicMessage(domain.WrapError(domain.ErrCodeInternal, "pg: password auth failed", nil)) != "internal error" {
		t.Fatal("internal message leaked")
	}
}
