package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/seqkit/errors"
)

type engineSettings struct {
	Workers      int    `mapstructure:"workers" validate:"gte=0,lte=64"`
	MinPartition int    `mapstructure:"min_partition" validate:"gte=0"`
	Mode         string `mapstructure:"mode" validate:"omitempty,oneof=ordered unordered"`
}

type settings struct {
	Name   string         `mapstructure:"name" validate:"required"`
	Engine engineSettings `mapstructure:"engine"`
	Limit  int            `validate:"max=10"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		in         settings
		wantFields []FieldError
	}{
		{
			name: "valid",
			in:   settings{Name: "seqdemo", Engine: engineSettings{Workers: 4, Mode: "ordered"}},
		},
		{
			name: "missing name",
			in:   settings{},
			wantFields: []FieldError{
				{Field: "name", Message: "is required"},
			},
		},
		{
			name: "nested keys",
			in:   settings{Name: "x", Engine: engineSettings{Workers: 100, MinPartition: -1, Mode: "random"}},
			wantFields: []FieldError{
				{Field: "engine.workers", Message: "must be at most 64"},
				{Field: "engine.min_partition", Message: "must be at least 0"},
				{Field: "engine.mode", Message: "must be one of: ordered unordered"},
			},
		},
		{
			name: "untagged field uses snake case",
			in:   settings{Name: "x", Limit: 11},
			wantFields: []FieldError{
				{Field: "limit", Message: "must be at most 10"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.wantFields == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			if diff := cmp.Diff(tc.wantFields, appErr.Details["fields"]); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			for _, f := range tc.wantFields {
				if !strings.Contains(err.Error(), f.Field) {
					t.Errorf("expected message to mention %q, got %q", f.Field, err.Error())
				}
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Workers":      "workers",
		"MinPartition": "min_partition",
		"ID":           "i_d",
		"already":      "already",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
