package connector

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateRequest_Validate(t *testing.T) {
	valid := CreateRequest{
		Name:         "app-server1",
		Image:        "ami-12321",
		InstanceType: "t2.medium",
		VolumeSizeGB: 20,
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateRequest)
		wantErr string
	}{
		{
			name:   "valid request",
			mutate: func(r *CreateRequest) {},
		},
		{
			name:    "missing name",
			mutate:  func(r *CreateRequest) { r.Name = "" },
			wantErr: "name",
		},
		{
			name:    "missing image",
			mutate:  func(r *CreateRequest) { r.Image = "" },
			wantErr: "ami",
		},
		{
			name:    "missing instance type",
			mutate:  func(r *CreateRequest) { r.InstanceType = "" },
			wantErr: "instance_type",
		},
		{
			name:    "negative volume size",
			mutate:  func(r *CreateRequest) { r.VolumeSizeGB = -5 },
			wantErr: "invalid volume size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("log1")
	if !errors.Is(err, ErrServerNotFound) {
		t.Errorf("NotFound() should wrap ErrServerNotFound")
	}
	if !strings.Contains(err.Error(), "log1") {
		t.Errorf("NotFound() = %q, want it to mention log1", err)
	}
}
