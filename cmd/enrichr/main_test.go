package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/enrichr/internal/cli"
	"github.com/rshade/enrichr/pkg/version"
)

func TestRun(t *testing.T) {
	t.Setenv("ENRICHR_CONFIG", "")
	t.Chdir(t.TempDir())

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{name: "version", args: []string{"--version"}, wantCode: 0, wantOut: version.GetVersion()},
		{name: "profiles", args: []string{"profiles"}, wantCode: 0, wantOut: "cik"},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: 1, wantErr: "unknown command"},
		{name: "invalid config", args: []string{"run", "--profile", "cik"}, wantCode: 1, wantErr: "job.input is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantOut != "" {
				assert.Contains(t, stdout.String(), tt.wantOut)
			}
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", err: nil, want: 0},
		{name: "generic error", err: errors.New("generic error"), want: 1},
		{name: "interrupted", err: &cli.ExitError{Code: 130, Err: cli.ErrInterrupted}, want: 130},
		{
			name: "wrapped exit error",
			err:  errors.Join(errors.New("outer"), &cli.ExitError{Code: 3, Err: errors.New("inner")}),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}
