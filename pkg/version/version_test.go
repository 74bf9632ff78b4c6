package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.NotEmpty(t, GetGitCommit())
	assert.NotEmpty(t, GetBuildDate())
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		constraint string
		want       bool
		wantErr    bool
	}{
		{name: "empty constraint", current: "0.3.0", constraint: "", want: true},
		{name: "range match", current: "0.3.0", constraint: ">= 0.2, < 1.0", want: true},
		{name: "too old", current: "0.1.4", constraint: ">= 0.2", want: false},
		{name: "caret major", current: "1.4.0", constraint: "^0.3", want: false},
		{name: "bad constraint", current: "0.3.0", constraint: "not-a-version", wantErr: true},
		{name: "bad binary version", current: "dev", constraint: ">= 0.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := satisfies(tt.current, tt.constraint)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	ok, err := Satisfies("")
	require.NoError(t, err)
	assert.True(t, ok)
}
