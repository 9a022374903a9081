package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags and subcommands ignored",
			args:         []string{"tick", "-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-z"},
			allowedFlags: []string{"-z"},
			want:         []string{"-z"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-o", "-d", "dsn"},
			allowedFlags: []string{"-o", "-d"},
			want:         []string{"-o", "-d", "dsn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFile([]string{"serve", "-c", "a.json", "-d", "dsn"}))
	assert.Equal(t, "b.json", ConfigFile([]string{"-config=b.json"}))
	assert.Equal(t, "c.json", ConfigFile([]string{"--config", "c.json"}))
	assert.Equal(t, "", ConfigFile([]string{"-d", "dsn"}))
}
