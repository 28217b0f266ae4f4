package flagx

import (
	"os"
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
			name:         "separate value",
			args:         []string{"-c", "conf.json", "-a", "http://localhost"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-a", "http://localhost"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "-y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-w", "10"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-s", "5", "-s", "10"},
			allowedFlags: []string{"-s"},
			want:         []string{"-s", "5", "-s", "10"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestLookupString(t *testing.T) {
	assert.Equal(t, "a.json", LookupString([]string{"-c", "a.json"}, "c", "config"))
	assert.Equal(t, "b.json", LookupString([]string{"-c", "a.json", "-config", "b.json"}, "c", "config"))
	assert.Empty(t, LookupString([]string{"-x", "1"}, "c", "config"))
}

func TestConfigAndEnvFileFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"teamhub", "-a", "http://api", "-config", "/etc/teamhub.json", "-e", ".env.local"}

	assert.Equal(t, "/etc/teamhub.json", ConfigFileFlag())
	assert.Equal(t, ".env.local", EnvFileFlag())
}
