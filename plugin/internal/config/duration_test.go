package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{10 * time.Second, "10s"},
		{5 * time.Minute, "5m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{time.Hour + 5*time.Second, "1h0m5s"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.in))

			back, err := ParseDuration(tc.want)
			require.NoError(t, err)
			assert.Equal(t, tc.in, back, "formatted value must parse back")
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"compound", "1h30m", 90 * time.Minute, false},
		{"bare integer is seconds", "60", time.Minute, false},
		{"surrounding space", " 2s ", 2 * time.Second, false},
		{"garbage", "10 bananas", 0, true},
		{"empty", "", 0, true},
		{"unit only", "s", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDuration(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDuration), "error should wrap ErrInvalidDuration: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	type holder struct {
		Wait Duration `yaml:"wait"`
	}

	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("wait: 1h30m\n"), &h))
	assert.Equal(t, 90*time.Minute, h.Wait.Std())

	out, err := yaml.Marshal(holder{Wait: Duration(5 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "wait: 5m\n", string(out))

	err = yaml.Unmarshal([]byte("wait: 10 bananas\n"), &h)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	err = yaml.Unmarshal([]byte("wait: [1, 2]\n"), &h)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
