package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeClampsMaxUpToMin(t *testing.T) {
	config := ClickerConfig{
		MinInterval:     500 * time.Millisecond,
		MaxInterval:     100 * time.Millisecond,
		PauseAfterInput: time.Second,
	}.Normalize()

	require.Equal(t, 500*time.Millisecond, config.MinInterval)
	require.Equal(t, 500*time.Millisecond, config.MaxInterval)
}

func TestNormalizeFloorsMinInterval(t *testing.T) {
	config := ClickerConfig{PauseAfterInput: time.Second}.Normalize()

	require.Equal(t, time.Millisecond, config.MinInterval)
	require.Equal(t, time.Millisecond, config.MaxInterval)
}

func TestNormalizeDefaultsPause(t *testing.T) {
	config := ClickerConfig{
		MinInterval: time.Second,
		MaxInterval: 2 * time.Second,
	}.Normalize()

	require.Equal(t, 2*time.Second, config.PauseAfterInput)
}

func TestStoreSwapsConfig(t *testing.T) {
	store := NewStore(ClickerConfig{MinInterval: time.Second, MaxInterval: time.Second})

	updated := ClickerConfig{
		MinInterval:   time.Millisecond,
		MaxInterval:   5 * time.Millisecond,
		RestrictToApp: true,
		AllowedAppID:  "com.example.app",
	}
	store.Set(updated)

	require.Equal(t, updated, store.Current())
}
