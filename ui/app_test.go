package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewApp(t *testing.T) {
	config := DefaultConfig
	app := NewApp(context.Background(), config, sampleData(), nil)

	assert.NotNil(t, app)
	assert.Equal(t, config, app.GetConfig())
	assert.NotNil(t, app.program)
	assert.Equal(t, "Performer Summary", app.model.ActiveTab())
}

func TestApp_IsRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	app := NewApp(ctx, DefaultConfig, Data{}, nil)

	assert.True(t, app.IsRunning())

	cancel()
	assert.False(t, app.IsRunning())
}

func TestApp_Stop(t *testing.T) {
	app := NewApp(context.Background(), DefaultConfig, Data{}, nil)

	assert.NoError(t, app.Stop())
	assert.False(t, app.IsRunning())
}
