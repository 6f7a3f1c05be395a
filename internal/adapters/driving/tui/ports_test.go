package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/gridview/internal/core/services"
)

func TestNewPorts(t *testing.T) {
	svc := services.NewDatasetService(nil)

	ports := NewPorts(svc, nil)

	assert.Equal(t, svc, ports.Datasets)
	assert.Nil(t, ports.Loader)
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingDatasetService)

	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrInvalidPorts)
}
