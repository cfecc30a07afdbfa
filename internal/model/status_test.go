package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForAcao(t *testing.T) {
	assert.Equal(t, StatusAprovada, StatusForAcao("APROVAR"))

	// anything that is not exactly APROVAR rejects
	assert.Equal(t, StatusReprovada, StatusForAcao("REPROVAR"))
	assert.Equal(t, StatusReprovada, StatusForAcao("aprovar"))
	assert.Equal(t, StatusReprovada, StatusForAcao(""))
	assert.Equal(t, StatusReprovada, StatusForAcao("QUALQUER"))
}
