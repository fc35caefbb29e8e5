package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerID(t *testing.T) {
	a := Account{Name: "莫寒", UID: 3053424305, ChartID: 6}
	assert.Equal(t, "231343_3053424305_6", a.ContainerID())
}

func TestDefaultAccountsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range DefaultAccounts() {
		assert.False(t, seen[a.Name], a.Name)
		seen[a.Name] = true
	}
	assert.Len(t, seen, 13)
}
