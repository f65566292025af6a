package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePrimary(t *testing.T) {
	assert.True(t, RolePrimary.IsPrimary())
	assert.Equal(t, "primary", RolePrimary.String())
	assert.Equal(t, 0, RolePrimary.BackupIndex())
}

func TestRoleBackup(t *testing.T) {
	r := Role(2)
	assert.False(t, r.IsPrimary())
	assert.Equal(t, 2, r.BackupIndex())
	assert.Equal(t, "backup-2", r.String())
}
