package pgexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
)

func TestTrimStatement(t *testing.T) {
	assert.Equal(t, "SELECT 1", trimStatement("\n  SELECT 1;\n"))
	assert.Equal(t, "SELECT 1", trimStatement("SELECT 1;;"))
	assert.Equal(t, "SELECT 1", trimStatement("SELECT 1"))
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabase, apperrors.CodeOf(err))
}

func TestClose_NilSafe(t *testing.T) {
	var e *Executor
	assert.NoError(t, e.Close())
}
