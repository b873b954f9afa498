package mechanics

import (
	"context"
	"testing"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	bunDB, err := database.OpenSQLiteMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { bunDB.Close() })
	return NewService(&DB{Bun: bunDB})
}

func TestList_OrderedByName(t *testing.T) {
	svc := setupService(t)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, len(database.DefaultMechanics))
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}
}

func TestGet(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)

	m, err := svc.Get(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Name, m.Name)

	_, err = svc.Get(ctx, 9999)
	assert.ErrorIs(t, err, apperr.ErrMechanicNotFound)
}
