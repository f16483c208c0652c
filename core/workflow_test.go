package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkflow = NewWorkflow(
	Transition{Event: "aprobar", Src: []string{"pendiente"}, Dst: "aprobado"},
	Transition{Event: "rechazar", Src: []string{"pendiente", "aprobado"}, Dst: "rechazado"},
)

func TestWorkflow_Apply(t *testing.T) {
	ctx := context.Background()

	got, err := testWorkflow.Apply(ctx, "pendiente", "aprobar")
	require.NoError(t, err)
	assert.Equal(t, "aprobado", got)

	got, err = testWorkflow.Apply(ctx, "rechazado", "aprobar")
	assert.Equal(t, "rechazado", got)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, FieldError{Field: "evento", Error: `no se puede "aprobar" desde el estado "rechazado"`}, verr.Fields[0])

	_, err = testWorkflow.Apply(ctx, "pendiente", "archivar")
	assert.Error(t, err)
}

func TestWorkflow_states(t *testing.T) {
	assert.Equal(t, []string{"pendiente", "aprobado", "rechazado"}, testWorkflow.States())
	assert.True(t, testWorkflow.HasState("aprobado"))
	assert.False(t, testWorkflow.HasState("archivado"))
	assert.True(t, testWorkflow.Can("aprobado", "rechazar"))
	assert.False(t, testWorkflow.Can("aprobado", "aprobar"))
	assert.Equal(t, []string{"aprobar", "rechazar"}, testWorkflow.AvailableEvents("pendiente"))
}
