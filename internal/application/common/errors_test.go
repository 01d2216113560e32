package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapServiceError(t *testing.T) {
	t.Run("should prefix the operation", func(t *testing.T) {
		err := WrapServiceError(OpParseSource, errors.New("bad byte"))
		require.Error(t, err)
		assert.Equal(t, "failed to parse source: bad byte", err.Error())
	})

	t.Run("should keep the cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapServiceError(OpPublishJob, cause)
		assert.ErrorIs(t, err, cause, "Wrapping must not break errors.Is chains")

		var svcErr ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, OpPublishJob, svcErr.Operation)
	})

	t.Run("should pass nil through", func(t *testing.T) {
		assert.NoError(t, WrapServiceError(OpOpenFile, nil))
	})
}
