package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	t.Run("wraps an underlying error", func(t *testing.T) {
		err := NewUserError("could not read file", ErrUnknownFormat)
		assert.Equal(t, "could not read file: unrecognized file format", err.Error())
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("message only", func(t *testing.T) {
		err := NewUserError("nothing to reconcile", nil)
		assert.Equal(t, "nothing to reconcile", err.Error())
	})

	t.Run("unwraps through layers", func(t *testing.T) {
		inner := NewUserError("inner", ErrNotFound)
		outer := NewUserError("outer", inner)

		var userErr *UserError
		assert.True(t, errors.As(outer, &userErr))
		assert.ErrorIs(t, outer, ErrNotFound)
	})
}
