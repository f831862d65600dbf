package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors_AreWrapFriendly(t *testing.T) {
	for _, sentinel := range []error{ErrInvalidArgument, ErrNotFound, ErrPersistence, ErrGatewayUnavailable} {
		err := fmt.Errorf("%w: context", sentinel)
		require.True(t, errors.Is(err, sentinel))
	}
	require.False(t, errors.Is(fmt.Errorf("%w: x", ErrNotFound), ErrPersistence))
}
