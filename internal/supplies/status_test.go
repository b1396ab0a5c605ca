package supplies

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     error
	}{
		{StatusPending, StatusDelivered, nil},
		{StatusPending, StatusCancelled, nil},
		{StatusDelivered, StatusCancelled, shared.ErrInvalidTransition},
		{StatusDelivered, StatusPending, shared.ErrInvalidTransition},
		{StatusCancelled, StatusPending, shared.ErrInvalidTransition},
		{StatusCancelled, StatusDelivered, shared.ErrInvalidTransition},
		{StatusPending, StatusPending, shared.ErrNoChange},
		{StatusDelivered, StatusDelivered, shared.ErrNoChange},
		{StatusPending, "shipped", shared.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInvalidTransitionNamesBothStates(t *testing.T) {
	err := CheckTransition(StatusDelivered, StatusCancelled)
	require.EqualError(t, err, "invalid status transition: delivered -> cancelled")
}
