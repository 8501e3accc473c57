package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/pkg/platform/sentinel"
)

func TestRunConcurrentCategorises(t *testing.T) {
	res := RunConcurrent(40, func(idx int) error {
		switch idx % 4 {
		case 0:
			return nil
		case 1:
			return fmt.Errorf("limit: %w", ErrDenied)
		case 2:
			return sentinel.ErrUnavailable
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(10), res.Admitted)
	assert.Equal(t, int32(10), res.Denied)
	assert.Equal(t, int32(10), res.Unavailable)
	assert.Equal(t, int32(10), res.Errors)
	assert.Equal(t, int32(40), res.Total())
}
