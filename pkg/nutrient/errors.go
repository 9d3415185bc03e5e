package nutrient

import (
	"errors"

	"github.com/aretw0/larder/pkg/core"
)

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
