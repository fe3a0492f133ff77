package flows

import "errors"

var errEmptyToken = errors.New("token service returned empty token")
