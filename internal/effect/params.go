package effect

import "github.com/lightwaveos/core/internal/lwerr"

func notFoundParam(name string) error {
	return lwerr.New(lwerr.NotFound, "unknown parameter %q", name)
}

func typeMismatchParam(name string) error {
	return lwerr.New(lwerr.TypeMismatch, "parameter %q kind mismatch", name)
}

func outOfRangeParam(name string) error {
	return lwerr.New(lwerr.OutOfRange, "parameter %q value out of range", name)
}
