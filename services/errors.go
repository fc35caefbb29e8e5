package services

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch signalisiert, dass sich die Form der Quelldaten geändert hat.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrParse: eine Zeile lässt sich nicht in Label und Wert zerlegen.
	ErrParse = errors.New("parse error")
	// ErrMalformedStyleDirective: unbekannte oder ungültige Style-Option.
	ErrMalformedStyleDirective = errors.New("malformed style directive")

	ErrDuplicateField = fmt.Errorf("%w: duplicate field", ErrSchemaMismatch)
)
