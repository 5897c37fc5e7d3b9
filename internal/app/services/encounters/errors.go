package encounters

import "errors"

var (
	errVendorAuth             = errors.New("no usable response from vendor")
	errEncounterNotFound      = errors.New("encounter not found in source system")
	errEncounterNotAttributed = errors.New("target store returned no entry for the encounter create")
)
