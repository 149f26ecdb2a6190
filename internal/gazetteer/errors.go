package gazetteer

import "errors"

// Sentinel errors returned (wrapped with context via %w) by Build. Callers
// can branch on these with errors.Is.
var (
	// ErrDuplicateID is returned when two input rows claim the same id.
	ErrDuplicateID = errors.New("gazetteer: duplicate id")

	// ErrMissingCountryParent is returned when an admin-1, admin-2, or
	// city row names a country code that was never loaded from
	// countryInfo.txt. Unlike the admin-1 back-reference on admin-2/city
	// rows, the country back-reference is never optional.
	ErrMissingCountryParent = errors.New("gazetteer: row references unknown country")

	// ErrAlternateNameAmbiguous is returned when a fixed alternate-name
	// entry matches more than one existing record.
	ErrAlternateNameAmbiguous = errors.New("gazetteer: alternate name entry matches more than one record")

	// ErrAlternateNameNotFound is returned when a fixed alternate-name
	// entry matches no existing record.
	ErrAlternateNameNotFound = errors.New("gazetteer: alternate name entry matches no record")

	// ErrMissingOverrideTarget is returned when the Washington, D.C.
	// importance override cannot find its target record.
	ErrMissingOverrideTarget = errors.New("gazetteer: importance override target not found")
)
