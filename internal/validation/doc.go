// Package validation normalizes and rejects user input before it reaches the
// database: book metadata, reading list names and account fields.
//
// Every validator returns the normalized value or an *InvalidInputError whose
// message is safe to show to the client. Validators are fail-fast on their own
// checks; callers gather the errors of several fields into FieldErrors so a
// request reports every bad field at once.
//
// Checks that need the database (title, list name, email and username
// uniqueness) are left to the caller.
//
// # Usage
//
//	errs := validation.FieldErrors{}
//	title, err := validation.Title(req.Title)
//	errs.Check("title", err)
//	if err := errs.Err(); err != nil {
//		return err
//	}
package validation
