package usecase

import (
	"errors"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain"
)

// storeErr translates a document-store failure into the domain error
// vocabulary. Unknown failures become *domain.StoreError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, docstore.ErrInvalidQuery):
		return domain.InvalidInputf("%v", err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return err
	}
	var se *domain.StoreError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}
