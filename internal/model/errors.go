package model

import "errors"

var (
	// ErrEmptyRegion is returned when an element arrives with a mask that
	// covers no pixels.
	ErrEmptyRegion = errors.New("element mask covers no pixels")

	// ErrDimensionMismatch is returned when an element mask does not match
	// the page raster dimensions.
	ErrDimensionMismatch = errors.New("mask does not match page raster")

	// ErrInvalidGraphState is returned when a mutation cannot be applied
	// without violating the object graph invariants.
	ErrInvalidGraphState = errors.New("mutation would corrupt object graph")

	// ErrCategoryMismatch is returned when objects of different categories
	// are merged, or an element is forced into a foreign object.
	ErrCategoryMismatch = errors.New("category mismatch")

	// ErrCategoryInUse is returned when deleting a category that still has
	// objects referencing it.
	ErrCategoryInUse = errors.New("category is referenced by objects")

	// ErrCategoryProtected is returned when deleting one of the built-in
	// protected categories.
	ErrCategoryProtected = errors.New("category is protected")

	// ErrUnknownID is returned when an object, instance, element, page or
	// category lookup fails.
	ErrUnknownID = errors.New("unknown identifier")
)
