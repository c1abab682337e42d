// Package mds reads the MDS output of MITgcm-family ocean models.
//
// A run directory holds pairs of files: a text metadata file
// (<field>[.<iteration>].meta) and a raw binary payload
// (<field>[.<iteration>].data). ReadOne and ReadMany read a single pair.
// Open assembles a whole directory into a Dataset: grid geometry, index
// coordinates for every staggered axis, layers axes, output fields stacked
// along time, and the time coordinate.
package mds

import (
	"errors"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

// Common errors
var (
	ErrMissingFile      = mdserr.ErrMissingFile
	ErrSizeMismatch     = mdserr.ErrSizeMismatch
	ErrSyntax           = mdserr.ErrSyntax
	ErrMissingField     = mdserr.ErrMissingField
	ErrUnknownPrecision = mdserr.ErrUnknownPrecision
	ErrMultiRecord      = mdserr.ErrMultiRecord
	ErrMaxMapCount      = mdserr.ErrMaxMapCount
	ErrInvalidOption    = errors.New("invalid option")
	ErrClosed           = errors.New("dataset is closed")
	ErrNotFound         = errors.New("variable not found")
)

// FormatError reports malformed metadata or diagnostics text.
type FormatError = mdserr.FormatError

// IOError reports a missing file or a payload inconsistent with its metadata.
type IOError = mdserr.IOError
