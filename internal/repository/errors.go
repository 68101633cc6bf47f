// Package repository implements the persistence layer over GORM
// (PostgreSQL in deployments, SQLite locally). Sentinel errors let the
// service layer distinguish an occupied slot or a missing row from a real
// storage failure, which must propagate untranslated.
package repository

import "errors"

// ErrConflict is returned when an insert or update would violate the
// no-overlapping-reservations invariant.
var ErrConflict = errors.New("slot conflict")

// ErrNotFound is returned when the referenced row does not exist.
var ErrNotFound = errors.New("not found")
