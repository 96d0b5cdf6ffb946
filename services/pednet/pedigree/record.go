// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pedigree provides the pedigree record model consumed by the
// graph builder, plus a loader for delimited pedigree files.
//
// A pedigree is an ordered sequence of animal records. Each record carries
// a dense internal identifier (AnimalID), an external identifier
// (OriginalID), and the internal identifiers of its sire and dam, either of
// which may be the record set's missing-parent sentinel. The sequence is
// expected to be topologically ordered: parents appear before their
// offspring. The loader does not enforce that ordering; enforcement is the
// graph builder's failure domain.
package pedigree

// MissingParent is the conventional missing-parent sentinel. Record sets
// may declare a different one.
const MissingParent = 0

// Record is a single animal entry in a pedigree.
//
// AnimalID is the dense internal index (1-based by convention). SireID and
// DamID reference other records' AnimalIDs, or the record set's
// missing-parent sentinel when the parent is unrecorded.
type Record struct {
	// AnimalID is the dense internal identifier.
	AnimalID int

	// OriginalID is the external identifier as it appeared in the source.
	// May be any non-empty string; not necessarily numeric.
	OriginalID string

	// SireID is the sire's AnimalID, or the missing-parent sentinel.
	SireID int

	// DamID is the dam's AnimalID, or the missing-parent sentinel.
	DamID int
}

// RecordSet is an ordered pedigree with its missing-parent sentinel.
//
// RecordSet is read-only to the graph core: the builder never mutates it.
type RecordSet struct {
	// Name identifies the pedigree (file stem or caller-supplied label).
	Name string

	// Records holds the animal entries in pedigree order.
	Records []Record

	// Missing is the missing-parent sentinel used by SireID/DamID.
	Missing int
}

// Len returns the number of records.
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// HasSire reports whether the record's sire is recorded.
func (rs *RecordSet) HasSire(r Record) bool {
	return r.SireID != rs.Missing
}

// HasDam reports whether the record's dam is recorded.
func (rs *RecordSet) HasDam(r Record) bool {
	return r.DamID != rs.Missing
}
