// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pedigree

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("whitespace delimited with comments", func(t *testing.T) {
		input := `# renumbered pedigree
% another comment style

1 0 0
2 0 0
3 1 2 HOLSTEIN-3
`
		rs, err := Load(strings.NewReader(input), "herd")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rs.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", rs.Len())
		}
		if rs.Name != "herd" {
			t.Errorf("Name = %q, want herd", rs.Name)
		}

		r := rs.Records[2]
		if r.AnimalID != 3 || r.SireID != 1 || r.DamID != 2 {
			t.Errorf("record = %+v, want animal 3 sire 1 dam 2", r)
		}
		if r.OriginalID != "HOLSTEIN-3" {
			t.Errorf("OriginalID = %q, want HOLSTEIN-3", r.OriginalID)
		}
		// Without a fourth field the original id falls back to the animal id.
		if rs.Records[0].OriginalID != "1" {
			t.Errorf("OriginalID fallback = %q, want 1", rs.Records[0].OriginalID)
		}
	})

	t.Run("comma delimited", func(t *testing.T) {
		input := "1,0,0\n2,1,0\n"
		rs, err := Load(strings.NewReader(input), "csv", WithComma(','))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rs.Len() != 2 || rs.Records[1].SireID != 1 {
			t.Errorf("records = %+v", rs.Records)
		}
	})

	t.Run("custom missing sentinel", func(t *testing.T) {
		input := "1 -1 -1\n2 1 -1\n"
		rs, err := Load(strings.NewReader(input), "neg", WithMissing(-1))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rs.HasSire(rs.Records[0]) {
			t.Error("sire -1 should count as missing")
		}
		if !rs.HasSire(rs.Records[1]) {
			t.Error("sire 1 should count as recorded")
		}
	})

	t.Run("malformed field count", func(t *testing.T) {
		_, err := Load(strings.NewReader("1 0\n"), "bad")
		if !errors.Is(err, ErrBadRecord) {
			t.Errorf("Load() error = %v, want ErrBadRecord", err)
		}
	})

	t.Run("non-numeric id carries line number", func(t *testing.T) {
		_, err := Load(strings.NewReader("1 0 0\nX 0 0\n"), "bad")
		if !errors.Is(err, ErrBadRecord) {
			t.Fatalf("Load() error = %v, want ErrBadRecord", err)
		}
		if !strings.Contains(err.Error(), "line 2") {
			t.Errorf("error %q should name line 2", err)
		}
	})

	t.Run("empty source", func(t *testing.T) {
		_, err := Load(strings.NewReader("# only comments\n"), "empty")
		if !errors.Is(err, ErrEmptyPedigree) {
			t.Errorf("Load() error = %v, want ErrEmptyPedigree", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "herd.ped")
	if err := os.WriteFile(path, []byte("1 0 0\n2 1 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if rs.Name != "herd" {
		t.Errorf("Name = %q, want file stem herd", rs.Name)
	}
	if rs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rs.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.ped")); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}
