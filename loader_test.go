package coinfolio

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadTransactions(t *testing.T) {
	in := "\ufeff" + header +
		"42,2025-01-02 10:00:00,Spot,Transaction Related,BTC,0.01,\n" +
		"\n" +
		"42,2025-01-02 10:00:01,Spot,Transaction Related,EUR,-100,\n" +
		"42,2025-01-03T08:30:00,Spot,Deposit,EUR,500,bank\n"

	rows, err := readTransactions(strings.NewReader(in), "export.csv")
	if err != nil {
		t.Fatalf("readTransactions() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("readTransactions() returned %d rows, want 3", len(rows))
	}
	if got, want := rows[0].Change, D("0.01"); !got.Equal(want) {
		t.Errorf("rows[0].Change = %v, want %v", got, want)
	}
	if got, want := rows[1].Time, T("2025-01-02 10:00:01"); !got.Equal(want) {
		t.Errorf("rows[1].Time = %v, want %v", got, want)
	}
	if got, want := rows[2].Time, T("2025-01-03 08:30:00"); !got.Equal(want) {
		t.Errorf("rows[2].Time = %v, want %v", got, want)
	}
	for _, r := range rows {
		if r.SourceFile != "export.csv" || r.UserID != "42" {
			t.Errorf("row %v has SourceFile=%q UserID=%q", r, r.SourceFile, r.UserID)
		}
	}
}

func TestReadTransactions_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"missing column", "User_ID,UTC_Time,Account,Operation,Coin\n42,2025-01-02 10:00:00,Spot,Deposit,EUR\n"},
		{"bad time", header + "42,yesterday,Spot,Deposit,EUR,500,\n"},
		{"bad change", header + "42,2025-01-02 10:00:00,Spot,Deposit,EUR,five,\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readTransactions(strings.NewReader(tc.in), "bad.csv")
			if !errors.Is(err, ErrValidation) {
				t.Errorf("readTransactions() error = %v, want %v", err, ErrValidation)
			}
		})
	}
}

func TestLoadTransactions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024/a.csv", header+"42,2024-05-01 10:00:00,Spot,Deposit,EUR,100,\n")
	writeFile(t, dir, "b.csv", header+"42,2025-05-01 10:00:00,Spot,Deposit,EUR,200,\n42,2025-05-02 10:00:00,Spot,Deposit,EUR,300,\n")
	writeFile(t, dir, "empty.csv", header)
	writeFile(t, dir, "notes.txt", "not a csv")

	rows, err := LoadTransactions(dir, slog.Default())
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("LoadTransactions() returned %d rows, want 3", len(rows))
	}
	// files are read in lexical order of their path.
	if got := rows[0].SourceFile; got != "a.csv" {
		t.Errorf("rows[0].SourceFile = %q, want %q", got, "a.csv")
	}
	if got := rows[2].SourceFile; got != "b.csv" {
		t.Errorf("rows[2].SourceFile = %q, want %q", got, "b.csv")
	}
}

func TestLoadTransactions_Errors(t *testing.T) {
	empty := t.TempDir()
	writeFile(t, empty, "empty.csv", header)

	testCases := []struct {
		name string
		dir  string
		want error
	}{
		{"missing directory", filepath.Join(t.TempDir(), "nope"), ErrNotFound},
		{"no csv", t.TempDir(), ErrNotFound},
		{"only empty files", empty, ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTransactions(tc.dir, slog.Default())
			if !errors.Is(err, tc.want) {
				t.Errorf("LoadTransactions() error = %v, want %v", err, tc.want)
			}
		})
	}
}
