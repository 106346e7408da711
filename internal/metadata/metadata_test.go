package metadata

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(
		"original_column_name,lookup_table_reference,lookup_key_column_name\n" +
			"region_code,lookup_region_code,region_code\n" +
			"injury_type,lookup_injury_type,injury_code\n")
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := []Mapping{
		{OriginalColumn: "region_code", LookupTable: "lookup_region_code", LookupKey: "region_code"},
		{OriginalColumn: "injury_type", LookupTable: "lookup_injury_type", LookupKey: "injury_code"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParse_HeaderBOMAndCase(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(
		"\uFEFFOriginal_Column_Name,Lookup_Table_Reference,Lookup_Key_Column_Name\n" +
			"region_code,lookup_region_code,region_code\n")
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 1 || got[0].OriginalColumn != "region_code" {
		t.Fatalf("unexpected mappings: %#v", got)
	}
}

func TestParse_ExtraColumnsIgnored(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(
		"description,original_column_name,lookup_table_reference,lookup_key_column_name\n" +
			"regions,region_code,lookup_region_code,region_code\n")
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 1 || got[0].LookupTable != "lookup_region_code" {
		t.Fatalf("unexpected mappings: %#v", got)
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("original_column_name,lookup_table_reference\nr,l\n")
	if _, err := Parse(in); err == nil {
		t.Fatal("expected error for missing lookup_key_column_name")
	}
}

func TestParse_EmptyFile(t *testing.T) {
	t.Parallel()

	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestParse_EmptyCellRejected(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(
		"original_column_name,lookup_table_reference,lookup_key_column_name\n" +
			"region_code,,region_code\n")
	if _, err := Parse(in); err == nil {
		t.Fatal("expected error for empty lookup_table_reference cell")
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("original_column_name,lookup_table_reference,lookup_key_column_name\n")
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no mappings, got %#v", got)
	}
}
