package sasfile

import "testing"

func TestIsDateFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []string{"MMDDYY", "DATE", "DATETIME"} {
		if !isDateFormat(f) {
			t.Errorf("isDateFormat(%q) = false, want true", f)
		}
	}
	for _, f := range []string{"", "BEST", "DOLLAR", "date"} {
		if isDateFormat(f) {
			t.Errorf("isDateFormat(%q) = true, want false", f)
		}
	}
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Open("no-such-file.sas7bdat"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
