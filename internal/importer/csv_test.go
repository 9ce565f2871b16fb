package importer

import (
	"strings"
	"testing"

	"github.com/Fantasim/rainmaker/internal/batch"
)

func TestConvert_Simple(t *testing.T) {
	in := "0x1111111111111111111111111111111111111111,1.5\n" +
		"0x2222222222222222222222222222222222222222,0.25\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.RowCount != 2 {
		t.Errorf("rows = %d, want 2", res.RowCount)
	}
	if res.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", res.Skipped)
	}
	if res.Text != in {
		t.Errorf("text = %q, want input preserved", res.Text)
	}
}

func TestConvert_HeaderRowSkipped(t *testing.T) {
	in := "address,amount\n" +
		"0x1111111111111111111111111111111111111111,1.5\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.RowCount != 1 {
		t.Errorf("rows = %d, want 1", res.RowCount)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (header)", res.Skipped)
	}
	if strings.Contains(res.Text, "address") {
		t.Errorf("header leaked into text: %q", res.Text)
	}
}

func TestConvert_ExtraColumnsIgnored(t *testing.T) {
	in := "0x1111111111111111111111111111111111111111,2.0,alice,note\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	want := "0x1111111111111111111111111111111111111111,2.0\n"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestConvert_QuotedFields(t *testing.T) {
	in := `"0x1111111111111111111111111111111111111111","1.5"` + "\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	want := "0x1111111111111111111111111111111111111111,1.5\n"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestConvert_ShortRowsSkipped(t *testing.T) {
	in := "0x1111111111111111111111111111111111111111\n" +
		"0x2222222222222222222222222222222222222222,3\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.RowCount != 1 {
		t.Errorf("rows = %d, want 1", res.RowCount)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
}

func TestConvert_Empty(t *testing.T) {
	res, err := Convert(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.RowCount != 0 || res.Text != "" {
		t.Errorf("result = %+v, want empty", res)
	}
}

// Converted output must feed the batch parser untouched; a bad amount in the
// CSV surfaces as a parser error on the matching line, not an import error.
func TestConvert_OutputFeedsParser(t *testing.T) {
	in := "address,amount\n" +
		"0x1111111111111111111111111111111111111111,1.5\n" +
		"0x2222222222222222222222222222222222222222,0.25\n"

	res, err := Convert(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	b, err := batch.Parse(res.Text, "", 18)
	if err != nil {
		t.Fatalf("Parse(converted) error = %v", err)
	}
	if len(b.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(b.Entries))
	}
	if want := "1750000000000000000"; b.TotalValue().String() != want {
		t.Errorf("total = %s, want %s", b.TotalValue(), want)
	}
}
