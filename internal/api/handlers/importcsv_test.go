package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Fantasim/rainmaker/internal/models"
)

func TestImportCSV_Converts(t *testing.T) {
	csv := "address,amount\n" +
		"0x1111111111111111111111111111111111111111,1.5\n" +
		"0x2222222222222222222222222222222222222222,0.25\n"

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	ImportCSV()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.ImportResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.RowCount != 2 {
		t.Errorf("rowCount = %d, want 2", resp.Data.RowCount)
	}
	if resp.Data.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (header)", resp.Data.Skipped)
	}
	if strings.Contains(resp.Data.Text, "address") {
		t.Errorf("text = %q, header not stripped", resp.Data.Text)
	}
}

func TestImportCSV_MalformedQuotes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("\"unterminated,1\n"))
	rec := httptest.NewRecorder()
	ImportCSV()(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed csv", rec.Code)
	}
}
