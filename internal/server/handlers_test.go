package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/edmgate/internal/diag"
)

func newTestServer(t *testing.T, opts Options) (*Server, http.Handler) {
	t.Helper()
	opts.StorageDir = t.TempDir()
	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, NewRouter(srv)
}

func headerLine(payload string) string {
	var sum byte
	full := "$" + payload
	for i := 1; i < len(full); i++ {
		sum ^= full[i]
	}
	return fmt.Sprintf("%s*%02X", full, sum)
}

func sampleFile() []byte {
	var buf bytes.Buffer
	buf.WriteString(headerLine("U,N354DT"))
	buf.WriteByte('\n')
	buf.WriteString(headerLine("A,135,115,35,420,15,1650,50,240"))
	buf.WriteByte('\n')
	buf.Write([]byte{0xFE, 0x00, 0x7F})
	return buf.Bytes()
}

func corruptedFile() []byte {
	line := headerLine("U,N354DT")
	line = line[:len(line)-2] + "00"
	return []byte(line + "\n\xFE")
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandleDecode(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", sampleFile())
	req := httptest.NewRequest(http.MethodPost, "/decode", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Report    diag.DecodeReport `json:"report"`
		Artifacts []ArtifactRef     `json:"artifacts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.Header.Registration == nil || *resp.Report.Header.Registration != "N354DT" {
		t.Fatalf("registration = %v", resp.Report.Header.Registration)
	}
	if resp.Report.Header.Alarms == nil || resp.Report.Header.Alarms.VoltsMax != 13.5 {
		t.Fatalf("alarms = %+v", resp.Report.Header.Alarms)
	}
	if resp.Report.Sha256 == "" {
		t.Fatalf("missing file digest")
	}
	if len(resp.Artifacts) != 3 {
		t.Fatalf("artifacts = %d, want report.json, diagnostics.ndjson and report.pdf", len(resp.Artifacts))
	}
}

func TestHandleDecodeCorruptedLenient(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", corruptedFile())
	req := httptest.NewRequest(http.MethodPost, "/decode", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Report diag.DecodeReport `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.Summary.Warnings != 1 {
		t.Fatalf("warnings = %d, want 1", resp.Report.Summary.Warnings)
	}
	if len(resp.Report.Findings) != 1 || resp.Report.Findings[0].Code != diag.CodeChecksumMismatch {
		t.Fatalf("findings = %+v", resp.Report.Findings)
	}
}

func TestHandleDecodeStrictQueryAborts(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", corruptedFile())
	req := httptest.NewRequest(http.MethodPost, "/decode?strict=true", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp struct {
		Diagnostic diag.Diagnostic `json:"diagnostic"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Diagnostic.Code != diag.CodeChecksumMismatch || resp.Diagnostic.Severity != diag.ERROR {
		t.Fatalf("diagnostic = %+v", resp.Diagnostic)
	}
}

func TestHandleDecodeNDJSONStream(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", corruptedFile())
	req := httptest.NewRequest(http.MethodPost, "/decode?format=ndjson", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Fatalf("content type = %s", got)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("streamed %d lines, want 1", len(lines))
	}
	var d diag.Diagnostic
	if err := json.Unmarshal([]byte(lines[0]), &d); err != nil {
		t.Fatalf("line not valid JSON: %v", err)
	}
	if d.Code != diag.CodeChecksumMismatch {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestArtifactDownloadAndManifest(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", sampleFile())
	req := httptest.NewRequest(http.MethodPost, "/decode", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("decode status = %d", rec.Code)
	}
	var resp struct {
		Artifacts []ArtifactRef `json:"artifacts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Artifacts) == 0 {
		t.Fatalf("no artifacts registered")
	}

	dl := httptest.NewRequest(http.MethodGet, "/artifacts/"+resp.Artifacts[0].ID, nil)
	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, dl)
	if dlRec.Code != http.StatusOK {
		t.Fatalf("download status = %d", dlRec.Code)
	}
	if data, _ := io.ReadAll(dlRec.Body); len(data) == 0 {
		t.Fatalf("empty artifact download")
	}

	var ids []string
	for _, ref := range resp.Artifacts {
		ids = append(ids, ref.ID)
	}
	manifestReq, _ := json.Marshal(map[string][]string{"artifactIds": ids})
	mr := httptest.NewRequest(http.MethodPost, "/manifest", bytes.NewReader(manifestReq))
	mrRec := httptest.NewRecorder()
	router.ServeHTTP(mrRec, mr)
	if mrRec.Code != http.StatusOK {
		t.Fatalf("manifest status = %d, body %s", mrRec.Code, mrRec.Body.String())
	}
	var m struct {
		Items []struct {
			Sha256 string `json:"sha256"`
		} `json:"items"`
	}
	if err := json.Unmarshal(mrRec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(m.Items) != len(ids) {
		t.Fatalf("manifest items = %d, want %d", len(m.Items), len(ids))
	}
}

func TestHandleHealth(t *testing.T) {
	_, router := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHandleUpload(t *testing.T) {
	_, router := newTestServer(t, Options{})
	body, contentType := multipartBody(t, "flight.jpi", sampleFile())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Files []ArtifactRef `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Files) != 1 || resp.Files[0].Name != "flight.jpi" {
		t.Fatalf("files = %+v", resp.Files)
	}
}

func TestHandleDecodeRejectsGet(t *testing.T) {
	_, router := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/decode", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
