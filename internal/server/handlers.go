package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"example.com/edmgate/internal/common"
	"example.com/edmgate/internal/diag"
	"example.com/edmgate/internal/edm"
	"example.com/edmgate/internal/manifest"
	"example.com/edmgate/internal/report"
)

// Server coordinates HTTP handlers and manages temporary artifacts produced
// by decode requests.
type Server struct {
	artifacts   *ArtifactStore
	workDir     string
	uploadsDir  string
	strict      bool
	maxUploadMB int64
}

// Options configures server creation.
type Options struct {
	StorageDir string
	// Strict makes checksum mismatches abort decodes by default; individual
	// requests may override with the strict query parameter.
	Strict      bool
	MaxUploadMB int64
}

// Artifact represents a file generated or stored by the daemon.
type Artifact struct {
	ID          string
	Path        string
	Name        string
	ContentType string
	Size        int64
	Kind        string
}

// ArtifactRef is the public representation returned in API responses.
type ArtifactRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// ArtifactStore keeps track of generated artifacts for later download.
type ArtifactStore struct {
	mu      sync.RWMutex
	entries map[string]Artifact
}

// NewServer constructs a Server rooted at a temporary workspace directory.
func NewServer(opts Options) (*Server, error) {
	storageDir := opts.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(storageDir, "edmd-")
	if err != nil {
		return nil, err
	}
	uploadsDir := filepath.Join(workDir, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	maxUploadMB := opts.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = 64
	}
	return &Server{
		artifacts:   &ArtifactStore{entries: make(map[string]Artifact)},
		workDir:     workDir,
		uploadsDir:  uploadsDir,
		strict:      opts.Strict,
		maxUploadMB: maxUploadMB,
	}, nil
}

// Close removes any temporary state associated with the server.
func (s *Server) Close() error {
	if s == nil || s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

func (s *Server) tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp(s.workDir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

func (s *Server) addArtifact(path, displayName, contentType, kind string) (Artifact, error) {
	if path == "" {
		return Artifact{}, errors.New("empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	art := Artifact{
		ID:          randomID(),
		Path:        path,
		Name:        displayName,
		ContentType: contentType,
		Size:        info.Size(),
		Kind:        kind,
	}
	s.artifacts.mu.Lock()
	s.artifacts.entries[art.ID] = art
	s.artifacts.mu.Unlock()
	return art, nil
}

func (s *Server) lookupArtifact(id string) (Artifact, bool) {
	s.artifacts.mu.RLock()
	defer s.artifacts.mu.RUnlock()
	art, ok := s.artifacts.entries[id]
	return art, ok
}

func toRef(a Artifact) ArtifactRef {
	return ArtifactRef{ID: a.ID, Name: a.Name, ContentType: a.ContentType, Size: a.Size, Kind: a.Kind}
}

func randomID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("art-%d", os.Getpid())
	}
	return hex.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.Logf("write response: %v", err)
	}
}

func guessContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type decodeResponse struct {
	Report    diag.DecodeReport `json:"report"`
	Artifacts []ArtifactRef     `json:"artifacts,omitempty"`
}

type decodeError struct {
	Error      string          `json:"error"`
	Diagnostic diag.Diagnostic `json:"diagnostic"`
}

// handleDecode accepts one engine-data file as a multipart upload, decodes
// its header and responds with the decode report. The strict query parameter
// overrides the server default. With format=ndjson the diagnostics are
// streamed instead of the report envelope.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, data, err := s.readSingleUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	strict := s.strict
	if raw := r.URL.Query().Get("strict"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			strict = v
		}
	}

	dec := edm.NewDecoder(edm.Options{Strict: strict})
	res, err := dec.Decode(data)
	if err != nil {
		d := diag.FromDecodeError(name, err)
		writeJSON(w, http.StatusUnprocessableEntity, decodeError{Error: err.Error(), Diagnostic: d})
		return
	}
	findings := diag.FromIssues(name, res.Issues)
	rep := diag.BuildReport(name, res.Header, findings)
	rep.Sha256 = common.Sha256OfBytes(data)

	if r.URL.Query().Get("format") == "ndjson" {
		w.Header().Set("Content-Type", "application/x-ndjson")
		writer := NewNDJSONWriter(w)
		for _, d := range findings {
			if err := writer.WriteDiagnostic(d); err != nil {
				common.Logf("stream diagnostics: %v", err)
				return
			}
		}
		return
	}

	refs, err := s.saveDecodeArtifacts(name, rep, findings)
	if err != nil {
		common.Logf("save artifacts for %s: %v", name, err)
	}
	writeJSON(w, http.StatusOK, decodeResponse{Report: rep, Artifacts: refs})
}

func (s *Server) saveDecodeArtifacts(name string, rep diag.DecodeReport, findings []diag.Diagnostic) ([]ArtifactRef, error) {
	var refs []ArtifactRef

	reportPath, err := s.tempPath("report-*.json")
	if err != nil {
		return refs, err
	}
	if err := report.SaveReportJSON(rep, reportPath); err != nil {
		return refs, err
	}
	art, err := s.addArtifact(reportPath, name+".report.json", "application/json", "report")
	if err != nil {
		return refs, err
	}
	refs = append(refs, toRef(art))

	diagPath, err := s.tempPath("diagnostics-*.ndjson")
	if err != nil {
		return refs, err
	}
	if err := diag.SaveNDJSON(diagPath, findings); err != nil {
		return refs, err
	}
	art, err = s.addArtifact(diagPath, name+".diagnostics.ndjson", "application/x-ndjson", "diagnostics")
	if err != nil {
		return refs, err
	}
	refs = append(refs, toRef(art))

	pdfPath, err := s.tempPath("report-*.pdf")
	if err != nil {
		return refs, err
	}
	if err := report.SaveReportPDF(rep, pdfPath, report.PDFOptions{EmbedQR: true}); err != nil {
		return refs, err
	}
	art, err = s.addArtifact(pdfPath, name+".report.pdf", "application/pdf", "report")
	if err != nil {
		return refs, err
	}
	refs = append(refs, toRef(art))
	return refs, nil
}

// handleManifest builds a manifest over previously stored artifacts.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ArtifactIDs []string `json:"artifactIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.ArtifactIDs) == 0 {
		http.Error(w, "no artifact ids provided", http.StatusBadRequest)
		return
	}
	var paths []string
	for _, id := range req.ArtifactIDs {
		art, ok := s.lookupArtifact(strings.TrimSpace(id))
		if !ok {
			http.Error(w, fmt.Sprintf("unknown artifact %s", id), http.StatusNotFound)
			return
		}
		paths = append(paths, art.Path)
	}
	m, err := manifest.Build(paths)
	if err != nil {
		http.Error(w, fmt.Sprintf("build manifest: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleArtifactDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/artifacts/")
	art, ok := s.lookupArtifact(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(art.Path)
	if err != nil {
		http.Error(w, "artifact unavailable", http.StatusGone)
		return
	}
	defer f.Close()
	if art.ContentType != "" {
		w.Header().Set("Content-Type", art.ContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	if _, err := io.Copy(w, f); err != nil {
		common.Logf("send artifact %s: %v", id, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
