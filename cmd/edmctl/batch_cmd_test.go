package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"example.com/edmgate/internal/diag"
	"example.com/edmgate/internal/manifest"
)

func checksummedLine(payload string) string {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, sum)
}

func writeSyntheticEngineFile(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(checksummedLine("U,N354DT"))
	buf.WriteByte('\n')
	buf.WriteString(checksummedLine("A,135,115,35,420,15,1650,50,240"))
	buf.WriteByte('\n')
	buf.Write([]byte{0xF0, 0x00, 0x7F, 0x12})
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBatchCmdGeneratesOutputs(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "inputs")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("MkdirAll inputs: %v", err)
	}
	outDir := filepath.Join(root, "out")

	writeSyntheticEngineFile(t, filepath.Join(inputDir, "alpha.jpi"))

	nestedDir := filepath.Join(inputDir, "nested")
	if err := os.MkdirAll(nestedDir, 0o755); err != nil {
		t.Fatalf("MkdirAll nested: %v", err)
	}
	writeSyntheticEngineFile(t, filepath.Join(nestedDir, "beta.dat"))

	// Non-engine files in the tree are skipped, not decoded.
	if err := os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatalf("WriteFile notes: %v", err)
	}

	batchCmd([]string{
		"--in", inputDir,
		"--out-dir", outDir,
	})

	check := func(name string) {
		out := filepath.Join(outDir, name)
		if info, err := os.Stat(out); err != nil || !info.IsDir() {
			t.Fatalf("Output dir missing for %s: %v", name, err)
		}
		diagPath := filepath.Join(out, "diagnostics.ndjson")
		if _, err := os.Stat(diagPath); err != nil {
			t.Fatalf("Stat diagnostics %s: %v", name, err)
		}
		repPath := filepath.Join(out, "report.json")
		data, err := os.ReadFile(repPath)
		if err != nil {
			t.Fatalf("ReadFile report %s: %v", name, err)
		}
		var rep diag.DecodeReport
		if err := json.Unmarshal(data, &rep); err != nil {
			t.Fatalf("Unmarshal report %s: %v", name, err)
		}
		if !rep.Summary.Pass || rep.Summary.Errors != 0 {
			t.Fatalf("unexpected summary for %s: %+v", name, rep.Summary)
		}
		if rep.Header.Registration == nil || *rep.Header.Registration != "N354DT" {
			t.Fatalf("registration for %s = %v", name, rep.Header.Registration)
		}
	}

	check("alpha")
	check("beta")

	if _, err := os.Stat(filepath.Join(outDir, "notes")); !os.IsNotExist(err) {
		t.Fatalf("non-engine file was decoded")
	}

	m, err := manifest.Load(filepath.Join(outDir, "manifest.json"))
	if err != nil {
		t.Fatalf("Load manifest: %v", err)
	}
	if len(m.Items) != 4 {
		t.Fatalf("manifest items = %d, want 4", len(m.Items))
	}
}

func TestCollectBatchInputsFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpi", "b.DAT", "c.txt", "d.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	inputs, err := collectBatchInputs(dir)
	if err != nil {
		t.Fatalf("collectBatchInputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("inputs = %v, want a.jpi and b.DAT", inputs)
	}
}
