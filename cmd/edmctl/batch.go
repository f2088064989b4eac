package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"example.com/edmgate/internal/common"
	"example.com/edmgate/internal/diag"
	"example.com/edmgate/internal/manifest"
	"example.com/edmgate/internal/report"
)

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inDir := fs.String("in", ".", "input directory")
	outDir := fs.String("out-dir", "out", "results directory")
	strict := fs.Bool("strict", false, "abort each decode on the first invalid header line")
	metricsFlag := fs.Bool("metrics", false, "print decode throughput metrics")
	fs.Parse(args)

	inputs, err := collectBatchInputs(*inDir)
	if err != nil {
		common.Fatalf("scan %s: %v", *inDir, err)
	}
	if len(inputs) == 0 {
		fmt.Printf("no engine-data files under %s\n", *inDir)
		return
	}

	var metrics *common.Metrics
	if *metricsFlag {
		metrics = common.NewMetrics()
		metrics.Start()
	}

	failed := 0
	for _, input := range inputs {
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		dir := filepath.Join(*outDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			common.Fatalf("mkdir %s: %v", dir, err)
		}

		rep, findings, err := decodeOne(input, *strict, metrics)
		if err != nil {
			d := diag.FromDecodeError(input, err)
			if werr := diag.SaveNDJSON(filepath.Join(dir, "diagnostics.ndjson"), []diag.Diagnostic{d}); werr != nil {
				common.Logf("write diagnostics for %s: %v", input, werr)
			}
			fmt.Printf("%s: decode failed: %v\n", input, err)
			failed++
			continue
		}
		if err := report.SaveReportJSON(rep, filepath.Join(dir, "report.json")); err != nil {
			common.Fatalf("write report for %s: %v", input, err)
		}
		if err := diag.SaveNDJSON(filepath.Join(dir, "diagnostics.ndjson"), findings); err != nil {
			common.Fatalf("write diagnostics for %s: %v", input, err)
		}
		if !rep.Summary.Pass {
			failed++
		}
		printSummary(rep)
	}

	if err := writeBatchManifest(*outDir); err != nil {
		common.Logf("write batch manifest: %v", err)
	}
	if metrics != nil {
		metrics.Stop()
		fmt.Println(metrics.Snapshot())
	}
	if failed > 0 {
		fmt.Printf("%d of %d files failed\n", failed, len(inputs))
		os.Exit(1)
	}
}

// collectBatchInputs walks dir recursively and returns engine-data files in
// deterministic walk order.
func collectBatchInputs(dir string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpi", ".dat":
			inputs = append(inputs, path)
		}
		return nil
	})
	return inputs, err
}

// writeBatchManifest indexes every artifact the batch produced.
func writeBatchManifest(outDir string) error {
	var paths []string
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) == "manifest.json" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	m, err := manifest.Build(paths)
	if err != nil {
		return err
	}
	return manifest.Save(m, filepath.Join(outDir, "manifest.json"))
}

func splitInputs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
