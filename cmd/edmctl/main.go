package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"example.com/edmgate/internal/common"
	"example.com/edmgate/internal/diag"
	"example.com/edmgate/internal/edm"
	"example.com/edmgate/internal/manifest"
	"example.com/edmgate/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "decode":
		decodeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`edmctl %s (built %s) <command> [options]

Commands:
  decode    --in <file.jpi> [--strict] [--out <report.json>] [--diag <diagnostics.ndjson>] [--pdf <report.pdf>] [--lang <en|tr>] [--metrics]
  report    --in <report.json> --pdf <report.pdf> [--lang <en|tr>] [--qr]
  manifest  --inputs <comma-separated> --out <manifest.json>
  batch     --in <dir> --out-dir <dir> [--strict] [--metrics]
`, version, buildDate)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input engine-data file")
	strict := fs.Bool("strict", false, "abort on the first invalid header line")
	outReport := fs.String("out", "report.json", "decode report output")
	outDiag := fs.String("diag", "diagnostics.ndjson", "diagnostics output")
	outPDF := fs.String("pdf", "", "optional PDF report output")
	lang := fs.String("lang", "en", "report language")
	metricsFlag := fs.Bool("metrics", false, "print decode throughput metrics")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	var metrics *common.Metrics
	if *metricsFlag {
		metrics = common.NewMetrics()
		if info, err := os.Stat(*in); err == nil {
			metrics.SetTotalBytes(info.Size())
		}
		metrics.Start()
	}

	rep, findings, err := decodeOne(*in, *strict, metrics)
	if err != nil {
		d := diag.FromDecodeError(*in, err)
		if werr := diag.SaveNDJSON(*outDiag, []diag.Diagnostic{d}); werr != nil {
			common.Logf("write diagnostics: %v", werr)
		}
		fmt.Printf("decode failed: %v\n", err)
		os.Exit(2)
	}

	if err := report.SaveReportJSON(rep, *outReport); err != nil {
		common.Fatalf("write report: %v", err)
	}
	if err := diag.SaveNDJSON(*outDiag, findings); err != nil {
		common.Fatalf("write diagnostics: %v", err)
	}
	if *outPDF != "" {
		opts := report.PDFOptions{Lang: report.Language(*lang), EmbedQR: true}
		if err := report.SaveReportPDF(rep, *outPDF, opts); err != nil {
			common.Fatalf("write pdf: %v", err)
		}
	}
	if metrics != nil {
		metrics.Stop()
		fmt.Println(metrics.Snapshot())
	}
	printSummary(rep)
	if !rep.Summary.Pass {
		os.Exit(1)
	}
}

// decodeOne decodes a single file and assembles its report and findings.
func decodeOne(path string, strict bool, metrics *common.Metrics) (diag.DecodeReport, []diag.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return diag.DecodeReport{}, nil, err
	}
	dec := edm.NewDecoder(edm.Options{Strict: strict})
	res, err := dec.Decode(data)
	if err != nil {
		return diag.DecodeReport{}, nil, err
	}
	if metrics != nil {
		metrics.AddFile(int64(len(data)))
		metrics.AddHeaderLines(int64(res.Lines))
		for _, le := range res.Issues {
			if errors.Is(le, edm.ErrChecksumMismatch) {
				metrics.IncChecksumFailure()
			}
		}
	}
	findings := diag.FromIssues(path, res.Issues)
	rep := diag.BuildReport(path, res.Header, findings)
	rep.Sha256 = common.Sha256OfBytes(data)
	return rep, findings, nil
}

func printSummary(rep diag.DecodeReport) {
	registration := "(unset)"
	if rep.Header.Registration != nil {
		registration = *rep.Header.Registration
	}
	status := "PASS"
	if !rep.Summary.Pass {
		status = "FAIL"
	}
	fmt.Printf("%s: registration=%s findings=%d warnings=%d [%s]\n",
		rep.File, registration, rep.Summary.Total, rep.Summary.Warnings, status)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "decode report JSON")
	outPDF := fs.String("pdf", "report.pdf", "PDF output")
	lang := fs.String("lang", "en", "report language")
	embedQR := fs.Bool("qr", false, "embed a QR code of the file digest")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	rep, err := report.LoadReportJSON(*in)
	if err != nil {
		common.Fatalf("load report: %v", err)
	}
	opts := report.PDFOptions{Lang: report.Language(*lang), EmbedQR: *embedQR}
	if err := report.SaveReportPDF(rep, *outPDF, opts); err != nil {
		common.Fatalf("write pdf: %v", err)
	}
	fmt.Printf("wrote %s\n", *outPDF)
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated input files")
	out := fs.String("out", "manifest.json", "manifest output")
	fs.Parse(args)

	paths := splitInputs(*inputs)
	if len(paths) == 0 {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}
	m, err := manifest.Build(paths)
	if err != nil {
		common.Fatalf("build manifest: %v", err)
	}
	if err := manifest.Save(m, *out); err != nil {
		common.Fatalf("write manifest: %v", err)
	}
	fmt.Printf("wrote %s (%d items)\n", *out, len(m.Items))
}
