package diag

import (
	"errors"
	"strconv"
	"time"

	"example.com/edmgate/internal/edm"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Stable finding codes for header decode issues.
const (
	CodeChecksumMismatch     = "HDR-0001"
	CodeMissingDelimiter     = "HDR-0002"
	CodeInvalidChecksumHex   = "HDR-0003"
	CodeEmptyTagLine         = "HDR-0004"
	CodeTruncatedAlarms      = "HDR-0005"
	CodeUnparseableNumeric   = "HDR-0006"
	CodeUnexpectedTokenCount = "HDR-0007"
	CodeNoHeaderTerminator   = "HDR-0008"
	CodeInvalidEncoding      = "HDR-0009"
	CodeUnknown              = "HDR-0000"
)

// Diagnostic is one reportable finding raised while decoding a header.
type Diagnostic struct {
	Ts       time.Time `json:"ts"`
	File     string    `json:"file"`
	Line     int       `json:"line,omitempty"`
	Offset   string    `json:"offset,omitempty"`
	Tag      string    `json:"tag,omitempty"`
	Token    string    `json:"token,omitempty"`
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// DecodeReport summarizes one decode: the assembled header, a pass/fail
// summary and the individual findings.
type DecodeReport struct {
	File    string           `json:"file"`
	Sha256  string           `json:"sha256,omitempty"`
	Header  edm.HeaderRecord `json:"header"`
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Findings []Diagnostic `json:"findings,omitempty"`
}

func classify(err error) (string, Severity) {
	switch {
	case errors.Is(err, edm.ErrChecksumMismatch):
		return CodeChecksumMismatch, WARN
	case errors.Is(err, edm.ErrMissingChecksumDelimiter):
		return CodeMissingDelimiter, WARN
	case errors.Is(err, edm.ErrInvalidChecksumDigits):
		return CodeInvalidChecksumHex, WARN
	case errors.Is(err, edm.ErrEmptyTagLine):
		return CodeEmptyTagLine, WARN
	case errors.Is(err, edm.ErrTruncatedAlarmLine):
		return CodeTruncatedAlarms, WARN
	case errors.Is(err, edm.ErrUnparseableNumericToken):
		return CodeUnparseableNumeric, WARN
	case errors.Is(err, edm.ErrUnexpectedTokenCount):
		return CodeUnexpectedTokenCount, INFO
	case errors.Is(err, edm.ErrNoHeaderTerminator):
		return CodeNoHeaderTerminator, ERROR
	case errors.Is(err, edm.ErrInvalidEncoding):
		return CodeInvalidEncoding, ERROR
	default:
		return CodeUnknown, WARN
	}
}

// FromIssues converts the per-line issues of a lenient decode into
// diagnostics, in line order.
func FromIssues(file string, issues []*edm.LineError) []Diagnostic {
	if len(issues) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(issues))
	for _, le := range issues {
		code, sev := classify(le.Err)
		d := Diagnostic{
			Ts:       time.Now(),
			File:     file,
			Line:     le.Line,
			Offset:   strconv.FormatInt(le.Offset, 10),
			Token:    le.Token,
			Code:     code,
			Severity: sev,
			Message:  le.Error(),
		}
		if le.Tag != 0 {
			d.Tag = string(le.Tag)
		}
		out = append(out, d)
	}
	return out
}

// FromDecodeError converts a terminal decode error (boundary or encoding
// failure, or a strict-mode abort) into a single ERROR diagnostic.
func FromDecodeError(file string, err error) Diagnostic {
	code, _ := classify(err)
	d := Diagnostic{
		Ts:       time.Now(),
		File:     file,
		Code:     code,
		Severity: ERROR,
		Message:  err.Error(),
	}
	var le *edm.LineError
	if errors.As(err, &le) {
		d.Line = le.Line
		d.Offset = strconv.FormatInt(le.Offset, 10)
		d.Token = le.Token
		if le.Tag != 0 {
			d.Tag = string(le.Tag)
		}
	}
	return d
}

// BuildReport assembles a DecodeReport from a decode result and its
// diagnostics. The report passes when no ERROR-level finding is present.
func BuildReport(file string, header edm.HeaderRecord, findings []Diagnostic) DecodeReport {
	rep := DecodeReport{File: file, Header: header, Findings: findings}
	for _, d := range findings {
		switch d.Severity {
		case ERROR:
			rep.Summary.Errors++
		case WARN:
			rep.Summary.Warnings++
		}
	}
	rep.Summary.Total = len(findings)
	rep.Summary.Pass = rep.Summary.Errors == 0
	return rep
}
