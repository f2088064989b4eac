package report

import (
	"encoding/json"
	"os"

	"example.com/edmgate/internal/diag"
)

func SaveReportJSON(rep diag.DecodeReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadReportJSON(path string) (diag.DecodeReport, error) {
	var rep diag.DecodeReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
