// Command seeder writes a small sample workbook and lexicon for trying
// reqtrace without real project data.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/reqtrace/rules"
	"github.com/poiesic/reqtrace/workbook"
)

var (
	outDir     = flag.String("out", "samples", "directory for the generated files")
	childSheet = flag.String("child-sheet", "Combined URs", "sheet name for child requirements")
	parentName = flag.String("parent-sheet", "Canonical_User_Needs", "sheet name for parent requirements")
)

// Legacy product requirements.
var children = [][]string{
	{"REQ-001", "The user shall be able to view ECG waveform in real-time on the monitor display"},
	{"REQ-002", "The monitor shall display SpO2 values with 1% resolution"},
	{"REQ-003", "Alarm limits for heart rate shall be configurable by the clinical user"},
	{"REQ-004", "The system shall support NIBP measurements in both manual and automatic modes"},
	{"REQ-005", "Battery backup shall provide at least 2 hours of operation"},
	{"REQ-006", "The monitor shall be MRI conditional for use in Zone 3"},
	{"REQ-007", "Temperature probe readings shall be displayed in Celsius or Fahrenheit"},
	{"REQ-008", "The user shall be able to pair the monitor with a remote display via wireless connection"},
}

// Canonical user needs: ID, title, text.
var parents = [][]string{
	{"CUN-ECG-001", "ECG Monitoring", "As a clinical user, the monitor shall display electrocardiogram signals continuously with QRS detection"},
	{"CUN-SPO2-001", "SpO2 Monitoring", "The monitor shall measure and display oxygen saturation with perfusion index"},
	{"CUN-ALM-001", "Alarm Management", "The user shall configure alarm thresholds and acknowledge alarms per IEC 60601-1-8"},
	{"CUN-NIBP-001", "NIBP Measurement", "The system shall measure non-invasive blood pressure using oscillometric cuff method"},
	{"CUN-PWR-001", "Power Management", "The monitor shall operate on AC power or battery with charge indication"},
	{"CUN-MRI-001", "MRI Safety", "The device shall be safe for use in MRI environments up to Zone 3 at 1.5T"},
	{"CUN-TEMP-001", "Temperature Monitoring", "The monitor shall measure patient temperature via probe with 0.1°C resolution"},
	{"CUN-CONN-001", "Wireless Connectivity", "The monitor shall support wireless pairing with PIC iX module for remote monitoring"},
}

func sampleLexicon() *rules.Lexicon {
	return rules.NewLexicon().
		Add("ECG", "ecg", "electrocardiogram", "qrs", "waveform").
		Add("SPO2", "spo2", "oxygen", "saturation", "perfusion").
		Add("ALARM", "alarm", "alarms", "limits", "thresholds").
		Add("NIBP", "nibp", "cuff", "oscillometric", "pressure").
		Add("POWER", "battery", "power", "charge").
		Add("MRI", "mri", "zone").
		Add("TEMP", "temperature", "celsius", "fahrenheit", "probe").
		Add("WIRELESS", "wireless", "pair", "pairing", "remote")
}

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}

	child := &workbook.Table{
		Name:   *childSheet,
		Header: []string{"Requirement ID", "Description"},
		Rows:   children,
	}
	parent := &workbook.Table{
		Name:   *parentName,
		Header: []string{"new_doors_id", "Title", "User Requirement"},
		Rows:   parents,
	}
	bookPath := filepath.Join(*outDir, "sample_requirements.xlsx")
	if err := workbook.WriteTables(bookPath, child, parent); err != nil {
		panic(err)
	}
	slog.Info("wrote sample workbook", "path", bookPath, "children", len(children), "parents", len(parents))

	lexPath := filepath.Join(*outDir, "domain_lexicon.json")
	if err := writeLexicon(lexPath, sampleLexicon()); err != nil {
		panic(err)
	}
	slog.Info("wrote sample lexicon", "path", lexPath)
}

func writeLexicon(path string, lex *rules.Lexicon) error {
	data, err := json.MarshalIndent(lex, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
