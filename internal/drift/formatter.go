package drift

import (
	"fmt"
	"strings"
)

const reportRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"

// FormatReport formats drift results for user display
func FormatReport(results []DriftResult) string {
	var sb strings.Builder
	sb.Grow(1024 + len(results)*256)

	sb.WriteString("\n" + reportRule)
	sb.WriteString("CARVEL TOOLS\n")
	sb.WriteString(reportRule + "\n")

	counts := make(map[DriftType]int)
	for _, r := range results {
		counts[r.DriftType]++
	}

	for _, r := range results {
		if r.DriftType == DriftOK {
			continue
		}
		sb.WriteString(formatDriftEntry(r))
		sb.WriteString("\n")
	}

	okCount := counts[DriftOK]
	if okCount > 0 {
		sb.WriteString(fmt.Sprintf("[OK] ✓\n  %d tools match\n\n", okCount))
	}

	sb.WriteString(reportRule)

	totalDrifts := len(results) - okCount
	if totalDrifts == 0 {
		sb.WriteString("SUMMARY: No drifts detected ✓\n")
	} else {
		sb.WriteString(fmt.Sprintf("SUMMARY: %d drifts detected\n", totalDrifts))

		var parts []string
		for _, d := range []struct {
			kind  DriftType
			label string
		}{
			{DriftExternalOverride, "external override"},
			{DriftVersionMismatch, "version mismatch"},
			{DriftMissing, "missing"},
			{DriftManagedButNotActive, "installed but not on PATH"},
			{DriftVersionUnknown, "version unknown"},
		} {
			if counts[d.kind] > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", counts[d.kind], d.label))
			}
		}
		sb.WriteString("  " + strings.Join(parts, ", ") + "\n")
	}

	sb.WriteString(reportRule)

	return sb.String()
}

// expected renders the expected version, which may be unpinned.
func expected(r DriftResult) string {
	if r.ExpectedVersion == "" {
		return "latest"
	}
	return r.ExpectedVersion
}

// formatDriftEntry formats a single drift entry
func formatDriftEntry(r DriftResult) string {
	var sb strings.Builder
	sb.Grow(512)

	switch r.DriftType {
	case DriftExternalOverride:
		sb.WriteString("[EXTERNAL OVERRIDE] ⚠️\n")
		sb.WriteString(fmt.Sprintf("  %s\n", r.Tool))
		sb.WriteString(fmt.Sprintf("    Expected:  %s in %s\n", expected(r), r.ExpectedDir))
		sb.WriteString(fmt.Sprintf("    Active:    %s at %s\n", orUnknown(r.ActiveVersion), r.ActivePath))
		sb.WriteString("    → Another installation comes first on PATH\n")

	case DriftVersionMismatch:
		sb.WriteString("[VERSION MISMATCH]\n")
		sb.WriteString(fmt.Sprintf("  %s\n", r.Tool))
		sb.WriteString(fmt.Sprintf("    Expected:  %s\n", expected(r)))
		sb.WriteString(fmt.Sprintf("    Active:    %s at %s\n", r.ActiveVersion, r.ActivePath))

	case DriftMissing:
		sb.WriteString("[MISSING]\n")
		sb.WriteString(fmt.Sprintf("  %s\n", r.Tool))
		sb.WriteString(fmt.Sprintf("    Expected:  %s\n", expected(r)))
		sb.WriteString("    Active:    (not found on PATH)\n")

	case DriftManagedButNotActive:
		sb.WriteString("[INSTALLED BUT NOT ON PATH]\n")
		sb.WriteString(fmt.Sprintf("  %s\n", r.Tool))
		sb.WriteString(fmt.Sprintf("    Installed: %s\n", r.ExpectedDir))
		sb.WriteString("    Active:    (not found on PATH)\n")
		sb.WriteString("    → Activate the install directory in your shell\n")

	case DriftVersionUnknown:
		sb.WriteString("[VERSION UNKNOWN]\n")
		sb.WriteString(fmt.Sprintf("  %s\n", r.Tool))
		sb.WriteString(fmt.Sprintf("    Expected:  %s\n", expected(r)))
		sb.WriteString(fmt.Sprintf("    Active:    (version unknown) at %s\n", r.ActivePath))
	}

	return sb.String()
}

func orUnknown(v string) string {
	if v == "" {
		return "(version unknown)"
	}
	return v
}
