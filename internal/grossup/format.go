package grossup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/output"
)

// TableFormatter formats gross-up results for the console
type TableFormatter struct{}

// Format generates a console report
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("GROSS-UP RESULTS\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	sb.WriteString(fmt.Sprintf("Status:      %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:  %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Info:        %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("TARGET NET MATCH\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Target Net:      %s\n", output.FormatCurrency(result.Request.TargetNet)))
	sb.WriteString(fmt.Sprintf("Required Gross:  %s\n", output.FormatCurrency(result.GrossIncome)))
	sb.WriteString(fmt.Sprintf("Achieved Net:    %s\n", output.FormatCurrency(result.Tax.NetIncome)))
	sb.WriteString(fmt.Sprintf("Overshoot:       %s\n", output.FormatCurrency(result.Overshoot)))
	sb.WriteString("\n")

	sb.WriteString("WITHHOLDING\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("ISR:             %s\n", output.FormatCurrency(result.Tax.TotalISR)))
	sb.WriteString(fmt.Sprintf("IMSS:            %s\n", output.FormatCurrency(result.Tax.Contribution)))
	sb.WriteString(fmt.Sprintf("Subsidy:         %s\n", output.FormatCurrency(result.Tax.Subsidy)))
	sb.WriteString(fmt.Sprintf("Effective Rate:  %s\n", output.FormatRate(result.Tax.EffectiveRate)))

	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}

	return string(data) + "\n", nil
}
