package dump

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// ToSARIF renders d as a single-run SARIF 2.1.0 report with one rule and one
// result (the crash reason) and a synthetic artifact location derived from
// function_called, grounded on the teacher's SARIFFormatter so a mantle
// crash can be consumed by the same CI tooling that consumes other
// sarif.Report producers.
func ToSARIF(d *Dump, engineVersion string, w io.Writer) error {
	report := sarif.NewReport()
	run := sarif.NewRunWithInformationURI("Mantle", "https://github.com/mantle-dev/mantle")
	run.Tool.Driver.Version = &engineVersion

	reasonText := d.Reason.String()
	rule := sarif.NewReportingDescriptor().WithID(string(d.Reason.Kind))
	rule.WithName("GuestFault")
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &reasonText})
	run.Tool.Driver.AddRule(rule)

	result := sarif.NewRuleResult(string(d.Reason.Kind))
	result.Level = sarifLevel(d.Reason.Kind)
	result.Kind = "fail"
	summary := d.Summary()
	result.Message = sarif.NewTextMessage(summary)

	uri := fmt.Sprintf("wasm://%s", d.FunctionCalled)
	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().WithArtifactLocation(
			sarif.NewArtifactLocation().WithURI(uri),
		),
	)
	result.Locations = []*sarif.Location{location}

	props := sarif.NewPropertyBag()
	props.Add("fuel_remaining", d.FuelRemaining)
	props.Add("fuel_allocated", d.FuelAllocated)
	props.Add("execution_time_us", d.ExecutionTimeUS)
	result.WithProperties(props)

	run.AddResult(result)
	report.AddRun(run)

	if err := report.Write(w); err != nil {
		return fmt.Errorf("write sarif report: %w", err)
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func sarifLevel(kind ReasonKind) string {
	switch kind {
	case ReasonFuelExhausted, ReasonTimeout:
		return "warning"
	default:
		return "error"
	}
}
