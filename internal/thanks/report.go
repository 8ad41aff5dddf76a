package thanks

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

const (
	windowsOperatingSystemConstant         = "windows"
	starMarkerConstant                     = "★"
	windowsStarMarkerConstant              = "*"
	loveMarkerConstant                     = "💖"
	windowsLoveMarkerConstant              = "<3"
	nothingToStarMessageConstant           = "You already starred all your GitHub dependencies."
	starsSentHeaderConstant                = "Stars sent to:"
	starsWouldBeSentHeaderConstant         = "Stars would be sent to:"
	starredLineTemplateConstant            = " %s %s - %s"
	alreadyStarredSuffixConstant           = " (already starred)"
	summaryTemplateConstant                = "%d newly starred, %d already starred, %d failed"
	dryRunSummaryTemplateConstant          = "%d to star, %d already starred, %d failed"
	unconfirmedHeaderConstant              = "Stars were sent but not confirmed for:"
	unconfirmedLineTemplateConstant        = " ? %s - %s"
	failuresHeaderConstant                 = "Some repositories could not be starred, please update your dependencies and try again:"
	failureLineTemplateConstant            = " * %s - %s"
	closingAcknowledgementTemplateConstant = "Thanks to you! %s"
	closingContributionMessageConstant     = "Please consider contributing back in any way if you can!"
	reportLineSeparatorConstant            = "\n"
)

// ReportFormatter renders a ReconciliationResult as console lines.
type ReportFormatter struct {
	starMarker string
	loveMarker string
}

// NewReportFormatter selects markers for the running platform.
func NewReportFormatter() ReportFormatter {
	return NewReportFormatterForPlatform(runtime.GOOS)
}

// NewReportFormatterForPlatform selects markers for the named GOOS; Windows consoles get ASCII markers.
func NewReportFormatterForPlatform(operatingSystem string) ReportFormatter {
	if operatingSystem == windowsOperatingSystemConstant {
		return ReportFormatter{starMarker: windowsStarMarkerConstant, loveMarker: windowsLoveMarkerConstant}
	}
	return ReportFormatter{starMarker: starMarkerConstant, loveMarker: loveMarkerConstant}
}

// Lines renders the report without touching the result.
func (formatter ReportFormatter) Lines(result ReconciliationResult) []string {
	lines := make([]string, 0, len(result.Starred)+len(result.Unconfirmed)+len(result.Failures)+8)

	if result.PendingCount == 0 {
		lines = append(lines, nothingToStarMessageConstant)
	} else {
		header := starsSentHeaderConstant
		if result.DryRun {
			header = starsWouldBeSentHeaderConstant
		}
		lines = append(lines, header)
		for _, starredRepository := range result.Starred {
			line := fmt.Sprintf(starredLineTemplateConstant, formatter.starMarker, starredRepository.LogicalKey, starredRepository.URL)
			if !starredRepository.NewlyStarred {
				line += alreadyStarredSuffixConstant
			}
			lines = append(lines, line)
		}

		if len(result.Unconfirmed) > 0 {
			lines = append(lines, "", unconfirmedHeaderConstant)
			for _, unconfirmedRepository := range result.Unconfirmed {
				lines = append(lines, fmt.Sprintf(unconfirmedLineTemplateConstant, unconfirmedRepository.LogicalKey, unconfirmedRepository.URL))
			}
		}

		summaryTemplate := summaryTemplateConstant
		if result.DryRun {
			summaryTemplate = dryRunSummaryTemplateConstant
		}
		lines = append(lines, "", fmt.Sprintf(summaryTemplate, result.NewlyStarredCount(), result.AlreadyStarredCount, len(result.Failures)))
	}

	if len(result.Failures) > 0 {
		lines = append(lines, "", failuresHeaderConstant)
		for _, failure := range result.Failures {
			lines = append(lines, fmt.Sprintf(failureLineTemplateConstant, failure.URL, failure.Message))
		}
	}

	lines = append(lines, "", fmt.Sprintf(closingAcknowledgementTemplateConstant, formatter.loveMarker), closingContributionMessageConstant)
	return lines
}

// Render writes the report lines to the writer.
func (formatter ReportFormatter) Render(writer io.Writer, result ReconciliationResult) error {
	_, writeError := io.WriteString(writer, strings.Join(formatter.Lines(result), reportLineSeparatorConstant)+reportLineSeparatorConstant)
	return writeError
}
