package compliance

import (
	"strings"
	"time"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
)

// The service reports rule statuses with inconsistent casing across API
// versions ("PASSED", "passed", "Passed"). They are canonicalized here, once.

type rawRule struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type rawReport struct {
	Guidelines           []rawRule `json:"guidelines"`
	TotalRules           int       `json:"totalRules"`
	CompliantRules       int       `json:"compliantRules"`
	CompliancePercentage float64   `json:"compliancePercentage"`
	IsCompliant          bool      `json:"isCompliant"`
	LastExecuted         time.Time `json:"lastExecuted"`
}

func (r rawReport) normalize() domain.ComplianceReport {
	report := domain.ComplianceReport{
		Guidelines:           make([]domain.RuleResult, 0, len(r.Guidelines)),
		TotalRules:           r.TotalRules,
		CompliantRules:       r.CompliantRules,
		CompliancePercentage: r.CompliancePercentage,
		IsCompliant:          r.IsCompliant,
		LastExecuted:         r.LastExecuted,
	}

	for _, rule := range r.Guidelines {
		report.Guidelines = append(report.Guidelines, domain.RuleResult{
			RuleID:   rule.RuleID,
			RuleName: rule.RuleName,
			Category: rule.Category,
			Severity: rule.Severity,
			Status:   normalizeStatus(rule.Status),
			Message:  rule.Message,
		})
	}

	if report.TotalRules == 0 {
		report.TotalRules = len(report.Guidelines)
	}
	if report.CompliantRules == 0 && len(report.Guidelines) > 0 {
		for _, g := range report.Guidelines {
			if g.Status == domain.RulePassed || g.Status == domain.RuleNotApplicable {
				report.CompliantRules++
			}
		}
	}
	if report.CompliancePercentage == 0 && report.TotalRules > 0 {
		report.CompliancePercentage = float64(report.CompliantRules) / float64(report.TotalRules) * 100
	}

	return report
}

func normalizeStatus(s string) domain.RuleStatus {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), " ", "")) {
	case "passed", "pass", "ok", "compliant":
		return domain.RulePassed
	case "failed", "fail", "noncompliant":
		return domain.RuleFailed
	case "warning", "warn":
		return domain.RuleWarning
	case "notapplicable", "na", "skipped":
		return domain.RuleNotApplicable
	}
	// Unknown statuses count against compliance rather than silently passing.
	return domain.RuleFailed
}
