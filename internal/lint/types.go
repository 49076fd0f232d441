package lint

import "sort"

// Severity ranks a finding. Errors fail a build; warnings only fail it when
// the checker runs in strict mode.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding reports a single content problem discovered by a rule.
type Finding struct {
	// Rule is the stable identifier of the rule that produced the finding.
	Rule     string
	Severity Severity
	// Path is the source file the finding applies to.
	Path string
	Slug string
	// Field names the front matter key at fault when the rule targets one.
	Field   string
	Message string
}

// Report aggregates the findings of a lint run.
type Report struct {
	FilesChecked int
	Findings     []Finding
}

// Errors returns only the error-severity findings.
func (r *Report) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns only the warning-severity findings.
func (r *Report) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

// HasErrors reports whether any error-severity finding exists.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Failed reports whether the run should fail the caller. Warnings count when
// strict is set.
func (r *Report) Failed(strict bool) bool {
	if r.HasErrors() {
		return true
	}
	return strict && len(r.Warnings()) > 0
}

func (r *Report) filter(severity Severity) []Finding {
	out := []Finding{}
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// sortFindings keeps output deterministic: by path, then rule, then field.
func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Field < b.Field
	})
}
