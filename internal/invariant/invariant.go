// Package invariant implements the small rule set run at ingest time
// that produces Invariant nodes and CONSTRAINS edges, supplementing
// spec.md's distillation per SPEC_FULL.md §12 item 3. Grounded on
// original_source/palace/ingest/invariants/checkers/code_quality.py's
// BaseInvariantChecker contract.
package invariant

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity mirrors the fixed severity set from spec.md §3.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Violation is one rule violation detected for an artifact.
type Violation struct {
	RuleName string
	Severity Severity
	Detail   string
}

// Checker is the capability a rule implements, mirroring
// BaseInvariantChecker.check's (file_path, content, ...) contract.
type Checker interface {
	RuleName() string
	Severity() Severity
	Check(path string, content []byte) []Violation
}

// DefaultCheckers returns the rule set this module ships: a long
// function detector (kept from the original's LongFunctionChecker), a
// TODO-marker rule, and a god-object detector (kept from the
// original's GodObjectChecker), per SPEC_FULL.md §12 item 3.
func DefaultCheckers() []Checker {
	return []Checker{
		&longFunctionChecker{threshold: 50},
		&godObjectChecker{threshold: 10},
		&todoMarkerChecker{},
	}
}

var functionStartPattern = regexp.MustCompile(`^\s*(def|func|function)\s+\w+`)

// longFunctionChecker flags functions exceeding a line-count threshold,
// ported from LongFunctionChecker's scan-by-regex approach rather than
// a structural AST walk, matching the original's own approximation.
type longFunctionChecker struct {
	threshold int
}

func (c *longFunctionChecker) RuleName() string { return "long_function" }
func (c *longFunctionChecker) Severity() Severity { return SeverityMedium }

func (c *longFunctionChecker) Check(path string, content []byte) []Violation {
	lines := strings.Split(string(content), "\n")

	var violations []Violation
	start := -1
	var name string

	flush := func(end int) {
		if start < 0 {
			return
		}
		length := end - start
		if length > c.threshold {
			violations = append(violations, Violation{
				RuleName: c.RuleName(),
				Severity: c.Severity(),
				Detail:   fmt.Sprintf("%s: function near line %d spans %d lines (threshold %d)", name, start+1, length, c.threshold),
			})
		}
	}

	for i, line := range lines {
		if functionStartPattern.MatchString(line) {
			flush(i)
			start = i
			name = strings.TrimSpace(line)
		}
	}
	flush(len(lines))

	return violations
}

var (
	classStartPattern  = regexp.MustCompile(`^\s*(class|type)\s+(\w+)`)
	methodStartPattern = regexp.MustCompile(`^\s+(def|func)\s+\w+`)
)

// godObjectChecker flags classes with more methods than threshold, a
// textual approximation of GodObjectChecker's symbol-table grouping:
// it counts indented method-start lines between one class header and
// the next, rather than walking a parsed symbol list.
type godObjectChecker struct {
	threshold int
}

func (c *godObjectChecker) RuleName() string   { return "god_object" }
func (c *godObjectChecker) Severity() Severity { return SeverityMedium }

func (c *godObjectChecker) Check(path string, content []byte) []Violation {
	lines := strings.Split(string(content), "\n")

	var violations []Violation
	className := ""
	classLine := -1
	methodCount := 0

	flush := func() {
		if className != "" && methodCount > c.threshold {
			violations = append(violations, Violation{
				RuleName: c.RuleName(),
				Severity: c.Severity(),
				Detail:   fmt.Sprintf("class %s near line %d has %d methods (threshold %d)", className, classLine+1, methodCount, c.threshold),
			})
		}
	}

	for i, line := range lines {
		if m := classStartPattern.FindStringSubmatch(line); m != nil {
			flush()
			className = m[2]
			classLine = i
			methodCount = 0
			continue
		}
		if className != "" && methodStartPattern.MatchString(line) {
			methodCount++
		}
	}
	flush()

	return violations
}

var todoPattern = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)

// todoMarkerChecker flags unresolved TODO/FIXME markers, a LOW-severity
// signal in the same checker shape as longFunctionChecker.
type todoMarkerChecker struct{}

func (c *todoMarkerChecker) RuleName() string   { return "todo_marker" }
func (c *todoMarkerChecker) Severity() Severity { return SeverityLow }

func (c *todoMarkerChecker) Check(path string, content []byte) []Violation {
	var violations []Violation
	for i, line := range strings.Split(string(content), "\n") {
		if todoPattern.MatchString(line) {
			violations = append(violations, Violation{
				RuleName: c.RuleName(),
				Severity: c.Severity(),
				Detail:   fmt.Sprintf("line %d: %s", i+1, strings.TrimSpace(line)),
			})
		}
	}
	return violations
}

// RunAll runs every checker against (path, content) and returns the
// combined violation set.
func RunAll(checkers []Checker, path string, content []byte) []Violation {
	var all []Violation
	for _, c := range checkers {
		all = append(all, c.Check(path, content)...)
	}
	return all
}
