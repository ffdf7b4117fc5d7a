package invariant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongFunctionChecker_FlagsOverThreshold(t *testing.T) {
	c := &longFunctionChecker{threshold: 3}
	body := strings.Join(make([]string, 10), "\n")
	content := "def bloated():\n" + body + "\ndef short():\n    pass\n"

	violations := c.Check("m.py", []byte(content))
	assert.Len(t, violations, 1)
	assert.Equal(t, SeverityMedium, violations[0].Severity)
}

func TestLongFunctionChecker_NoViolationUnderThreshold(t *testing.T) {
	c := &longFunctionChecker{threshold: 50}
	content := "def small():\n    return 1\n"
	assert.Empty(t, c.Check("m.py", []byte(content)))
}

func TestGodObjectChecker_FlagsOverThreshold(t *testing.T) {
	c := &godObjectChecker{threshold: 2}
	content := "class Big:\n" +
		"    def a(self): pass\n" +
		"    def b(self): pass\n" +
		"    def c(self): pass\n"

	violations := c.Check("m.py", []byte(content))
	assert.Len(t, violations, 1)
	assert.Equal(t, SeverityMedium, violations[0].Severity)
}

func TestGodObjectChecker_NoViolationUnderThreshold(t *testing.T) {
	c := &godObjectChecker{threshold: 10}
	content := "class Small:\n    def a(self): pass\n"
	assert.Empty(t, c.Check("m.py", []byte(content)))
}

func TestGodObjectChecker_TracksMultipleClassesIndependently(t *testing.T) {
	c := &godObjectChecker{threshold: 1}
	content := "class A:\n    def a(self): pass\n" +
		"class B:\n    def a(self): pass\n    def b(self): pass\n"

	violations := c.Check("m.py", []byte(content))
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0].Detail, "B")
}

func TestTodoMarkerChecker_FindsMarkers(t *testing.T) {
	c := &todoMarkerChecker{}
	content := "x = 1\n# TODO: fix this\ny = 2\n"
	violations := c.Check("m.py", []byte(content))
	assert.Len(t, violations, 1)
	assert.Equal(t, SeverityLow, violations[0].Severity)
}

func TestRunAll_CombinesCheckers(t *testing.T) {
	content := "# FIXME: refactor\ndef f():\n    pass\n"
	violations := RunAll(DefaultCheckers(), "m.py", []byte(content))
	assert.NotEmpty(t, violations)
}
