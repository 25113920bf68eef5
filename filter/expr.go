package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/jiralink/jira"
)

// DefaultCacheSize is the number of compiled expressions kept by default
const DefaultCacheSize = 64

// Filter is a compiled boolean expression over projects or versions
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache sets the size of the compiled expression cache. Zero disables it.
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		} else {
			c.cache = nil
		}
	}
}

// WithCustomFunctions adds helper functions available to every expression
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler compiles expressions into reusable filters
type Compiler struct {
	helpers map[string]any
	cache   *lruCache
}

// NewCompiler creates a compiler with the built-in helpers and an LRU of
// compiled programs
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helpers: helperFunctions(),
		cache:   newLRUCache(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler()

// Compile compiles expression with the default compiler
func Compile(expression string) (*Filter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(), // entity fields are bound at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helpers,
	}

	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// EvalProject evaluates the filter against a project
func (f *Filter) EvalProject(p jira.Project) (bool, error) {
	env := f.environment()
	env["Project"] = p
	env["Key"] = p.Key
	env["Name"] = p.Name
	env["Lead"] = p.LeadName()
	env["Type"] = p.ProjectTypeKey
	env["Archived"] = p.Archived
	env["Category"] = ""
	if p.Category != nil {
		env["Category"] = p.Category.Name
	}

	return f.run(env, "project "+p.Key)
}

// MatchProject reports whether p matches. Evaluation errors do not match.
func (f *Filter) MatchProject(p jira.Project) bool {
	ok, err := f.EvalProject(p)
	return err == nil && ok
}

// EvalVersion evaluates the filter against a version
func (f *Filter) EvalVersion(v jira.Version) (bool, error) {
	env := f.environment()
	env["Version"] = v
	env["Name"] = v.Name
	env["ProjectKey"] = v.ProjectKey
	env["Released"] = v.Released
	env["Archived"] = v.Archived
	env["Overdue"] = v.Overdue
	env["Description"] = v.Description

	release, hasRelease := v.ReleaseTime()
	start, _ := v.StartTime()
	env["ReleaseDate"] = release
	env["StartDate"] = start
	env["hasReleaseDate"] = func() bool { return hasRelease }
	env["newerThan"] = newerThanFunc(v.Name)

	return f.run(env, "version "+v.Name)
}

// MatchVersion reports whether v matches. Evaluation errors do not match.
func (f *Filter) MatchVersion(v jira.Version) bool {
	ok, err := f.EvalVersion(v)
	return err == nil && ok
}

func (f *Filter) environment() map[string]any {
	env := make(map[string]any, len(f.helpers)+16)
	maps.Copy(env, f.helpers)
	return env
}

func (f *Filter) run(env map[string]any, subject string) (bool, error) {
	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Subject: subject, Err: err}
	}
	// AsBool guarantees the result type
	return result.(bool), nil
}

// helperFunctions returns the helpers shared by every expression
func helperFunctions() map[string]any {
	return map[string]any{
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return time.Now().AddDate(0, -months, 0)
		},
		"parseDate": func(s string) time.Time {
			t, _ := time.Parse(jira.DateLayout, s)
			return t
		},
		// case-insensitive variants of the contains/startsWith/endsWith operators
		"containsFold": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefixFold": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffixFold": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   time.Now,
	}
}

// newerThanFunc compares a version name against another semantic version.
// Names that do not parse are never newer.
func newerThanFunc(name string) func(string) bool {
	current, err := semver.ParseTolerant(name)
	return func(other string) bool {
		if err != nil {
			return false
		}
		target, perr := semver.ParseTolerant(other)
		if perr != nil {
			return false
		}
		return current.GT(target)
	}
}
