package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rsanders/scoped-search/internal/ir"
)

// Date notation fragments. Every date category is built from these so the
// three notations cannot drift apart between operators.
const (
	dateMMDDYYYY = `\d{1,2}/\d{1,2}/\d{4}`
	dateYYYYMMDD = `\d{8}`
	dateDatabase = `\d{4}-\d{1,2}-\d{1,2}`
)

var dateNotations = []string{dateMMDDYYYY, dateYYYYMMDD, dateDatabase}

// Term fragments for words, quoted strings and connectives.
const (
	wordStart       = `\p{L}\p{N}_.@:/`
	word            = `[` + wordStart + `][` + wordStart + `'\-]*`
	quoted          = `"[^"]*"`
	term            = `(?:` + word + `|` + quoted + `)`
	rangeConnective = ` +TO +`
	orConnective    = ` +OR +`
)

// Category names, in registry priority order.
const (
	CategoryBetweenDates             = "between_dates"
	CategoryGreaterThanOrEqualToDate = "greater_than_or_equal_to_date"
	CategoryLessThanOrEqualToDate    = "less_than_or_equal_to_date"
	CategoryGreaterThanDate          = "greater_than_date"
	CategoryLessThanDate             = "less_than_date"
	CategoryAsOfDate                 = "as_of_date"
	CategoryOrPair                   = "or_pair"
	CategoryWord                     = "word"
	CategoryQuotedString             = "quoted_string"
)

// eachDate expands form once per date notation and joins the expansions as
// alternatives ending on a word boundary.
func eachDate(form func(date string) string) string {
	alts := make([]string, len(dateNotations))
	for i, d := range dateNotations {
		alts[i] = form(d)
	}
	return `(?:` + strings.Join(alts, `|`) + `)\b`
}

func dateRange(date string) string { return date + rangeConnective + date }

func datePrefixed(prefix string) func(string) string {
	return func(date string) string { return prefix + `\s*` + date }
}

func bareDate(date string) string { return date }

// Category is one named lexical shape in the registry.
type Category struct {
	// Name identifies the category (one of the Category* constants).
	Name string

	// Operator is assigned to a token that matches during classification.
	// Empty for the literal categories (word, quoted string), which fall
	// back to like/not.
	Operator ir.Operator

	// Pattern is the scanning rule. It contains no capturing groups; the
	// registry wraps it in exactly one.
	Pattern string

	// classify is the anchored rule re-applied to a cleaned token.
	classify *regexp.Regexp
}

// Matches reports whether a whole cleaned token has this category's shape.
func (c Category) Matches(token string) bool {
	return c.classify.MatchString(token)
}

// categoryDef describes a category before compilation.
type categoryDef struct {
	name     string
	operator ir.Operator
	pattern  string
	// classifyPattern overrides the anchored scanning rule when set.
	classifyPattern string
}

// builtinCategories returns the registry in priority order.
func builtinCategories() []categoryDef {
	return []categoryDef{
		{name: CategoryBetweenDates, operator: ir.OpBetweenDates, pattern: eachDate(dateRange)},
		{name: CategoryGreaterThanOrEqualToDate, operator: ir.OpGreaterThanOrEqualToDate, pattern: eachDate(datePrefixed(`>=`))},
		{name: CategoryLessThanOrEqualToDate, operator: ir.OpLessThanOrEqualToDate, pattern: eachDate(datePrefixed(`<=`))},
		{name: CategoryGreaterThanDate, operator: ir.OpGreaterThanDate, pattern: eachDate(datePrefixed(`>`))},
		{name: CategoryLessThanDate, operator: ir.OpLessThanDate, pattern: eachDate(datePrefixed(`<`))},
		{name: CategoryAsOfDate, operator: ir.OpAsOfDate, pattern: eachDate(bareDate)},
		{
			name:     CategoryOrPair,
			operator: ir.OpOr,
			pattern:  term + orConnective + term,
			// Cleaning strips quotes, so a quoted term may now contain
			// spaces; any text on both sides of " OR " qualifies.
			classifyPattern: `(?s)^.+ OR .+$`,
		},
		{name: CategoryWord, pattern: `-?` + word},
		{name: CategoryQuotedString, pattern: `-?` + quoted},
	}
}

// classifyOrder is the order tokens are tested in during classification.
// It differs from scanning priority: the OR pair is checked first.
var classifyOrder = []string{
	CategoryOrPair,
	CategoryBetweenDates,
	CategoryGreaterThanOrEqualToDate,
	CategoryLessThanOrEqualToDate,
	CategoryGreaterThanDate,
	CategoryLessThanDate,
	CategoryAsOfDate,
}

// Registry is a compiled, immutable pattern registry.
type Registry struct {
	categories []Category
	scanner    *regexp.Regexp
	classifier []*Category
}

// defaultRegistry is built once; the patterns are compiled-in configuration.
var defaultRegistry = mustNewRegistry(builtinCategories(), classifyOrder)

func mustNewRegistry(defs []categoryDef, order []string) *Registry {
	r, err := newRegistry(defs, order)
	if err != nil {
		panic(err)
	}
	return r
}

func newRegistry(defs []categoryDef, order []string) (*Registry, error) {
	r := &Registry{categories: make([]Category, len(defs))}
	branches := make([]string, len(defs))
	byName := make(map[string]*Category, len(defs))

	for i, def := range defs {
		classifySrc := def.classifyPattern
		if classifySrc == "" {
			classifySrc = `^(?:` + def.pattern + `)$`
		}
		classify, err := regexp.Compile(classifySrc)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", def.name, err)
		}
		r.categories[i] = Category{
			Name:     def.name,
			Operator: def.operator,
			Pattern:  def.pattern,
			classify: classify,
		}
		byName[def.name] = &r.categories[i]
		branches[i] = `(` + def.pattern + `)`
	}

	scanner, err := regexp.Compile(strings.Join(branches, `|`))
	if err != nil {
		return nil, fmt.Errorf("compile scanner: %w", err)
	}
	// One group per category is how a match is traced back to its category.
	if scanner.NumSubexp() != len(defs) {
		return nil, fmt.Errorf("category patterns must not contain capturing groups: want %d groups, got %d",
			len(defs), scanner.NumSubexp())
	}
	r.scanner = scanner

	for _, name := range order {
		cat, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("classify order names unknown category %q", name)
		}
		if cat.Operator == "" {
			return nil, fmt.Errorf("category %q has no operator to classify with", name)
		}
		r.classifier = append(r.classifier, cat)
	}

	return r, nil
}

// rawMatch is one scanner hit: the captured text and the category it belongs to.
type rawMatch struct {
	category *Category
	text     string
}

// scan extracts every non-overlapping match left to right. At a given
// position the earliest declared category wins.
func (r *Registry) scan(query string) []rawMatch {
	var matches []rawMatch
	for _, loc := range r.scanner.FindAllStringSubmatchIndex(query, -1) {
		for i := range r.categories {
			start, end := loc[2*(i+1)], loc[2*(i+1)+1]
			if start >= 0 && end > start {
				matches = append(matches, rawMatch{category: &r.categories[i], text: query[start:end]})
				break
			}
		}
	}
	return matches
}

// classify returns the operator of the first classifying category the
// token matches. ok is false when the token is a plain literal.
func (r *Registry) classify(token string) (op ir.Operator, ok bool) {
	for _, cat := range r.classifier {
		if cat.Matches(token) {
			return cat.Operator, true
		}
	}
	return "", false
}

// Categories returns the built-in registry in priority order.
func Categories() []Category {
	out := make([]Category, len(defaultRegistry.categories))
	copy(out, defaultRegistry.categories)
	return out
}

// ScannerPattern returns the combined alternation used by the lexer.
func ScannerPattern() string {
	return defaultRegistry.scanner.String()
}
