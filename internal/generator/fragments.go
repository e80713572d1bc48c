package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/cmmoran/modelgen/internal/model"
	"github.com/cmmoran/modelgen/internal/salvage"
)

const (
	useEmail       = `Phalcon\Mvc\Model\Validator\Email as Email`
	useInclusionIn = `Phalcon\Mvc\Model\Validator\InclusionIn as InclusionIn`
	resultsetType  = `\Phalcon\Mvc\Model\Resultset\Simple`
)

// Output is everything the emitter needs besides the request.
type Output struct {
	Fragments  []model.Fragment
	Uses       []string // deduplicated, in order of first use
	Properties []string // class doc @property lines
}

// Generator turns a request and the inspected columns into class body fragments.
type Generator struct {
	req     *Request
	columns []model.Column

	uses    []string
	useSeen map[string]bool
}

func New(req *Request, columns []model.Column) *Generator {
	return &Generator{
		req:     req,
		columns: columns,
		useSeen: make(map[string]bool),
	}
}

// ReservedMethods returns the method names every run regenerates. A method
// with one of these names found in an existing file is dropped, not kept.
func (g *Generator) ReservedMethods() map[string]bool {
	reserved := map[string]bool{
		"getSource":  true,
		"initialize": true,
	}
	if g.req.Accessors {
		for _, c := range g.columns {
			if g.req.Excluded(c.Name) {
				continue
			}
			name := inflect.Camelize(c.Name)
			reserved["set"+name] = true
			reserved["get"+name] = true
		}
	}
	if g.req.DocMethods {
		reserved["find"] = true
		reserved["findFirst"] = true
	}
	if g.req.MapColumn {
		reserved["columnMap"] = true
	}
	return reserved
}

// Build produces the body fragments in their fixed order. salvaged may be nil.
func (g *Generator) Build(salvaged *salvage.Result) (*Output, error) {
	var (
		out = &Output{}
		add = func(kind model.FragmentKind, name, text string) {
			out.Fragments = append(out.Fragments, model.Fragment{Kind: kind, Name: name, Text: text})
		}
	)

	if g.req.Namespace != "" {
		text, err := render("getSource", g.req.Table)
		if err != nil {
			return nil, err
		}
		add(model.FragmentGetSource, "getSource", text)
	}

	text, err := g.initialize()
	if err != nil {
		return nil, err
	}
	if text != "" {
		add(model.FragmentInitialize, "initialize", text)
	}

	// rules are computed even when a hand-written validation() wins, so the
	// imports they need are still declared.
	rules, err := g.validation()
	if err != nil {
		return nil, err
	}
	if m, ok := salvaged.Method("validation"); ok {
		add(model.FragmentValidation, m.Name, preserved(m))
	} else if rules != "" {
		add(model.FragmentValidation, "validation", rules)
	}

	visibility := "public"
	if g.req.Accessors {
		visibility = "protected"
	}
	for _, c := range g.columns {
		if g.req.Excluded(c.Name) {
			continue
		}
		text, err := render("attribute", map[string]string{
			"Type":       PHPType(c.Type),
			"Visibility": visibility,
			"Name":       c.Name,
		})
		if err != nil {
			return nil, err
		}
		add(model.FragmentAttribute, c.Name, text)
	}

	if g.req.Accessors {
		if err = g.accessors(add); err != nil {
			return nil, err
		}
	}

	for _, m := range salvaged.Preserved() {
		if strings.EqualFold(m.Name, "validation") {
			continue
		}
		add(model.FragmentPreserved, m.Name, preserved(m))
	}

	if g.req.DocMethods {
		text, err := render("finders", g.req.ClassName)
		if err != nil {
			return nil, err
		}
		add(model.FragmentFinders, "find", text)
	}

	if g.req.MapColumn {
		entries := make([]string, 0, len(g.columns))
		for _, c := range g.columns {
			entries = append(entries, fmt.Sprintf("'%s' => '%s'", c.Name, c.Name))
		}
		text, err := render("columnMap", entries)
		if err != nil {
			return nil, err
		}
		add(model.FragmentColumnMap, "columnMap", text)
	}

	out.Uses = g.uses
	out.Properties = g.properties()
	return out, nil
}

// initialize renders the initialize() method, or "" when it would be empty.
func (g *Generator) initialize() (string, error) {
	var lines []string
	if g.req.SetSchema {
		lines = append(lines, fmt.Sprintf(`        $this->setSchema("%s");`, g.req.Schema))
	}
	if g.req.FileName != g.req.Table {
		lines = append(lines, fmt.Sprintf(`        $this->setSource('%s');`, g.req.Table))
	}
	for _, r := range g.req.HasMany {
		lines = append(lines, relationCall(r))
	}
	for _, r := range g.req.BelongsTo {
		lines = append(lines, relationCall(r))
	}
	if len(lines) == 0 {
		return "", nil
	}
	return render("initialize", strings.Join(lines, "\n"))
}

func preserved(m model.PreservedMethod) string {
	return "\n" + m.Source + "\n"
}

func relationCall(r model.Relation) string {
	return fmt.Sprintf(`        $this->%s('%s', '%s', '%s', %s);`,
		r.Kind, r.Fields, r.QualifiedEntity, r.ReferencedField, relationOptions(r.Options))
}

func relationOptions(opts []model.RelationOption) string {
	if len(opts) == 0 {
		return "NULL"
	}
	values := make([]string, 0, len(opts))
	for _, o := range opts {
		values = append(values, fmt.Sprintf("'%s' => %s", o.Key, o.Value.PHP()))
	}
	return "array(" + strings.Join(values, ",") + ")"
}

// validation renders the validation() method, or "" when no column needs a rule.
func (g *Generator) validation() (string, error) {
	var rules []string
	for _, c := range g.columns {
		if domain := Domain(c); len(domain) > 0 {
			quoted := make([]string, len(domain))
			for i, d := range domain {
				quoted[i] = model.Text(d).PHP()
			}
			rule, err := render("inclusionRule", map[string]string{
				"Field":  c.Name,
				"Domain": strings.Join(quoted, ", "),
			})
			if err != nil {
				return "", err
			}
			rules = append(rules, rule)
			g.use(useInclusionIn)
		}
		if c.Name == "email" {
			rule, err := render("emailRule", map[string]string{"Field": c.Name})
			if err != nil {
				return "", err
			}
			rules = append(rules, rule)
			g.use(useEmail)
		}
	}
	if len(rules) == 0 {
		return "", nil
	}
	rules = append(rules, validationGuard)
	return render("validation", strings.Join(rules, ""))
}

func (g *Generator) accessors(add func(model.FragmentKind, string, string)) error {
	var getters []model.Fragment
	for _, c := range g.columns {
		if g.req.Excluded(c.Name) {
			continue
		}
		data := map[string]string{
			"Name":   c.Name,
			"Type":   PHPType(c.Type),
			"Method": inflect.Camelize(c.Name),
		}
		setter, err := render("setter", data)
		if err != nil {
			return err
		}
		add(model.FragmentSetter, c.Name, setter)

		tmpl := "getter"
		if wrapper, ok := g.req.TypeMap[data["Type"]]; ok {
			tmpl, data["Wrapper"] = "wrappedGetter", wrapper
		}
		getter, err := render(tmpl, data)
		if err != nil {
			return err
		}
		getters = append(getters, model.Fragment{Kind: model.FragmentGetter, Name: c.Name, Text: getter})
	}
	for _, f := range getters {
		add(f.Kind, f.Name, f.Text)
	}
	return nil
}

// properties lists the virtual properties relations add to the class.
func (g *Generator) properties() []string {
	var lines []string
	for _, r := range g.req.HasMany {
		lines = append(lines, resultsetType+" $"+r.Entity)
	}
	for _, r := range g.req.BelongsTo {
		typ := r.Entity
		if g.req.DerivedNamespace != "" {
			typ = `\` + g.req.DerivedNamespace + `\` + r.Entity
		}
		lines = append(lines, typ+" $"+r.Entity)
	}
	return lines
}

func (g *Generator) use(decl string) {
	if g.useSeen[decl] {
		return
	}
	g.useSeen[decl] = true
	g.uses = append(g.uses, decl)
}

var domainList = regexp.MustCompile(`\((.*)\)`)

// Domain returns the allowed values of a char column whose type annotation
// carries a quoted list, as in enum('active','inactive'). A length such as
// char(2) is not a domain.
func Domain(c model.Column) []string {
	if c.Type != model.ColumnChar {
		return nil
	}
	m := domainList.FindStringSubmatch(c.Annotation)
	if m == nil {
		return nil
	}
	return quotedList(m[1])
}

// quotedList parses 'a', "b", 'it''s' into its values. Commas inside quotes
// belong to the value. Anything other than a quoted literal fails the list.
func quotedList(s string) []string {
	var values []string
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i == len(s) || (s[i] != '\'' && s[i] != '"') {
			return nil
		}
		q := s[i]
		i++
		var v strings.Builder
		for {
			if i == len(s) {
				return nil
			}
			if s[i] == '\\' && i+1 < len(s) {
				v.WriteByte(s[i+1])
				i += 2
				continue
			}
			if s[i] == q {
				if i+1 < len(s) && s[i+1] == q {
					v.WriteByte(q)
					i += 2
					continue
				}
				i++
				break
			}
			v.WriteByte(s[i])
			i++
		}
		values = append(values, v.String())

		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i == len(s) {
			return values
		}
		if s[i] != ',' {
			return nil
		}
		i++
	}
}
