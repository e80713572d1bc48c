package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Every body fragment starts with a newline, so concatenated fragments are
// separated by one blank line.

const getSourceTemplate = `
    public function getSource()
    {
        return '{{.}}';
    }
`

const initializeTemplate = `
    /**
     * Initialize method for model.
     */
    public function initialize()
    {
{{.}}
    }
`

const validationTemplate = `
    /**
     * Validations and business logic
     */
    public function validation()
    {
{{.}}
    }
`

const inclusionRuleTemplate = `
        $this->validate(
            new InclusionIn(
                array(
                    'field'    => '{{.Field}}',
                    'domain'   => array({{.Domain}}),
                    'required' => true,
                )
            )
        );`

const emailRuleTemplate = `
        $this->validate(
            new Email(
                array(
                    'field'    => '{{.Field}}',
                    'required' => true,
                )
            )
        );`

const validationGuard = `
        if ($this->validationHasFailed() == true) {
            return false;
        }`

const attributeTemplate = `
    /**
     *
     * @var {{.Type}}
     */
    {{.Visibility}} ${{.Name}};
`

const setterTemplate = `
    /**
     * Method to set the value of field {{.Name}}
     *
     * @param {{.Type}} ${{.Name}}
     * @return $this
     */
    public function set{{.Method}}(${{.Name}})
    {
        $this->{{.Name}} = ${{.Name}};

        return $this;
    }
`

const getterTemplate = `
    /**
     * Returns the value of field {{.Name}}
     *
     * @return {{.Type}}
     */
    public function get{{.Method}}()
    {
        return $this->{{.Name}};
    }
`

const wrappedGetterTemplate = `
    /**
     * Returns the value of field {{.Name}}
     *
     * @return {{.Wrapper}}
     */
    public function get{{.Method}}()
    {
        if ($this->{{.Name}} !== null) {
            return new {{.Wrapper}}($this->{{.Name}});
        } else {
            return null;
        }
    }
`

const findersTemplate = `
    /**
     * @return {{.}}[]
     */
    public static function find($parameters = array())
    {
        return parent::find($parameters);
    }

    /**
     * @return {{.}}
     */
    public static function findFirst($parameters = array())
    {
        return parent::findFirst($parameters);
    }
`

const columnMapTemplate = `
    /**
     * Independent Column Mapping.
     */
    public function columnMap()
    {
        return array(
            {{join . ",\n            "}}
        );
    }
`

const fileTemplate = `<?php

{{with .License}}{{.}}

{{end}}{{with .Namespace}}namespace {{.}};

{{end}}{{with .Uses}}{{range .}}use {{.}};
{{end}}
{{end}}{{with .Properties}}/**
 * Class {{$.ClassName}}
{{with $.Namespace}} * @package {{.}}
{{end}} *
{{range .}} * @property {{.}}
{{end}} */
{{end}}class {{.ClassName}} extends {{.Extends}}
{
{{.Body}}
}
`

var templates = func() *template.Template {
	t := template.New("php").Funcs(template.FuncMap{
		"join": strings.Join,
	})
	for name, text := range map[string]string{
		"getSource":     getSourceTemplate,
		"initialize":    initializeTemplate,
		"validation":    validationTemplate,
		"inclusionRule": inclusionRuleTemplate,
		"emailRule":     emailRuleTemplate,
		"attribute":     attributeTemplate,
		"setter":        setterTemplate,
		"getter":        getterTemplate,
		"wrappedGetter": wrappedGetterTemplate,
		"finders":       findersTemplate,
		"columnMap":     columnMapTemplate,
		"file":          fileTemplate,
	} {
		template.Must(t.New(name).Parse(text))
	}
	return t
}()

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
