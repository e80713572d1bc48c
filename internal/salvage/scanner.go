package salvage

import (
	"fmt"
	"strings"
)

// span is a class member located by line range.
type span struct {
	name  string
	start int // first line, attached doc comment included
	end   int // line of the closing brace or semicolon
}

type class struct {
	name      string
	namespace string
	methods   []span
}

// findClass locates the declaration of name and returns its methods in
// source order.
func findClass(toks []token, name string) (*class, error) {
	namespace := ""
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.is("{"):
			depth++
		case t.is("}"):
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: line %d: unbalanced braces", ErrSyntax, t.line)
			}
		case t.keyword("namespace") && depth == 0 && i+1 < len(toks) && toks[i+1].kind == tokIdent:
			namespace = strings.Trim(toks[i+1].text, `\`)
			i++
		case t.keyword("class") && declaresClass(toks, i):
			if i+1 >= len(toks) || toks[i+1].kind != tokIdent {
				continue
			}
			if !strings.EqualFold(toks[i+1].text, name) {
				continue
			}
			open := i + 2
			for open < len(toks) && !toks[open].is("{") {
				open++
			}
			if open == len(toks) {
				return nil, fmt.Errorf("%w: line %d: class %s has no body", ErrSyntax, t.line, name)
			}
			methods, err := members(toks, open)
			if err != nil {
				return nil, err
			}
			return &class{name: toks[i+1].text, namespace: namespace, methods: methods}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// declaresClass rules out Foo::class, $obj->class and new class.
func declaresClass(toks []token, i int) bool {
	if i == 0 {
		return true
	}
	prev := toks[i-1]
	return !prev.is(":") && !prev.is(">") && !prev.keyword("new")
}

// members walks a class body starting at its opening brace.
func members(toks []token, open int) ([]span, error) {
	var (
		methods []span
		stmt    = -1 // index of the first token of the current member
		doc     = 0  // line of a doc comment preceding the member
	)
	for i := open + 1; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokDoc {
			if stmt < 0 {
				doc = t.line
			}
			continue
		}
		if t.is("}") {
			return methods, nil
		}
		if stmt < 0 {
			stmt = i
		}
		switch {
		case t.keyword("function"):
			j := i + 1
			if j < len(toks) && toks[j].is("&") {
				j++
			}
			if j >= len(toks) || toks[j].kind != tokIdent {
				return nil, fmt.Errorf("%w: line %d: method without a name", ErrSyntax, t.line)
			}
			end, err := methodEnd(toks, j+1)
			if err != nil {
				return nil, err
			}
			start := toks[stmt].line
			if doc > 0 {
				start = doc
			}
			methods = append(methods, span{name: toks[j].text, start: start, end: toks[end].line})
			i, stmt, doc = end, -1, 0
		case t.is(";"):
			stmt, doc = -1, 0
		case t.is("{"):
			end, err := matchBrace(toks, i)
			if err != nil {
				return nil, err
			}
			i, stmt, doc = end, -1, 0
		}
	}
	return nil, fmt.Errorf("%w: class body is not closed", ErrSyntax)
}

// methodEnd finds the closing brace of a method body, or the semicolon
// ending an abstract or interface declaration.
func methodEnd(toks []token, from int) (int, error) {
	parens := 0
	for k := from; k < len(toks); k++ {
		switch t := toks[k]; {
		case t.is("("):
			parens++
		case t.is(")"):
			parens--
		case parens == 0 && t.is("{"):
			return matchBrace(toks, k)
		case parens == 0 && t.is(";"):
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: method is not closed", ErrSyntax)
}

func matchBrace(toks []token, open int) (int, error) {
	depth := 0
	for k := open; k < len(toks); k++ {
		switch {
		case toks[k].is("{"):
			depth++
		case toks[k].is("}"):
			depth--
			if depth == 0 {
				return k, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: line %d: unbalanced braces", ErrSyntax, toks[open].line)
}
