package model

// FragmentKind names a generated block of class body text.
type FragmentKind int

const (
	FragmentGetSource FragmentKind = iota
	FragmentInitialize
	FragmentValidation
	FragmentAttribute
	FragmentSetter
	FragmentGetter
	FragmentPreserved
	FragmentFinders
	FragmentColumnMap
)

var fragmentKindNames = map[FragmentKind]string{
	FragmentGetSource:  "getSource",
	FragmentInitialize: "initialize",
	FragmentValidation: "validation",
	FragmentAttribute:  "attribute",
	FragmentSetter:     "setter",
	FragmentGetter:     "getter",
	FragmentPreserved:  "preserved",
	FragmentFinders:    "finders",
	FragmentColumnMap:  "columnMap",
}

func (k FragmentKind) String() string {
	return fragmentKindNames[k]
}

type Fragment struct {
	Kind FragmentKind
	Name string // column or method the fragment belongs to, if any
	Text string
}

// PreservedMethod is a hand-written method carried over from an existing file.
type PreservedMethod struct {
	Name      string
	Source    string // verbatim lines, doc comment included
	StartLine int
	EndLine   int
}
