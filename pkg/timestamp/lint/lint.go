// Package lint statically checks timestamp markers in Go source.
//
// A creation marker must sit on a plain column: never on a gorm association
// (a field with foreignKey, references, many2many or polymorphic settings, or
// whose type is a struct, slice or map of related records).
//
// An entity declaring its own CreateTime and UpdateTime fields, both marked or
// both unmarked, is reported too: it should embed a shared Timestamps struct.
// Unmarked, the fields are never stamped.
package lint

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm/schema"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// Finding is one misplaced or malformed marker.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Struct  string `json:"struct"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: %s.%s: %s", f.File, f.Line, f.Struct, f.Field, f.Message)
}

// Report is the result of checking a directory tree.
type Report struct {
	Files    int       `json:"files"`
	Findings []Finding `json:"findings"`
}

var associationSettings = []string{"FOREIGNKEY", "REFERENCES", "MANY2MANY", "POLYMORPHIC"}

const (
	createTimeField = "CreateTime"
	updateTimeField = "UpdateTime"
)

// CheckDir checks every non-test Go file under rootDir. Directories named
// vendor, testdata or starting with "." or "_" are skipped, as the go tool does.
func CheckDir(rootDir string) (*Report, error) {
	packages := make(map[string][]string)
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != rootDir && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			dir := filepath.Dir(path)
			packages[dir] = append(packages[dir], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootDir, err)
	}

	report := &Report{Findings: []Finding{}}
	dirs := make([]string, 0, len(packages))
	for dir := range packages {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		files := packages[dir]
		sort.Strings(files)

		findings, err := checkPackage(files, nil)
		if err != nil {
			return nil, err
		}
		report.Files += len(files)
		report.Findings = append(report.Findings, findings...)
	}
	return report, nil
}

// CheckSource checks a single file. src follows go/parser.ParseFile: nil
// reads filename from disk.
func CheckSource(filename string, src any) ([]Finding, error) {
	return checkPackage([]string{filename}, src)
}

func checkPackage(filenames []string, src any) ([]Finding, error) {
	fset := token.NewFileSet()
	files := make([]*ast.File, 0, len(filenames))
	for _, name := range filenames {
		f, err := parser.ParseFile(fset, name, src, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		files = append(files, f)
	}

	// struct types declared in the package, so named fields can be told
	// apart from named integer types, and the ones with a TableName method
	structs := make(map[string]bool)
	tables := make(map[string]bool)
	for _, f := range files {
		ast.Inspect(f, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.TypeSpec:
				if _, isStruct := n.Type.(*ast.StructType); isStruct {
					structs[n.Name.Name] = true
				}
			case *ast.FuncDecl:
				if n.Recv != nil && len(n.Recv.List) == 1 && n.Name.Name == "TableName" {
					tables[typeName(n.Recv.List[0].Type)] = true
				}
			}
			return true
		})
	}

	var findings []Finding
	for _, f := range files {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				return true
			}
			for _, field := range st.Fields.List {
				findings = append(findings, checkField(fset, ts.Name.Name, field, structs)...)
			}
			if tables[ts.Name.Name] || hasPrimaryKey(st) {
				findings = append(findings, checkOwnTimestamps(fset, ts.Name.Name, st)...)
			}
			return true
		})
	}
	return findings, nil
}

func checkField(fset *token.FileSet, structName string, field *ast.Field, structs map[string]bool) []Finding {
	tag, ok := fieldTag(field)
	if !ok {
		return nil
	}
	value, ok := tag.Lookup(timestamp.TagName)
	if !ok || value == "-" {
		return nil
	}

	pos := fset.Position(field.Pos())
	var findings []Finding
	report := func(msg string) {
		for _, name := range fieldNames(field) {
			findings = append(findings, Finding{
				File:    pos.Filename,
				Line:    pos.Line,
				Struct:  structName,
				Field:   name,
				Message: msg,
			})
		}
	}

	m, err := timestamp.ParseMarker(value)
	if err != nil {
		report(err.Error())
		return findings
	}
	if m.Role != timestamp.RoleCreate {
		return nil
	}

	settings := schema.ParseTagSetting(tag.Get("gorm"), ";")
	for _, key := range associationSettings {
		if _, ok := settings[key]; ok {
			report(fmt.Sprintf("creation marker on association field (gorm %s)", strings.ToLower(key)))
			return findings
		}
	}
	if kind := associationKind(field.Type, structs); kind != "" {
		report(fmt.Sprintf("creation marker on association field (%s type)", kind))
	}
	return findings
}

// associationKind returns "struct", "slice" or "map" when expr names a type
// gorm maps to a relationship.
func associationKind(expr ast.Expr, structs map[string]bool) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return associationKind(t.X, structs)
	case *ast.ArrayType:
		return "slice"
	case *ast.MapType:
		return "map"
	case *ast.StructType:
		return "struct"
	case *ast.Ident:
		if structs[t.Name] {
			return "struct"
		}
	}
	// types of other packages (time.Time, sql.NullTime, named epoch types)
	// are only associations when the gorm tag says so
	return ""
}

// checkOwnTimestamps reports an entity declaring CreateTime and UpdateTime
// itself. One marked and one unmarked is a deliberate choice and passes.
func checkOwnTimestamps(fset *token.FileSet, structName string, st *ast.StructType) []Finding {
	var (
		create, update             *ast.Field
		createMarked, updateMarked bool
	)
	for _, field := range st.Fields.List {
		for _, n := range field.Names {
			switch n.Name {
			case createTimeField:
				create, createMarked = field, hasMarker(field, timestamp.RoleCreate)
			case updateTimeField:
				update, updateMarked = field, hasMarker(field, timestamp.RoleUpdate)
			}
		}
	}
	if create == nil || update == nil {
		return nil
	}

	var msg string
	switch {
	case createMarked && updateMarked:
		msg = "declares marked CreateTime and UpdateTime, embed a shared Timestamps struct instead"
	case !createMarked && !updateMarked:
		msg = "declares CreateTime and UpdateTime without timestamp markers, embed a shared Timestamps struct to have them stamped"
	default:
		return nil
	}

	pos := fset.Position(create.Pos())
	return []Finding{{
		File:    pos.Filename,
		Line:    pos.Line,
		Struct:  structName,
		Field:   createTimeField,
		Message: msg,
	}}
}

func hasMarker(field *ast.Field, role timestamp.Role) bool {
	tag, ok := fieldTag(field)
	if !ok {
		return false
	}
	value, ok := tag.Lookup(timestamp.TagName)
	if !ok {
		return false
	}
	m, err := timestamp.ParseMarker(value)
	return err == nil && m.Role == role
}

func hasPrimaryKey(st *ast.StructType) bool {
	for _, field := range st.Fields.List {
		for _, n := range field.Names {
			if n.Name == "ID" {
				return true
			}
		}
		if tag, ok := fieldTag(field); ok {
			settings := schema.ParseTagSetting(tag.Get("gorm"), ";")
			if _, ok := settings["PRIMARYKEY"]; ok {
				return true
			}
			if _, ok := settings["PRIMARY_KEY"]; ok {
				return true
			}
		}
	}
	return false
}

func fieldTag(field *ast.Field) (reflect.StructTag, bool) {
	if field.Tag == nil {
		return "", false
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", false
	}
	return reflect.StructTag(raw), true
}

func fieldNames(field *ast.Field) []string {
	if len(field.Names) == 0 {
		return []string{typeName(field.Type)}
	}
	names := make([]string, 0, len(field.Names))
	for _, n := range field.Names {
		names = append(names, n.Name)
	}
	return names
}

func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return "?"
}
