package ast

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed program document.
type DecodeError struct {
	Pos     Pos
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// DecodeFile reads a program document from the named file.
func DecodeFile(filename string) (*Main, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening program: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a program document (YAML, or JSON as a YAML subset).
//
// The root is a sequence of statements. Every statement and every expression
// item is a mapping with exactly one key naming the node kind, e.g.
//
//	- declare: {names: [x], type: INTEGER}
//	- assign: {target: {var: x}, value: [{int: 1}, {int: 2}, {op: "+"}]}
//	- output: [[{var: x}]]
func Decode(r io.Reader) (*Main, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Main{}, nil
		}
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	body, err := decodeStmts(root)
	if err != nil {
		return nil, err
	}
	return &Main{At: posOf(root), Body: body}, nil
}

func posOf(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Column: n.Column}
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Pos: posOf(n), Message: fmt.Sprintf(format, args...)}
}

// single splits a one-key mapping into its key and value.
func single(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, errorf(n, "expected a mapping with exactly one key")
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields returns the entries of a mapping node by key.
func fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorf(n, "expected a mapping")
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m, nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func scalar(n *yaml.Node, what string) (string, error) {
	if n == nil || n.Kind != yaml.ScalarNode {
		if n == nil {
			return "", fmt.Errorf("missing %s", what)
		}
		return "", errorf(n, "%s must be a scalar", what)
	}
	return n.Value, nil
}

func requireField(m map[string]*yaml.Node, owner *yaml.Node, key string) (*yaml.Node, error) {
	v, ok := m[key]
	if !ok {
		return nil, errorf(owner, "missing field %q", key)
	}
	return v, nil
}

func stringField(m map[string]*yaml.Node, owner *yaml.Node, key string) (string, error) {
	v, err := requireField(m, owner, key)
	if err != nil {
		return "", err
	}
	return scalar(v, key)
}

func boolField(m map[string]*yaml.Node, key string) (bool, error) {
	v, ok := m[key]
	if !ok || isNull(v) {
		return false, nil
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false, errorf(v, "field %q must be a boolean", key)
	}
	return b, nil
}

func stringList(n *yaml.Node, what string) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "%s must be a list of names", what)
	}
	out := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		s, err := scalar(c, what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStmts(n *yaml.Node) ([]Stmt, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a list of statements")
	}
	out := make([]Stmt, 0, len(n.Content))
	for _, c := range n.Content {
		s, err := decodeStmt(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalStmts(m map[string]*yaml.Node, key string) ([]Stmt, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	return decodeStmts(v)
}

func decodeStmt(n *yaml.Node) (Stmt, error) {
	kind, body, err := single(n)
	if err != nil {
		return nil, err
	}
	at := posOf(n)

	switch strings.ToLower(kind) {
	case "declare":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		namesNode, err := requireField(m, body, "names")
		if err != nil {
			return nil, err
		}
		names, err := stringList(namesNode, "names")
		if err != nil {
			return nil, err
		}
		typNode, err := requireField(m, body, "type")
		if err != nil {
			return nil, err
		}
		typ, err := decodeType(typNode)
		if err != nil {
			return nil, err
		}
		return &DeclareStmt{At: at, Names: names, Type: typ}, nil

	case "constant":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "name")
		if err != nil {
			return nil, err
		}
		value, err := exprField(m, body, "value")
		if err != nil {
			return nil, err
		}
		return &ConstantStmt{At: at, Name: name, Value: value}, nil

	case "assign":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		target, err := targetField(m, body, "target")
		if err != nil {
			return nil, err
		}
		value, err := exprField(m, body, "value")
		if err != nil {
			return nil, err
		}
		return &AssignStmt{At: at, Target: target, Value: value}, nil

	case "if":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		cond, err := exprField(m, body, "cond")
		if err != nil {
			return nil, err
		}
		then, err := optionalStmts(m, "then")
		if err != nil {
			return nil, err
		}
		els, err := optionalStmts(m, "else")
		if err != nil {
			return nil, err
		}
		return &IfStmt{At: at, Cond: cond, Then: then, Else: els}, nil

	case "while":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		cond, err := exprField(m, body, "cond")
		if err != nil {
			return nil, err
		}
		stmts, err := optionalStmts(m, "body")
		if err != nil {
			return nil, err
		}
		return &WhileStmt{At: at, Cond: cond, Body: stmts}, nil

	case "repeat":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		stmts, err := optionalStmts(m, "body")
		if err != nil {
			return nil, err
		}
		until, err := exprField(m, body, "until")
		if err != nil {
			return nil, err
		}
		return &RepeatStmt{At: at, Body: stmts, Until: until}, nil

	case "for":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "var")
		if err != nil {
			return nil, err
		}
		start, err := exprField(m, body, "start")
		if err != nil {
			return nil, err
		}
		end, err := exprField(m, body, "end")
		if err != nil {
			return nil, err
		}
		var step *Expr
		if v, ok := m["step"]; ok && !isNull(v) {
			if step, err = decodeExpr(v); err != nil {
				return nil, err
			}
		}
		stmts, err := optionalStmts(m, "body")
		if err != nil {
			return nil, err
		}
		return &ForStmt{At: at, Var: name, Start: start, End: end, Step: step, Body: stmts}, nil

	case "switch":
		return decodeSwitch(at, body)

	case "output":
		if body.Kind != yaml.SequenceNode {
			return nil, errorf(body, "output expects a list of expressions")
		}
		values := make([]*Expr, 0, len(body.Content))
		for _, c := range body.Content {
			e, err := decodeExpr(c)
			if err != nil {
				return nil, err
			}
			values = append(values, e)
		}
		return &OutputStmt{At: at, Values: values}, nil

	case "input":
		target, err := decodeTarget(body)
		if err != nil {
			return nil, err
		}
		return &InputStmt{At: at, Target: target}, nil

	case "function", "procedure":
		r, err := decodeRoutine(at, body)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(kind, "function") && r.Returns == nil {
			return nil, errorf(body, "function %s must declare a return type", r.Name)
		}
		if strings.EqualFold(kind, "procedure") && r.Returns != nil {
			return nil, errorf(body, "procedure %s cannot declare a return type", r.Name)
		}
		return r, nil

	case "class":
		return decodeClass(at, body)

	case "record":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "name")
		if err != nil {
			return nil, err
		}
		fs, err := decodeFields(m["fields"])
		if err != nil {
			return nil, err
		}
		return &RecordDecl{At: at, Name: name, Fields: fs}, nil

	case "type":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "name")
		if err != nil {
			return nil, err
		}
		valuesNode, err := requireField(m, body, "values")
		if err != nil {
			return nil, err
		}
		values, err := stringList(valuesNode, "values")
		if err != nil {
			return nil, err
		}
		return &TypeDecl{At: at, Name: name, Values: values}, nil

	case "call":
		item, err := decodeItem(body)
		if err != nil {
			return nil, err
		}
		switch item.(type) {
		case *CallExpr, *ChainExpr:
		default:
			return nil, errorf(body, "call expects a call or a method chain")
		}
		return &CallStmt{At: at, Call: item}, nil

	case "return":
		if isNull(body) {
			return &ReturnStmt{At: at}, nil
		}
		value, err := decodeExpr(body)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{At: at, Value: value}, nil

	case "openfile":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		file, err := exprField(m, body, "file")
		if err != nil {
			return nil, err
		}
		mode, err := stringField(m, body, "mode")
		if err != nil {
			return nil, err
		}
		return &OpenFileStmt{At: at, File: file, Mode: strings.ToUpper(mode)}, nil

	case "closefile":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		file, err := exprField(m, body, "file")
		if err != nil {
			return nil, err
		}
		return &CloseFileStmt{At: at, File: file}, nil

	case "readfile", "getrecord":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		file, err := exprField(m, body, "file")
		if err != nil {
			return nil, err
		}
		target, err := targetField(m, body, "target")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(kind, "readfile") {
			return &ReadFileStmt{At: at, File: file, Target: target}, nil
		}
		return &GetRecordStmt{At: at, File: file, Target: target}, nil

	case "writefile", "putrecord":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		file, err := exprField(m, body, "file")
		if err != nil {
			return nil, err
		}
		value, err := exprField(m, body, "value")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(kind, "writefile") {
			return &WriteFileStmt{At: at, File: file, Value: value}, nil
		}
		return &PutRecordStmt{At: at, File: file, Value: value}, nil

	case "seek":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		file, err := exprField(m, body, "file")
		if err != nil {
			return nil, err
		}
		addr, err := exprField(m, body, "address")
		if err != nil {
			return nil, err
		}
		return &SeekStmt{At: at, File: file, Address: addr}, nil

	default:
		return nil, errorf(n, "unknown statement kind %q", kind)
	}
}

func decodeSwitch(at Pos, body *yaml.Node) (Stmt, error) {
	m, err := fields(body)
	if err != nil {
		return nil, err
	}
	subject, err := exprField(m, body, "subject")
	if err != nil {
		return nil, err
	}
	s := &SwitchStmt{At: at, Subject: subject}
	if casesNode, ok := m["cases"]; ok && !isNull(casesNode) {
		if casesNode.Kind != yaml.SequenceNode {
			return nil, errorf(casesNode, "cases must be a list")
		}
		for _, c := range casesNode.Content {
			cm, err := fields(c)
			if err != nil {
				return nil, err
			}
			value, err := exprField(cm, c, "value")
			if err != nil {
				return nil, err
			}
			stmts, err := optionalStmts(cm, "body")
			if err != nil {
				return nil, err
			}
			s.Cases = append(s.Cases, &CaseClause{At: posOf(c), Value: value, Body: stmts})
		}
	}
	if s.Otherwise, err = optionalStmts(m, "otherwise"); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeRoutine(at Pos, body *yaml.Node) (*RoutineDecl, error) {
	m, err := fields(body)
	if err != nil {
		return nil, err
	}
	name, err := stringField(m, body, "name")
	if err != nil {
		return nil, err
	}
	r := &RoutineDecl{At: at, Name: name}
	if r.Private, err = boolField(m, "private"); err != nil {
		return nil, err
	}
	if ps, ok := m["params"]; ok && !isNull(ps) {
		if ps.Kind != yaml.SequenceNode {
			return nil, errorf(ps, "params must be a list")
		}
		for _, p := range ps.Content {
			pm, err := fields(p)
			if err != nil {
				return nil, err
			}
			pname, err := stringField(pm, p, "name")
			if err != nil {
				return nil, err
			}
			ptypNode, err := requireField(pm, p, "type")
			if err != nil {
				return nil, err
			}
			ptyp, err := decodeType(ptypNode)
			if err != nil {
				return nil, err
			}
			byRef, err := boolField(pm, "byref")
			if err != nil {
				return nil, err
			}
			r.Params = append(r.Params, &Param{At: posOf(p), Name: pname, Type: ptyp, ByRef: byRef})
		}
	}
	if ret, ok := m["returns"]; ok && !isNull(ret) {
		if r.Returns, err = decodeType(ret); err != nil {
			return nil, err
		}
	}
	if r.Body, err = optionalStmts(m, "body"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeClass(at Pos, body *yaml.Node) (Stmt, error) {
	m, err := fields(body)
	if err != nil {
		return nil, err
	}
	name, err := stringField(m, body, "name")
	if err != nil {
		return nil, err
	}
	c := &ClassDecl{At: at, Name: name}
	if c.Fields, err = decodeFields(m["fields"]); err != nil {
		return nil, err
	}
	if ms, ok := m["methods"]; ok && !isNull(ms) {
		if ms.Kind != yaml.SequenceNode {
			return nil, errorf(ms, "methods must be a list")
		}
		for _, mn := range ms.Content {
			s, err := decodeStmt(mn)
			if err != nil {
				return nil, err
			}
			r, ok := s.(*RoutineDecl)
			if !ok {
				return nil, errorf(mn, "class members must be functions or procedures")
			}
			c.Methods = append(c.Methods, r)
		}
	}
	return c, nil
}

func decodeFields(n *yaml.Node) ([]*FieldDecl, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "fields must be a list")
	}
	out := make([]*FieldDecl, 0, len(n.Content))
	for _, f := range n.Content {
		fm, err := fields(f)
		if err != nil {
			return nil, err
		}
		namesNode, err := requireField(fm, f, "names")
		if err != nil {
			return nil, err
		}
		names, err := stringList(namesNode, "names")
		if err != nil {
			return nil, err
		}
		typNode, err := requireField(fm, f, "type")
		if err != nil {
			return nil, err
		}
		typ, err := decodeType(typNode)
		if err != nil {
			return nil, err
		}
		private, err := boolField(fm, "private")
		if err != nil {
			return nil, err
		}
		out = append(out, &FieldDecl{At: posOf(f), Names: names, Type: typ, Private: private})
	}
	return out, nil
}

func decodeType(n *yaml.Node) (*TypeExpr, error) {
	if n.Kind == yaml.ScalarNode {
		return &TypeExpr{At: posOf(n), Name: n.Value}, nil
	}
	kind, body, err := single(n)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(kind, "array") {
		return nil, errorf(n, "unknown type constructor %q", kind)
	}
	m, err := fields(body)
	if err != nil {
		return nil, err
	}
	boundsNode, err := requireField(m, body, "bounds")
	if err != nil {
		return nil, err
	}
	if boundsNode.Kind != yaml.SequenceNode || len(boundsNode.Content) == 0 {
		return nil, errorf(boundsNode, "bounds must be a non-empty list of [lower, upper] pairs")
	}
	t := &TypeExpr{At: posOf(n)}
	for _, b := range boundsNode.Content {
		var pair []int64
		if err := b.Decode(&pair); err != nil || len(pair) != 2 {
			return nil, errorf(b, "array bound must be a [lower, upper] pair of integers")
		}
		if pair[0] > pair[1] {
			return nil, errorf(b, "array lower bound %d exceeds upper bound %d", pair[0], pair[1])
		}
		t.Bounds = append(t.Bounds, Bound{Lower: pair[0], Upper: pair[1]})
	}
	ofNode, err := requireField(m, body, "of")
	if err != nil {
		return nil, err
	}
	if t.Of, err = decodeType(ofNode); err != nil {
		return nil, err
	}
	return t, nil
}

func exprField(m map[string]*yaml.Node, owner *yaml.Node, key string) (*Expr, error) {
	v, err := requireField(m, owner, key)
	if err != nil {
		return nil, err
	}
	return decodeExpr(v)
}

func exprList(n *yaml.Node, what string) ([]*Expr, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "%s must be a list of expressions", what)
	}
	out := make([]*Expr, 0, len(n.Content))
	for _, c := range n.Content {
		e, err := decodeExpr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// decodeExpr decodes a postfix sequence. A lone item mapping is accepted as a
// one-element sequence.
func decodeExpr(n *yaml.Node) (*Expr, error) {
	if n.Kind == yaml.MappingNode {
		item, err := decodeItem(n)
		if err != nil {
			return nil, err
		}
		return &Expr{At: posOf(n), Items: []Item{item}}, nil
	}
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, errorf(n, "expected a non-empty postfix expression")
	}
	e := &Expr{At: posOf(n), Items: make([]Item, 0, len(n.Content))}
	for _, c := range n.Content {
		item, err := decodeItem(c)
		if err != nil {
			return nil, err
		}
		e.Items = append(e.Items, item)
	}
	return e, nil
}

func targetField(m map[string]*yaml.Node, owner *yaml.Node, key string) (Item, error) {
	v, err := requireField(m, owner, key)
	if err != nil {
		return nil, err
	}
	return decodeTarget(v)
}

// decodeTarget decodes a storage target: a variable, an array element or a chain.
func decodeTarget(n *yaml.Node) (Item, error) {
	item, err := decodeItem(n)
	if err != nil {
		return nil, err
	}
	switch item.(type) {
	case *Ident, *IndexExpr, *ChainExpr:
		return item, nil
	default:
		return nil, errorf(n, "expected a variable, an array element or a property chain")
	}
}

func decodeItem(n *yaml.Node) (Item, error) {
	kind, body, err := single(n)
	if err != nil {
		return nil, err
	}
	at := posOf(n)

	switch strings.ToLower(kind) {
	case "int", "integer":
		var v int64
		if err := body.Decode(&v); err != nil {
			return nil, errorf(body, "invalid integer literal %q", body.Value)
		}
		return &IntegerLit{At: at, Value: v}, nil
	case "real":
		v, err := strconv.ParseFloat(body.Value, 64)
		if err != nil {
			return nil, errorf(body, "invalid real literal %q", body.Value)
		}
		return &RealLit{At: at, Value: v}, nil
	case "string", "char":
		return &StringLit{At: at, Value: body.Value}, nil
	case "bool", "boolean":
		switch strings.ToUpper(body.Value) {
		case "TRUE":
			return &BooleanLit{At: at, Value: true}, nil
		case "FALSE":
			return &BooleanLit{At: at, Value: false}, nil
		}
		return nil, errorf(body, "invalid boolean literal %q", body.Value)
	case "date":
		d, mo, y, ok := ParseDate(body.Value)
		if !ok {
			return nil, errorf(body, "invalid date literal %q", body.Value)
		}
		return &DateLit{At: at, Day: d, Month: mo, Year: y}, nil
	case "var":
		name, err := scalar(body, "variable name")
		if err != nil {
			return nil, err
		}
		return &Ident{At: at, Name: name}, nil
	case "op", "unary":
		op, err := scalar(body, "operator")
		if err != nil {
			return nil, err
		}
		return &Operator{At: at, Op: op, Unary: strings.EqualFold(kind, "unary")}, nil
	case "index":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "name")
		if err != nil {
			return nil, err
		}
		idxNode, err := requireField(m, body, "indices")
		if err != nil {
			return nil, err
		}
		indices, err := exprList(idxNode, "indices")
		if err != nil {
			return nil, err
		}
		return &IndexExpr{At: at, Name: name, Indices: indices}, nil
	case "call":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		name, err := stringField(m, body, "name")
		if err != nil {
			return nil, err
		}
		args, err := exprList(m["args"], "args")
		if err != nil {
			return nil, err
		}
		return &CallExpr{At: at, Name: name, Args: args}, nil
	case "new":
		m, err := fields(body)
		if err != nil {
			return nil, err
		}
		class, err := stringField(m, body, "class")
		if err != nil {
			return nil, err
		}
		args, err := exprList(m["args"], "args")
		if err != nil {
			return nil, err
		}
		return &NewExpr{At: at, Class: class, Args: args}, nil
	case "chain":
		return decodeChain(at, body)
	default:
		return nil, errorf(n, "unknown expression item %q", kind)
	}
}

func decodeChain(at Pos, body *yaml.Node) (Item, error) {
	m, err := fields(body)
	if err != nil {
		return nil, err
	}
	baseNode, err := requireField(m, body, "base")
	if err != nil {
		return nil, err
	}
	base, err := decodeItem(baseNode)
	if err != nil {
		return nil, err
	}
	switch base.(type) {
	case *Ident, *IndexExpr, *CallExpr:
	default:
		return nil, errorf(baseNode, "chain base must be a variable, an indexed variable or a call")
	}
	stepsNode, err := requireField(m, body, "steps")
	if err != nil {
		return nil, err
	}
	if stepsNode.Kind != yaml.SequenceNode || len(stepsNode.Content) == 0 {
		return nil, errorf(stepsNode, "steps must be a non-empty list")
	}
	c := &ChainExpr{At: at, Base: base}
	for _, sn := range stepsNode.Content {
		step := &Step{At: posOf(sn)}
		if sn.Kind == yaml.ScalarNode {
			step.Name = sn.Value
			c.Steps = append(c.Steps, step)
			continue
		}
		sm, err := fields(sn)
		if err != nil {
			return nil, err
		}
		if step.Name, err = stringField(sm, sn, "name"); err != nil {
			return nil, err
		}
		if idx, ok := sm["indices"]; ok {
			if step.Indices, err = exprList(idx, "indices"); err != nil {
				return nil, err
			}
		}
		if args, ok := sm["args"]; ok {
			step.IsCall = true
			if step.Args, err = exprList(args, "args"); err != nil {
				return nil, err
			}
		}
		if step.IsCall && len(step.Indices) > 0 {
			return nil, errorf(sn, "a chain step cannot be both a call and an index")
		}
		c.Steps = append(c.Steps, step)
	}
	return c, nil
}

// ParseDate parses dd-mm-yyyy or dd/mm/yyyy into its fields.
// It checks the shape only; calendar validity is the caller's concern.
func ParseDate(s string) (day, month, year int, ok bool) {
	s = strings.TrimSpace(s)
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var nums [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = v
	}
	return nums[0], nums[1], nums[2], true
}
