// Package buildutil provides utilities for extracting attributes from
// buildtools AST nodes.
package buildutil

import (
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// String extracts a string attribute from a function call by name.
// If name is empty and the call has positional arguments, returns the first
// positional string argument.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	if name == "" && len(call.List) > 0 {
		if str, ok := call.List[0].(*build.StringExpr); ok {
			return str.Value
		}
		return ""
	}

	if str, ok := Attr(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Attr returns the value expression of the named keyword argument, or nil.
func Attr(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok || lhs.Name != name {
			continue
		}
		return assign.RHS
	}
	return nil
}

// Has returns true if the call sets the named keyword argument.
func Has(call *build.CallExpr, name string) bool {
	return Attr(call, name) != nil
}

// Keywords returns the keyword argument names of a call in source order.
func Keywords(call *build.CallExpr) []string {
	var names []string
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok {
			names = append(names, lhs.Name)
		}
	}
	return names
}

// Positional returns the number of positional arguments of a call.
func Positional(call *build.CallExpr) int {
	n := 0
	for _, arg := range call.List {
		if _, ok := arg.(*build.AssignExpr); !ok {
			n++
		}
	}
	return n
}

// ExtractValue converts a build.Expr to a Go value.
// Handles strings, integers, booleans (True/False/None), lists, and dicts.
// Returns the raw expression for unhandled types.
func ExtractValue(expr build.Expr) any {
	switch e := expr.(type) {
	case *build.StringExpr:
		return e.Value
	case *build.LiteralExpr:
		if val, err := strconv.Atoi(e.Token); err == nil {
			return val
		}
		return e.Token
	case *build.Ident:
		switch e.Name {
		case "True":
			return true
		case "False":
			return false
		case "None":
			return nil
		default:
			return e.Name
		}
	case *build.ListExpr:
		result := make([]any, 0, len(e.List))
		for _, item := range e.List {
			result = append(result, ExtractValue(item))
		}
		return result
	case *build.DictExpr:
		result := make(map[string]any)
		for _, kv := range e.List {
			if keyStr, ok := kv.Key.(*build.StringExpr); ok {
				result[keyStr.Value] = ExtractValue(kv.Value)
			}
		}
		return result
	default:
		return expr
	}
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// IsFuncCall returns true if the call is for the specified function name.
func IsFuncCall(call *build.CallExpr, name string) bool {
	return FuncName(call) == name
}

// StringAssign builds a keyword argument name = "value".
func StringAssign(name, value string) *build.AssignExpr {
	return &build.AssignExpr{
		LHS: &build.Ident{Name: name},
		Op:  "=",
		RHS: &build.StringExpr{Value: value},
	}
}

// Call builds a function call with the given arguments.
func Call(name string, args ...build.Expr) *build.CallExpr {
	return &build.CallExpr{
		X:    &build.Ident{Name: name},
		List: args,
	}
}
