// Package exitcheck запрещает panic, os.Exit и log.Fatal вне функции main пакета main.
package exitcheck

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "exitcheck",
	Doc:      "проверяет использование panic, os.Exit и log.Fatal вне функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.WithStack([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := n.(*ast.CallExpr)

		switch name := calleeName(pass, call); name {
		case "":
		case "panic":
			pass.Reportf(call.Pos(), "использование встроенной функции panic")
		default:
			if !inMainFunc(pass, stack) {
				pass.Reportf(call.Pos(), "вызов %s вне функции main пакета main", name)
			}
		}
		return true
	})

	return nil, nil
}

// calleeName возвращает "panic", "log.Fatal*" или "os.Exit" для запрещённых вызовов
// и пустую строку для остальных.
func calleeName(pass *analysis.Pass, call *ast.CallExpr) string {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		if b, ok := pass.TypesInfo.Uses[fun].(*types.Builtin); ok && b.Name() == "panic" {
			return "panic"
		}
	case *ast.SelectorExpr:
		x, ok := fun.X.(*ast.Ident)
		if !ok {
			return ""
		}
		pkg, ok := pass.TypesInfo.Uses[x].(*types.PkgName)
		if !ok {
			return ""
		}

		funcName := fun.Sel.Name
		switch path := pkg.Imported().Path(); {
		case path == "log" && isFatalFunc(funcName):
			return "log." + funcName
		case path == "os" && funcName == "Exit":
			return "os.Exit"
		}
	}
	return ""
}

func isFatalFunc(name string) bool {
	return name == "Fatal" || name == "Fatalf" || name == "Fatalln"
}

// inMainFunc проверяет, находится ли вызов внутри функции main пакета main
func inMainFunc(pass *analysis.Pass, stack []ast.Node) bool {
	if pass.Pkg.Name() != "main" {
		return false
	}

	for _, n := range stack {
		if fd, ok := n.(*ast.FuncDecl); ok {
			return fd.Recv == nil && fd.Name.Name == "main"
		}
	}
	return false
}
