// Package putcheck сообщает о вызовах Put и Drain у пулов ресурсов,
// результат-ошибка которых отбрасывается.
//
// Пулом считается любой именованный тип с суффиксом "Pool" в имени,
// у которого метод возвращает error последним результатом.
// Явное игнорирование через `_ = p.Put(x)` допускается.
package putcheck

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "putcheck",
	Doc:      "проверяет, что ошибки Put и Drain у пулов ресурсов не отбрасываются",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var checkedMethods = map[string]bool{
	"Put":   true,
	"Drain": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.GoStmt)(nil),
		(*ast.DeferStmt)(nil),
	}

	insp.Preorder(nodeFilter, func(n ast.Node) {
		var call *ast.CallExpr
		switch stmt := n.(type) {
		case *ast.ExprStmt:
			call, _ = stmt.X.(*ast.CallExpr)
		case *ast.GoStmt:
			call = stmt.Call
		case *ast.DeferStmt:
			call = stmt.Call
		}
		if call == nil {
			return
		}

		if name, ok := poolMethod(pass, call); ok {
			pass.Reportf(call.Pos(), "ошибка %s не проверяется", name)
		}
	})

	return nil, nil
}

// poolMethod возвращает "Тип.Метод", если call — вызов проверяемого метода пула.
func poolMethod(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !checkedMethods[sel.Sel.Name] {
		return "", false
	}

	selection, ok := pass.TypesInfo.Selections[sel]
	if !ok || selection.Kind() != types.MethodVal {
		return "", false
	}

	recv := types.Unalias(selection.Recv())
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = types.Unalias(ptr.Elem())
	}
	named, ok := recv.(*types.Named)
	if !ok || !strings.HasSuffix(named.Obj().Name(), "Pool") {
		return "", false
	}

	sig, ok := selection.Type().(*types.Signature)
	if !ok || sig.Results().Len() == 0 {
		return "", false
	}
	last := sig.Results().At(sig.Results().Len() - 1).Type()
	if !types.Identical(last, types.Universe.Lookup("error").Type()) {
		return "", false
	}

	return named.Obj().Name() + "." + sel.Sel.Name, true
}
