package resource

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/disposable/errors"
)

type otherValue struct {
	testValue
}

func TestTypedTable(t *testing.T) {
	var log []string
	table := NewTable()
	defer table.Dispose()

	values := Typed[*testValue](table, 1)
	others := Typed[*otherValue](table, 2)

	hv := values.Insert(newValue("v", &log))
	ho := others.Insert(&otherValue{})

	if v, ok := values.Get(hv); !ok || v.name != "v" {
		t.Fatalf("Get = %v, %v", v, ok)
	}
	if _, ok := values.Get(ho); ok {
		t.Fatal("typed view should not see other type IDs")
	}
	if values.Len() != 1 || others.Len() != 1 || table.Len() != 2 {
		t.Fatalf("Len: values=%d others=%d table=%d", values.Len(), others.Len(), table.Len())
	}

	err := values.Drop(ho)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindTypeMismatch}) {
		t.Fatalf("Drop of foreign handle = %v, want type mismatch", err)
	}
	if err := values.Drop(99); !stderrors.Is(err, &errors.Error{Kind: errors.KindNotFound}) {
		t.Fatalf("Drop of unknown handle = %v, want not found", err)
	}
	if table.Len() != 2 {
		t.Fatal("foreign handle must survive")
	}

	if err := values.Drop(hv); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("log = %v", log)
	}
}

func TestTypedTable_Dispose(t *testing.T) {
	var log []string
	values := NewTypedTable[*testValue](1)
	values.Insert(newValue("a", &log))
	values.Insert(newValue("b", &log))

	if err := values.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if !values.IsDisposed() || !values.Table().IsDisposed() {
		t.Fatal("typed table should be disposed")
	}
	if len(log) != 2 {
		t.Fatalf("log = %v", log)
	}
	if err := values.Drop(1); err != nil {
		t.Fatalf("Drop on disposed = %v, want nil", err)
	}
}
