package config

import (
	"testing"

	"github.com/go-drift/liteclass/pkg/entity"
	"github.com/go-drift/liteclass/pkg/errors"
)

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(todoYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rt := entity.NewRuntime()
	types, err := Build(rt, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	item, list, task := types["Item"], types["List"], types["Task"]
	if item == nil || list == nil || task == nil {
		t.Fatalf("missing types: %v", types)
	}
	if task.Parent() != item || item.Parent() != rt.Base() {
		t.Error("unexpected parents")
	}

	tk := task.MustNew(nil)
	if v, _ := tk.GetProperty("priority"); v != 1 {
		t.Errorf("priority = %v, want 1", v)
	}
	_ = tk.SetProperty("priority", 9)
	_ = tk.SetProperty("done", "yes")
	if v, _ := tk.GetProperty("priority"); v != 1 {
		t.Errorf("priority = %v after out-of-range write, want 1", v)
	}
	if v, _ := tk.GetProperty("done"); v != false {
		t.Errorf("done = %v after wrong-kind write, want false", v)
	}

	l := list.MustNew(nil)
	_ = l.AddAggregation("items", tk)
	_ = l.AddAggregation("items", "not a record")
	_ = l.AddAggregation("items", l)
	if items, _ := l.GetAggregation("items"); len(items) != 1 || items[0] != tk {
		t.Errorf("items = %v, want [task]", items)
	}
	_ = l.SetProperty("name", "")
	if v, _ := l.GetProperty("name"); v != "untitled" {
		t.Errorf("name = %v, want untitled", v)
	}
}

func TestBuild_SelfReference(t *testing.T) {
	cfg, err := Parse([]byte(`
types:
  - name: Node
    aggregations:
      children:
        kind: record:Node
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	types, err := Build(entity.NewRuntime(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	node := types["Node"]
	root, child := node.MustNew(nil), node.MustNew(nil)
	_ = root.AddAggregation("children", child)
	if items, _ := root.GetAggregation("children"); len(items) != 1 {
		t.Errorf("children = %v", items)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind errors.ErrorKind
	}{
		{"unknown parent", "types:\n  - name: A\n    extends: Z\n", errors.KindConfig},
		{"cycle", "types:\n  - name: A\n    extends: B\n  - name: B\n    extends: A\n", errors.KindConfig},
		{"unknown kind", "types:\n  - name: A\n    properties:\n      x:\n        kind: color\n", errors.KindConfig},
		{"unknown record", "types:\n  - name: A\n    aggregations:\n      x:\n        kind: record:Z\n", errors.KindConfig},
		{"bad tag", "types:\n  - name: A\n    properties:\n      x:\n        validate: shiny\n", errors.KindConfig},
		{"bad default", "types:\n  - name: A\n    properties:\n      x:\n        default: 3\n        kind: string\n", errors.KindConfig},
		{"cross-kind override", "types:\n  - name: A\n    aggregations:\n      x: {}\n  - name: B\n    extends: A\n    properties:\n      x: {}\n", errors.KindSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &reportHandler{}
			errors.SetHandler(h)
			defer errors.SetHandler(nil)

			cfg, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = Build(entity.NewRuntime(), cfg)
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("got %v, want %s error", err, tt.kind)
			}
			if len(h.errs) != 1 || error(h.errs[0]) != err {
				t.Errorf("reported %v, want the returned error", h.errs)
			}
		})
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := &Config{Types: []TypeConfig{{Name: "Empty"}}}
	rt, types, err := NewRuntime(cfg)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if types["Empty"].Runtime() != rt {
		t.Error("types not bound to the new runtime")
	}

	cfg.Logging.Mode = "loud"
	if _, _, err := NewRuntime(cfg); !errors.IsKind(err, errors.KindConfig) {
		t.Errorf("got %v, want config error", err)
	}
}

type reportHandler struct {
	errs []*errors.RecordError
}

func (h *reportHandler) HandleError(err *errors.RecordError) { h.errs = append(h.errs, err) }

func (h *reportHandler) HandlePanic(*errors.PanicError) {}
