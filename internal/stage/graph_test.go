package stage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeStage struct {
	name    string
	inputs  []string
	outputs []string
}

func (f fakeStage) Name() string { return f.name }

func (f fakeStage) Inputs() []string { return f.inputs }

func (f fakeStage) Outputs() []string { return f.outputs }

func (f fakeStage) Run(context.Context) (Report, error) { return Report{}, nil }

func libraryStages() []Handler {
	return []Handler{
		fakeStage{"devices", []string{AreaPlaylists, AreaOutput}, []string{AreaDevices}},
		fakeStage{"playlists", []string{AreaDownloads, AreaTags, AreaOutput, AreaCustom}, []string{AreaPlaylists}},
		fakeStage{"encode", []string{AreaPool}, []string{AreaOutput}},
		fakeStage{"pool", []string{AreaTags, AreaNormalized}, []string{AreaPool}},
		fakeStage{"resolve", []string{AreaSongs, AreaNormalized}, []string{AreaTags}},
		fakeStage{"reconcile", []string{AreaNormalized, AreaSongs}, []string{AreaSongs}},
		fakeStage{"condition", []string{AreaDownloads}, []string{AreaNormalized}},
		fakeStage{"fetch", []string{AreaSources}, []string{AreaDownloads}},
	}
}

func TestGraphOrdersByDeclaredAreas(t *testing.T) {
	graph, err := NewGraph(libraryStages()...)
	if err != nil {
		t.Fatalf("NewGraph returned error: %v", err)
	}
	want := []string{"fetch", "condition", "reconcile", "resolve", "pool", "encode", "playlists", "devices"}
	if got := Names(graph.Order()); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if levels := graph.Levels(); len(levels) != len(want) {
		t.Fatalf("expected a strictly sequential chain, got %d levels", len(levels))
	}
	if deps := graph.DependsOn("playlists"); !reflect.DeepEqual(deps, []string{"fetch", "resolve", "encode"}) {
		t.Fatalf("unexpected playlist dependencies %v", deps)
	}
}

func TestGraphLevelsGroupIndependentStages(t *testing.T) {
	graph, err := NewGraph(
		fakeStage{"a", nil, []string{"x"}},
		fakeStage{"b", nil, []string{"y"}},
		fakeStage{"c", []string{"x", "y"}, []string{"z"}},
	)
	if err != nil {
		t.Fatalf("NewGraph returned error: %v", err)
	}
	levels := graph.Levels()
	if len(levels) != 2 || !reflect.DeepEqual(Names(levels[0]), []string{"a", "b"}) || !reflect.DeepEqual(Names(levels[1]), []string{"c"}) {
		t.Fatalf("unexpected levels %v", levels)
	}
}

func TestGraphRejectsInvalidDeclarations(t *testing.T) {
	_, err := NewGraph(fakeStage{"a", []string{"y"}, []string{"x"}}, fakeStage{"b", []string{"x"}, []string{"y"}})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	_, err = NewGraph(fakeStage{"a", nil, []string{"x"}}, fakeStage{"b", nil, []string{"x"}})
	if !errors.Is(err, ErrDuplicateProducer) {
		t.Fatalf("expected ErrDuplicateProducer, got %v", err)
	}
	_, err = NewGraph(fakeStage{"a", nil, nil}, fakeStage{"a", nil, nil})
	if !errors.Is(err, ErrDuplicateStage) {
		t.Fatalf("expected ErrDuplicateStage, got %v", err)
	}
}

func TestGraphSelectKeepsDependencyOrder(t *testing.T) {
	graph, err := NewGraph(libraryStages()...)
	if err != nil {
		t.Fatalf("NewGraph returned error: %v", err)
	}
	selected, err := graph.Select([]string{"devices", "encode"})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if got := Names(selected); !reflect.DeepEqual(got, []string{"encode", "devices"}) {
		t.Fatalf("unexpected selection %v", got)
	}
	if _, err := graph.Select([]string{"bogus"}); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}
